package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bevalen/tune-energy-ocr-ui/internal/llm"
	"github.com/bevalen/tune-energy-ocr-ui/internal/llm/openai"
)

func completionWith(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newClient(baseURL string) *openai.Client {
	return openai.NewClient(openai.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gpt-4o-mini",
	}, nil)
}

func TestExtractDecodesResults(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(completionWith(`{
			"results": [
				{
					"meter_number": "KU39487",
					"start_date": "2024-12-12",
					"end_date": "2025-01-13",
					"total_kwh": 19560,
					"total_charges": 2271.93,
					"adjustments": 0
				}
			]
		}`)))
	}))
	defer srv.Close()

	fields, raw, err := newClient(srv.URL).Extract(context.Background(), "bill text", llm.ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.NotEmpty(t, raw)

	f := fields[0]
	require.NotNil(t, f.MeterNumber)
	assert.Equal(t, "KU39487", *f.MeterNumber)
	require.NotNil(t, f.TotalKWH)
	assert.Equal(t, 19560.0, *f.TotalKWH)
	require.NotNil(t, f.TotalCharges)
	assert.Equal(t, 2271.93, *f.TotalCharges)

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	rf, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", rf["type"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
}

func TestExtractEmptyResultsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionWith(`{"results": []}`)))
	}))
	defer srv.Close()

	fields, _, err := newClient(srv.URL).Extract(context.Background(), "bill text", llm.ExtractOptions{})
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestExtractRejectsWrongShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionWith(`{"foo": 1}`)))
	}))
	defer srv.Close()

	_, _, err := newClient(srv.URL).Extract(context.Background(), "bill text", llm.ExtractOptions{})

	var exErr *llm.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Contains(t, exErr.Reason, "results")
}

func TestExtractFailsOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, _, err := newClient(srv.URL).Extract(context.Background(), "bill text", llm.ExtractOptions{})

	var exErr *llm.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Contains(t, err.Error(), "429")
}

func TestExtractFailsOnNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, _, err := newClient(srv.URL).Extract(context.Background(), "bill text", llm.ExtractOptions{})

	var exErr *llm.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Contains(t, exErr.Reason, "no choices")
}
