package notify_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bevalen/tune-energy-ocr-ui/internal/notify"
)

func TestSendEncodesAttachments(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id": "msg_1"}`))
	}))
	defer srv.Close()

	c := notify.NewClient(notify.Config{
		BaseURL: srv.URL,
		APIKey:  "re-test",
		From:    "bills@example.com",
	}, nil)

	err := c.Send(context.Background(), notify.Message{
		To:      "ops@acme.test",
		Subject: "Bill Analysis for Acme, site site-42",
		HTML:    "<p>report attached</p>",
		Attachments: []notify.Attachment{
			{Filename: "report.csv", Content: []byte("meter_number,total_kwh\n")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "bills@example.com", got["from"])
	to, ok := got["to"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"ops@acme.test"}, to)
	assert.Equal(t, "Bill Analysis for Acme, site site-42", got["subject"])

	atts, ok := got["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, atts, 1)
	att := atts[0].(map[string]any)
	assert.Equal(t, "report.csv", att["filename"])
	decoded, err := base64.StdEncoding.DecodeString(att["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, "meter_number,total_kwh\n", string(decoded))
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := notify.NewClient(notify.Config{BaseURL: srv.URL, APIKey: "re-test", From: "x"}, nil)
	err := c.Send(context.Background(), notify.Message{To: "ops@acme.test", Subject: "s", HTML: "<p></p>"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}
