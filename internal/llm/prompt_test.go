package llm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bevalen/tune-energy-ocr-ui/internal/llm"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := llm.BuildSystemPrompt(llm.ExtractOptions{})

	assert.Contains(t, p, "expert electrical bill extractor")
	assert.Contains(t, p, "meter_number")
	assert.Contains(t, p, "adjustments")
	assert.NotContains(t, p, "should be close to")
}

func TestBuildSystemPromptWithRetryHint(t *testing.T) {
	p := llm.BuildSystemPrompt(llm.ExtractOptions{Retry: true, Guess: 19560})
	assert.Contains(t, p, "The total_kwh should be close to 19560.")
}

func TestSchemaAcceptsWellFormedResults(t *testing.T) {
	doc := []byte(`{
		"results": [
			{
				"meter_number": "KU39487",
				"start_date": "2024-12-12",
				"end_date": "2025-01-13",
				"total_kwh": 19560,
				"total_charges": 2271.93,
				"adjustments": 0
			},
			{
				"meter_number": null,
				"start_date": null,
				"end_date": null,
				"total_kwh": null,
				"total_charges": null,
				"adjustments": null
			}
		]
	}`)

	err := llm.ValidateAgainstSchema(llm.BuildResultsJSONSchema(), doc)
	require.NoError(t, err)
}

func TestSchemaRejectsMissingResults(t *testing.T) {
	err := llm.ValidateAgainstSchema(llm.BuildResultsJSONSchema(), []byte(`{"foo": 1}`))
	assert.Error(t, err)
}

func TestSchemaRejectsMissingRecordKeys(t *testing.T) {
	doc := []byte(`{"results": [{"meter_number": "M1"}]}`)
	err := llm.ValidateAgainstSchema(llm.BuildResultsJSONSchema(), doc)
	assert.Error(t, err)
}

func TestSchemaRejectsWrongTypes(t *testing.T) {
	doc := []byte(`{
		"results": [
			{
				"meter_number": "M1",
				"start_date": "2025-01-01",
				"end_date": "2025-01-31",
				"total_kwh": "a lot",
				"total_charges": 100,
				"adjustments": 0
			}
		]
	}`)
	err := llm.ValidateAgainstSchema(llm.BuildResultsJSONSchema(), doc)
	assert.Error(t, err)
}

func TestSchemaIsValidJSON(t *testing.T) {
	b, err := json.Marshal(llm.BuildResultsJSONSchema())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"results"`)
}
