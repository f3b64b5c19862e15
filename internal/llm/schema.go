package llm

// BuildResultsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the expected response: an object whose required
// "results" property is an array of per-meter records. Every record field may
// be null; the shape itself is strict.
func BuildResultsJSONSchema() map[string]any {
	record := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"meter_number":  map[string]any{"type": []string{"string", "null"}},
			"start_date":    map[string]any{"type": []string{"string", "null"}},
			"end_date":      map[string]any{"type": []string{"string", "null"}},
			"total_kwh":     map[string]any{"type": []string{"number", "null"}},
			"total_charges": map[string]any{"type": []string{"number", "null"}},
			"adjustments":   map[string]any{"type": []string{"number", "null"}},
		},
		"required": []string{"meter_number", "start_date", "end_date", "total_kwh", "total_charges", "adjustments"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"results": map[string]any{
				"type":  "array",
				"items": record,
			},
		},
		"required": []string{"results"},
	}
}
