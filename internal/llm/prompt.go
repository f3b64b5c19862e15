package llm

import "fmt"

const instructionHeader = "You are an expert electrical bill extractor. " +
	"Review the provided bill(s) and extract key information as instructed for each meter & billing period. " +
	"Do not include gas meters. Extract ONLY the following from the provided text:\n" +
	"1. meter_number: The electrical meter number for this reading (string, or null)\n" +
	"2. start_date: The start date of the billing period for this meter (YYYY-MM-DD format, or null)\n" +
	"3. end_date: The end date of the billing period for this meter (YYYY-MM-DD format, or null)\n" +
	"4. total_kwh: The total electricity usage in kWh on this meter for the current billing period (number, or null if not found). " +
	"This should be a single number on the page somewhere, without having to add anything up.\n" +
	"5. total_charges: The total electrical charges in USD on this meter for the current billing period (number, or null), excluding any gas charges. " +
	"This should be a single number on the page somewhere, without having to add anything up.\n" +
	"6. adjustments: The value of any line item listed as an 'adjustment' on this meter for the current billing period (number, or null)\n" +
	"Return ONLY an array of JSON objects as property 'results', each element having these 6 keys. " +
	"Do not include any other text, markdown, or explanation. For example:\n" +
	`{
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
      "meter_number": "1124520",
      "start_date": "2025-11-01",
      "end_date": "2025-12-01",
      "total_kwh": 225,
      "total_charges": 379.20,
      "adjustments": -420.22
    }
  ]
}`

// BuildSystemPrompt composes the fixed extraction instruction. When a re-query
// is requested, the prompt additionally anchors total_kwh to the caller's
// analytically estimated value.
func BuildSystemPrompt(opts ExtractOptions) string {
	if !opts.Retry {
		return instructionHeader
	}
	return instructionHeader + fmt.Sprintf("\n\nThe total_kwh should be close to %g.", opts.Guess)
}
