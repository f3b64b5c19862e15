package llm

import (
	"context"
	"fmt"
)

// BillFields is one per-meter, per-period record extracted from a bill. Every
// field is optional: the model returns null for anything it cannot find.
type BillFields struct {
	MeterNumber  *string  `json:"meter_number"`
	StartDate    *string  `json:"start_date"` // YYYY-MM-DD
	EndDate      *string  `json:"end_date"`   // YYYY-MM-DD
	TotalKWH     *float64 `json:"total_kwh"`
	TotalCharges *float64 `json:"total_charges"`
	Adjustments  *float64 `json:"adjustments"`
}

// ExtractOptions bias a re-query toward a previously estimated usage value.
// The batch orchestrator never sets Retry; anomalies are annotated
// analytically instead of re-queried. Kept on the contract so a caller can
// wire the re-query path without changing the client.
type ExtractOptions struct {
	Retry bool
	Guess float64
}

// Extractor is the interface the batch pipeline depends on. It returns the
// decoded records plus the raw model JSON for logging/debugging.
type Extractor interface {
	Extract(ctx context.Context, text string, opts ExtractOptions) ([]BillFields, []byte, error)
}

// ExtractionError reports a failed model call or an unusable response.
type ExtractionError struct {
	Reason string
	Cause  error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Cause)
	}
	return "extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
