// Package entity holds the batch-scoped data types shared by the pipeline
// stages. Nothing here is persisted; a record lives exactly one batch.
package entity

// BillingRecord is one extracted meter/billing-period entry. A document may
// yield zero, one, or many records; a document whose extraction failed yields
// exactly one record with Error set and all billing fields nil.
type BillingRecord struct {
	Filename      string
	SequenceIndex int
	MeterNumber   *string
	StartDate     *string // YYYY-MM-DD
	EndDate       *string // YYYY-MM-DD
	TotalKWH      *float64
	TotalCharges  *float64
	Adjustments   *float64
	Error         string
	Warning       string
}

// Failed reports whether this record carries a per-file error.
func (r *BillingRecord) Failed() bool {
	return r.Error != ""
}

// LogEntry is one processing-log line covering the submission and retrieval
// stages.
type LogEntry struct {
	Filename string
	Status   string // submitted | retrieved | failed
	Error    string
}
