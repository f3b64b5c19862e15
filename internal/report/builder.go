// Package report renders batch results: a machine-readable CSV per billing
// record, a stage log as CSV and as an HTML table for inline email display,
// and an XLSX workbook for spreadsheet users.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/bevalen/tune-energy-ocr-ui/internal/entity"
)

// ResultsHeader is the fixed attachment header row.
var ResultsHeader = []string{
	"meter_number", "total_kwh", "start_date", "end_date",
	"total_charges", "adjustments", "warnings", "filename",
}

// LogHeader is the fixed processing-log header row.
var LogHeader = []string{"filename", "status", "error"}

// ResultsCSV renders one row per billing record. Nil fields render as empty
// strings.
func ResultsCSV(records []*entity.BillingRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ResultsHeader); err != nil {
		return "", fmt.Errorf("write results header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strVal(r.MeterNumber),
			numVal(r.TotalKWH),
			strVal(r.StartDate),
			strVal(r.EndDate),
			numVal(r.TotalCharges),
			numVal(r.Adjustments),
			r.Warning,
			r.Filename,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write results row: %w", err)
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

// LogCSV renders the submission/retrieval stage log.
func LogCSV(log []entity.LogEntry) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(LogHeader); err != nil {
		return "", fmt.Errorf("write log header: %w", err)
	}
	for _, e := range log {
		if err := w.Write([]string{e.Filename, e.Status, e.Error}); err != nil {
			return "", fmt.Errorf("write log row: %w", err)
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func numVal(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func parseCSV(body string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(body)))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
