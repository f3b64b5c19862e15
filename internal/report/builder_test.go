package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bevalen/tune-energy-ocr-ui/internal/entity"
	"github.com/bevalen/tune-energy-ocr-ui/internal/report"
)

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

func TestResultsCSVHeaderAndRows(t *testing.T) {
	records := []*entity.BillingRecord{
		{
			Filename:      "jan.pdf",
			SequenceIndex: 0,
			MeterNumber:   strp("KU39487"),
			StartDate:     strp("2024-12-12"),
			EndDate:       strp("2025-01-13"),
			TotalKWH:      fp(19560),
			TotalCharges:  fp(2271.93),
			Adjustments:   fp(0),
			Warning:       "Anomaly detected: calculated rate changed 29% from previous period",
		},
	}

	body, err := report.ResultsCSV(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "meter_number,total_kwh,start_date,end_date,total_charges,adjustments,warnings,filename", lines[0])
	assert.Equal(t, "KU39487,19560,2024-12-12,2025-01-13,2271.93,0,Anomaly detected: calculated rate changed 29% from previous period,jan.pdf", lines[1])
}

func TestResultsCSVRendersNilsAsEmpty(t *testing.T) {
	records := []*entity.BillingRecord{
		{Filename: "bad.pdf", SequenceIndex: 0, Error: "extraction failed: no data"},
	}

	body, err := report.ResultsCSV(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, ",,,,,,,bad.pdf", lines[1])
}

func TestLogCSV(t *testing.T) {
	log := []entity.LogEntry{
		{Filename: "jan.pdf", Status: "submitted"},
		{Filename: "feb.pdf", Status: "failed", Error: "ocr submit feb.pdf failed: status 500"},
	}

	body, err := report.LogCSV(log)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "filename,status,error", lines[0])
	assert.Equal(t, "jan.pdf,submitted,", lines[1])
	assert.Contains(t, lines[2], "feb.pdf,failed,")
}

func TestHTMLTableRendersAndEscapes(t *testing.T) {
	log := []entity.LogEntry{
		{Filename: "x.pdf", Status: "failed", Error: `<script>alert("hi")</script>`},
	}
	body, err := report.LogCSV(log)
	require.NoError(t, err)

	html, err := report.HTMLTable(body)
	require.NoError(t, err)

	assert.Contains(t, html, "<table")
	assert.Contains(t, html, "background-color: #f2f2f2")
	assert.Contains(t, html, "x.pdf")
	assert.NotContains(t, html, "<script>")
}

func TestHTMLTableEmptyInput(t *testing.T) {
	html, err := report.HTMLTable("")
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestResultsXLSX(t *testing.T) {
	records := []*entity.BillingRecord{
		{
			Filename:     "jan.pdf",
			MeterNumber:  strp("M1"),
			StartDate:    strp("2025-01-01"),
			EndDate:      strp("2025-01-31"),
			TotalKWH:     fp(1000),
			TotalCharges: fp(120.50),
		},
	}

	data, err := report.ResultsXLSX(records)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue("Billing Records", "A1")
	require.NoError(t, err)
	assert.Equal(t, "meter_number", v)

	v, err = f.GetCellValue("Billing Records", "A2")
	require.NoError(t, err)
	assert.Equal(t, "M1", v)
}
