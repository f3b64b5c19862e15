package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bevalen/tune-energy-ocr-ui/internal/entity"
)

// ResultsXLSX renders the billing records as an XLSX workbook, mirroring the
// CSV columns, for recipients who open the report in a spreadsheet.
func ResultsXLSX(records []*entity.BillingRecord) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Billing Records"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet so the workbook only carries ours.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range ResultsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, strVal(r.MeterNumber))
		if r.TotalKWH != nil {
			write(2, *r.TotalKWH)
		}
		write(3, strVal(r.StartDate))
		write(4, strVal(r.EndDate))
		if r.TotalCharges != nil {
			write(5, *r.TotalCharges)
		}
		if r.Adjustments != nil {
			write(6, *r.Adjustments)
		}
		write(7, r.Warning)
		write(8, r.Filename)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16) // meter
	_ = f.SetColWidth(sheet, "B", "B", 12) // kwh
	_ = f.SetColWidth(sheet, "C", "D", 14) // dates
	_ = f.SetColWidth(sheet, "E", "F", 14) // amounts
	_ = f.SetColWidth(sheet, "G", "G", 48) // warnings
	_ = f.SetColWidth(sheet, "H", "H", 36) // filename

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
