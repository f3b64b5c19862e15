package report

import (
	"fmt"
	"html/template"
	"strings"
)

var tableTmpl = template.Must(template.New("table").Parse(
	`<table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse; font-family: Arial, sans-serif;">` +
		`<thead><tr>{{range .Headers}}<th style="background-color: #f2f2f2; padding: 8px; text-align: left;">{{.}}</th>{{end}}</tr></thead>` +
		`<tbody>{{range .Rows}}<tr>{{range .}}<td style="padding: 8px; border: 1px solid #ddd;">{{.}}</td>{{end}}</tr>{{end}}</tbody>` +
		`</table>`))

// HTMLTable renders a CSV body as a simple bordered HTML table with a shaded
// header row, for inline display in the notification email. Cell content is
// escaped by the template engine.
func HTMLTable(csvBody string) (string, error) {
	if strings.TrimSpace(csvBody) == "" {
		return "", nil
	}
	rows, err := parseCSV(csvBody)
	if err != nil {
		return "", fmt.Errorf("parse csv for html table: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}

	data := struct {
		Headers []string
		Rows    [][]string
	}{Headers: rows[0], Rows: rows[1:]}

	var b strings.Builder
	if err := tableTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render html table: %w", err)
	}
	return b.String(), nil
}
