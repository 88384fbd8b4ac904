package export

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// utf8BOM prefixes CSV output.
const utf8BOM = "\ufeff"

// ContentType returns the MIME type for format.
func ContentType(format string) (string, error) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", nil
	case FormatHTML:
		return "text/html; charset=utf-8", nil
	default:
		return "", ErrUnknownFormat
	}
}

// Write renders r in format.
func Write(w io.Writer, r Report, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatHTML:
		return WriteHTML(w, r)
	default:
		return ErrUnknownFormat
	}
}

// WriteCSV writes the summary block, a blank line, then the detail table.
func WriteCSV(w io.Writer, r Report) error {
	if _, errBOM := io.WriteString(w, utf8BOM); errBOM != nil {
		return fmt.Errorf("export: write bom: %w", errBOM)
	}
	cw := csv.NewWriter(w)
	records := [][]string{
		{r.Title},
		{"Dibuat", r.GeneratedAt.Format(timestampLayout) + " UTC"},
		{},
		{"Ringkasan"},
	}
	for _, line := range r.Summary {
		records = append(records, []string{neutralizeCell(line.Label), neutralizeCell(line.Value)})
	}
	records = append(records, []string{}, []string{"Detail"}, r.Columns)
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = neutralizeCell(cell)
		}
		records = append(records, cells)
	}
	if errWrite := cw.WriteAll(records); errWrite != nil {
		return fmt.Errorf("export: write csv: %w", errWrite)
	}
	return nil
}

// neutralizeCell prefixes cells a spreadsheet would evaluate as a formula.
func neutralizeCell(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + cell
	}
	return cell
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2937; margin: 32px; }
h1 { color: #065f46; margin-bottom: 4px; }
.meta { color: #6b7280; font-size: 12px; margin-bottom: 24px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; font-size: 12px; }
th, td { border: 1px solid #d1d5db; padding: 6px 8px; text-align: left; vertical-align: top; }
th { background: #ecfdf5; }
.summary td:first-child { font-weight: bold; width: 40%; }
@media print { body { margin: 0; } thead { display: table-header-group; } tr { page-break-inside: avoid; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Dibuat {{.GeneratedAt.Format "2006-01-02 15:04"}} UTC</div>
<h2>Ringkasan</h2>
<table class="summary">
{{- range .Summary}}
<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>
{{- end}}
</table>
<h2>Detail</h2>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- else}}
<tr><td colspan="{{len .Columns}}">Tidak ada data.</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// WriteHTML writes a print-styled report.
func WriteHTML(w io.Writer, r Report) error {
	if errExec := reportTemplate.Execute(w, r); errExec != nil {
		return fmt.Errorf("export: render html: %w", errExec)
	}
	return nil
}
