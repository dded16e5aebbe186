// Package report turns torrent snapshots into the tables sent to the chat as images.
package report

import (
	"bytes"
	"fmt"
	"html/template"

	"magnet-bot/internal/domain"
	"magnet-bot/internal/units"
)

const (
	// RowHeight and BaseHeight size the canvas: rows*RowHeight + BaseHeight pixels.
	RowHeight  = 40
	BaseHeight = 200

	WideWidth   = 900
	NarrowWidth = 600
)

var (
	progressHeader  = []string{"Name", "Progress", "Downloaded", "Remaining", "ETA"}
	completedHeader = []string{"Name", "Size"}
)

// Table is a formatted report ready for rendering.
type Table struct {
	Kind   domain.ReportKind
	Header []string
	Rows   [][]string
	Width  int
	Height int
}

// Build formats records for the given report kind. It performs no I/O.
func Build(records []domain.Torrent, kind domain.ReportKind) Table {
	table := Table{
		Kind:   kind,
		Rows:   make([][]string, 0, len(records)),
		Height: len(records)*RowHeight + BaseHeight,
	}

	switch kind {
	case domain.ReportDownloading, domain.ReportResumed:
		table.Header = progressHeader
		table.Width = WideWidth
		for _, t := range records {
			table.Rows = append(table.Rows, []string{
				t.Name,
				units.FormatProgress(t.Progress),
				units.FormatSize(nonNegative(t.Downloaded)),
				units.FormatSize(nonNegative(t.AmountLeft)),
				units.FormatETA(t.ETA),
			})
		}
	case domain.ReportCompleted:
		table.Header = completedHeader
		table.Width = NarrowWidth
		for _, t := range records {
			table.Rows = append(table.Rows, []string{
				t.Name,
				units.FormatSize(nonNegative(t.TotalSize)),
			})
		}
	default:
		panic(fmt.Sprintf("report: unknown kind %d", int(kind)))
	}

	return table
}

// qBittorrent reports -1 for sizes it has not learned yet (magnets without metadata).
func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

var tableTemplate = template.Must(template.New("table").Parse(`<table>
<thead>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
`))

// Markup renders the table as an HTML fragment. Cell values are escaped.
func (t Table) Markup() (string, error) {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, t); err != nil {
		return "", fmt.Errorf("execute table template: %w", err)
	}
	return buf.String(), nil
}
