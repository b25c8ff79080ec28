package pipeline

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

// PrintSummary writes one line per column with its type and null counts.
func PrintSummary(w io.Writer, ds *domain.Dataset) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Column", "Type", "Non-null", "Null"})

	types := ds.Frame().Types()
	for i, name := range ds.Columns() {
		nulls := 0
		for _, m := range ds.Missing(name) {
			if m {
				nulls++
			}
		}
		t.AppendRow(table.Row{name, string(types[i]), ds.Len() - nulls, nulls})
	}
	t.AppendFooter(table.Row{"Rows", "", ds.Len(), ""})
	t.Render()
}
