package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table renders the summary as a go-pretty table followed by the same
// comparison and listing as Text.
type Table struct{}

func (Table) Render(w io.Writer, in Input) error {
	r := in.Report

	t := table.NewWriter()
	title := "Transmission Results"
	if in.RunID != "" {
		title = fmt.Sprintf("%s (%s)", title, in.RunID)
	}
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Value", Align: text.AlignRight},
	})

	t.AppendRow(table.Row{"Total bits", r.Total})
	t.AppendRow(table.Row{"Correct bits", r.Correct})
	t.AppendRow(table.Row{"Bit errors", r.Errors})
	t.AppendRow(table.Row{"Accuracy", fmt.Sprintf("%.2f%%", r.Accuracy)})
	t.AppendRow(table.Row{"Error rate", fmt.Sprintf("%.2f%%", r.ErrorRate)})
	if r.HasRates {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Elapsed", fmt.Sprintf("%.3f s", r.Elapsed.Seconds())})
		t.AppendRow(table.Row{"Bandwidth", fmt.Sprintf("%.2f bits/s", r.Bandwidth)})
		t.AppendRow(table.Row{"Goodput", fmt.Sprintf("%.2f bits/s", r.Goodput)})
	}
	if r.Mismatch != nil {
		t.AppendFooter(table.Row{"Warning", r.Mismatch.Error()})
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	writeComparison(&b, in)
	writePositions(&b, r)

	_, err := io.WriteString(w, b.String())
	return err
}
