package pipeline

import (
	"fmt"
	"io"
	"strconv"

	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const summaryElapsedPrecision = 100 * time.Millisecond

// Render writes the end-of-run report: one table with the reconciliation
// counters and, when trailer materialization faulted, a second table listing
// the retracted records.
func (s *Summary) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Metric", "Count"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	tw.AppendRows([]table.Row{
		{"Pages processed", strconv.Itoa(s.Pages)},
		{"Records inserted", strconv.Itoa(s.Inserted)},
		{"Records updated", strconv.Itoa(s.Updated)},
		{"Records reconciled", strconv.Itoa(s.Total)},
		{"Records skipped", strconv.Itoa(s.Skipped)},
		{"Trailer faults", strconv.Itoa(len(s.Faults))},
	})
	tw.AppendFooter(table.Row{"Elapsed", s.Elapsed.Round(summaryElapsedPrecision)})
	fmt.Fprintln(w, tw.Render())

	if len(s.Faults) == 0 {
		return
	}

	ft := table.NewWriter()
	ft.SetStyle(table.StyleRounded)
	ft.AppendHeader(table.Row{"Title", "Trailer", "Error"})
	for _, fault := range s.Faults {
		ft.AppendRow(table.Row{fault.Title, fault.URL, fault.Err})
	}
	fmt.Fprintln(w, ft.Render())
}
