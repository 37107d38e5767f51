package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/engine"
)

// Table prints t as an aligned text table
func Table(w io.Writer, t *schema.Table) {
	Result(w, engine.NewResult(t))
}

// Result prints a query result: the error, or the message followed by the rows
func Result(w io.Writer, res *engine.Result) {
	if res.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", res.Error)
		return
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}

	if len(res.Rows) > 0 || len(res.Columns) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

		// Header - show type if metadata available
		for i, col := range res.Columns {
			if i < len(res.Metadata) && res.Metadata[i].Type != "" {
				fmt.Fprintf(tw, "%s (%s)", col, res.Metadata[i].Type)
			} else {
				fmt.Fprintf(tw, "%s", col)
			}
			if i < len(res.Columns)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)

		// Separator
		for i := range res.Columns {
			fmt.Fprintf(tw, "---")
			if i < len(res.Columns)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)

		// Rows
		for _, row := range res.Rows {
			for i, col := range res.Columns {
				val := row.Get(col)
				if val.IsNull() {
					fmt.Fprintf(tw, "NULL")
				} else {
					fmt.Fprintf(tw, "%s", val)
				}
				if i < len(res.Columns)-1 {
					fmt.Fprintf(tw, "\t")
				}
			}
			fmt.Fprintln(tw)
		}
		tw.Flush()
	}
}
