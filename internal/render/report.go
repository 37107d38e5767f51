package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/leengari/mdtable/internal/coerce"
)

// Report prints the per-column inference report
func Report(w io.Writer, report []coerce.Inference) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\ttype\tmatched\tnote")
	for _, inf := range report {
		note := ""
		if inf.FellBack() {
			note = fmt.Sprintf("fell back from %s at %q", inf.Candidate, inf.Offending)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", inf.Column, inf.Type, inf.Matched, inf.NonNull, note)
	}
	tw.Flush()
}
