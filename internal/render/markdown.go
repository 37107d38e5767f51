package render

import (
	"strings"

	"github.com/leengari/mdtable/internal/domain/schema"
)

// Markdown projects t back to a pipe table. Nulls become blank cells and
// literal pipes are escaped, so ParseTable reads the same cells back.
func Markdown(t *schema.Table) string {
	columns := t.Columns()
	var b strings.Builder

	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(escapeCell(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(append([]string{t.IndexColumn()}, columns...))

	b.WriteString("|")
	for i := 0; i <= len(columns); i++ {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, key := range t.Keys() {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, key)
		for _, col := range columns {
			cells = append(cells, t.Value(key, col).String())
		}
		writeRow(cells)
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
