package render

import (
	"fmt"
	"io"

	"github.com/leengari/mdtable/internal/domain/schema"
)

// Record prints one row as "Name: <key>" followed by one "<column>: <value>"
// line per column. Null cells print as an empty value.
func Record(w io.Writer, t *schema.Table, key string) error {
	if !t.HasKey(key) {
		return fmt.Errorf("row not found: %s", key)
	}
	fmt.Fprintf(w, "Name: %s\n", key)
	for _, col := range t.Columns() {
		fmt.Fprintf(w, "%s: %s\n", col, t.Value(key, col))
	}
	return nil
}
