package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/leengari/mdtable/internal/domain/data"
)

// Table is an immutable, index-keyed table of typed rows.
//
// The index column is tracked separately from the data columns. Every row
// holds exactly one value per data column (possibly Null), index keys are
// unique, and keys keep insertion order (or the order of an applied sort).
// Every transform returns a new Table; the receiver is never modified.
type Table struct {
	index   string
	columns []Column
	keys    []string
	rows    map[string]data.Row
}

// New builds a Table, copying all inputs and validating the invariants
func New(index string, columns []Column, keys []string, rows map[string]data.Row) (*Table, error) {
	t := &Table{
		index:   index,
		columns: make([]Column, len(columns)),
		keys:    make([]string, len(keys)),
		rows:    make(map[string]data.Row, len(keys)),
	}
	copy(t.columns, columns)
	copy(t.keys, keys)

	seenCols := make(map[string]bool, len(columns))
	for _, col := range columns {
		if col.Name == index {
			return nil, fmt.Errorf("column %q collides with index column", col.Name)
		}
		if seenCols[col.Name] {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if !col.Type.Valid() {
			return nil, fmt.Errorf("column %q has unknown type %q", col.Name, col.Type)
		}
		seenCols[col.Name] = true
	}

	for _, key := range keys {
		if _, dup := t.rows[key]; dup {
			return nil, fmt.Errorf("duplicate index key %q", key)
		}
		src, ok := rows[key]
		if !ok {
			return nil, fmt.Errorf("no row for index key %q", key)
		}
		if len(src) != len(columns) {
			return nil, fmt.Errorf("row %q has %d values, want %d", key, len(src), len(columns))
		}
		for _, col := range columns {
			val, ok := src[col.Name]
			if !ok {
				return nil, fmt.Errorf("row %q has no value for column %q", key, col.Name)
			}
			if !col.Type.Accepts(val.Kind()) {
				return nil, fmt.Errorf("row %q column %q: %s value in %s column", key, col.Name, val.Kind(), col.Type)
			}
		}
		t.rows[key] = src.Copy()
	}

	if len(rows) != len(keys) {
		return nil, fmt.Errorf("%d rows supplied for %d keys", len(rows), len(keys))
	}

	return t, nil
}

// IndexColumn returns the name of the index column
func (t *Table) IndexColumn() string { return t.index }

// Len returns the number of rows
func (t *Table) Len() int { return len(t.keys) }

// Columns returns the data column names in order (index column excluded)
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns the data columns with their types
func (t *Table) Schema() []Column {
	cols := make([]Column, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Type returns the type of a data column
func (t *Table) Type(column string) (ColumnType, bool) {
	for _, c := range t.columns {
		if c.Name == column {
			return c.Type, true
		}
	}
	return "", false
}

// HasColumn reports whether column is a data column of the table
func (t *Table) HasColumn(column string) bool {
	_, ok := t.Type(column)
	return ok
}

// Keys returns the index keys in row order
func (t *Table) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// HasKey reports whether key is an index key of the table
func (t *Table) HasKey(key string) bool {
	_, ok := t.rows[key]
	return ok
}

// Row returns a copy of the row stored under key
func (t *Table) Row(key string) (data.Row, bool) {
	row, ok := t.rows[key]
	if !ok {
		return nil, false
	}
	return row.Copy(), true
}

// Value returns a single cell; Null when the key or column is absent
func (t *Table) Value(key, column string) data.Value {
	return t.rows[key].Get(column)
}

// Project returns a new table holding only the given keys and columns,
// in the order supplied. Unknown keys and columns are skipped.
func (t *Table) Project(keys []string, columns []string) *Table {
	out := &Table{
		index: t.index,
		rows:  make(map[string]data.Row, len(keys)),
	}

	for _, name := range columns {
		if typ, ok := t.Type(name); ok {
			out.columns = append(out.columns, Column{Name: name, Type: typ})
		}
	}

	for _, key := range keys {
		src, ok := t.rows[key]
		if !ok {
			continue
		}
		if _, dup := out.rows[key]; dup {
			continue
		}
		row := data.NewRow(len(out.columns))
		for _, col := range out.columns {
			row[col.Name] = src[col.Name]
		}
		out.keys = append(out.keys, key)
		out.rows[key] = row
	}

	if out.keys == nil {
		out.keys = []string{}
	}
	if out.columns == nil {
		out.columns = []Column{}
	}
	return out
}

// SortByIndex returns a copy of the table with rows ordered by index key
func (t *Table) SortByIndex(desc bool) *Table {
	keys := t.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		if desc {
			return keys[i] > keys[j]
		}
		return keys[i] < keys[j]
	})
	return t.Project(keys, t.Columns())
}

// Equal reports whether two tables have the same index column, columns,
// key order and cell values.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.index != o.index || len(t.columns) != len(o.columns) || len(t.keys) != len(o.keys) {
		return false
	}
	for i := range t.columns {
		if t.columns[i] != o.columns[i] {
			return false
		}
	}
	for i, key := range t.keys {
		if o.keys[i] != key {
			return false
		}
		for _, col := range t.columns {
			if !t.rows[key].Get(col.Name).Equal(o.rows[key].Get(col.Name)) {
				return false
			}
		}
	}
	return true
}

type jsonRow struct {
	Key    string   `json:"key"`
	Values data.Row `json:"values"`
}

type jsonTable struct {
	Index   string    `json:"index"`
	Columns []Column  `json:"columns"`
	Rows    []jsonRow `json:"rows"`
}

// MarshalJSON implements json.Marshaler, keeping row order
func (t *Table) MarshalJSON() ([]byte, error) {
	out := jsonTable{
		Index:   t.index,
		Columns: t.Schema(),
		Rows:    make([]jsonRow, 0, len(t.keys)),
	}
	for _, key := range t.keys {
		out.Rows = append(out.Rows, jsonRow{Key: key, Values: t.rows[key]})
	}
	return json.Marshal(out)
}
