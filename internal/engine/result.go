package engine

import (
	"github.com/leengari/mdtable/internal/domain/data"
	"github.com/leengari/mdtable/internal/domain/schema"
)

// ColumnMetadata describes one result column
type ColumnMetadata struct {
	Name  string            `json:"name"`
	Type  schema.ColumnType `json:"type,omitempty"`
	Index bool              `json:"index,omitempty"`
}

// Result is a table flattened for display or transport.
// Columns start with the index column; every row carries the index key under that name.
type Result struct {
	Columns  []string         `json:"columns,omitempty"`
	Metadata []ColumnMetadata `json:"metadata,omitempty"`
	Rows     []data.Row       `json:"rows,omitempty"`
	Message  string           `json:"message,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// NewResult flattens t into a Result
func NewResult(t *schema.Table) *Result {
	index := t.IndexColumn()
	res := &Result{
		Columns:  append([]string{index}, t.Columns()...),
		Metadata: []ColumnMetadata{{Name: index, Index: true}},
		Rows:     make([]data.Row, 0, t.Len()),
	}
	for _, c := range t.Schema() {
		res.Metadata = append(res.Metadata, ColumnMetadata{Name: c.Name, Type: c.Type})
	}
	for _, key := range t.Keys() {
		row, _ := t.Row(key)
		row[index] = data.Text(key)
		res.Rows = append(res.Rows, row)
	}
	return res
}

// ErrorResult wraps err for transport
func ErrorResult(err error) *Result {
	return &Result{Error: err.Error()}
}
