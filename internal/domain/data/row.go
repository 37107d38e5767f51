package data

import (
	"encoding/json"
)

// Row represents a single table row
// Key = column name, Value = typed cell value
type Row map[string]Value

// NewRow creates a Row with room for n columns
func NewRow(n int) Row {
	return make(Row, n)
}

// Copy creates a copy of the row to prevent mutation
func (r Row) Copy() Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Get returns the value for a column, Null when the column is missing
func (r Row) Get(column string) Value {
	return r[column]
}

// Plain converts the row to a map of plain Go values (nil for nulls).
func (r Row) Plain() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for k, v := range r {
		m[k] = v.Interface()
	}
	return m
}

// MarshalJSON implements json.Marshaler interface
// This allows Row to be marshaled to JSON as a map
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Value(r))
}
