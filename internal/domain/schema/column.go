package schema

import "github.com/leengari/mdtable/internal/domain/data"

// ColumnType is the semantic type inferred for a column at load time
type ColumnType string

const (
	ColumnTypeBoolean     ColumnType = "BOOLEAN"
	ColumnTypeNumeric     ColumnType = "NUMERIC"
	ColumnTypeDate        ColumnType = "DATE"
	ColumnTypeCategorical ColumnType = "CATEGORICAL"
)

// Valid reports whether t is one of the known column types
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnTypeBoolean, ColumnTypeNumeric, ColumnTypeDate, ColumnTypeCategorical:
		return true
	}
	return false
}

// Accepts reports whether a value of kind k may be stored in a column of type t.
// Null is accepted by every column type.
func (t ColumnType) Accepts(k data.Kind) bool {
	if k == data.KindNull {
		return true
	}
	switch t {
	case ColumnTypeBoolean:
		return k == data.KindBool
	case ColumnTypeNumeric:
		return k == data.KindNumber
	case ColumnTypeDate:
		return k == data.KindDate
	case ColumnTypeCategorical:
		return k == data.KindText
	}
	return false
}

// Column pairs a column name with its type
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}
