package filter

import (
	"github.com/leengari/mdtable/internal/domain/data"
	"github.com/leengari/mdtable/internal/domain/schema"
)

// Spec describes one filtering request.
// Empty IndexKeys or Columns mean "keep all".
type Spec struct {
	IndexKeys []string
	Columns   []string
	// AlwaysKeep columns survive column retention whenever Columns is non-empty
	AlwaysKeep  []string
	Constraints map[string]Constraint
}

// IsEmpty returns true if the spec narrows nothing
func (s Spec) IsEmpty() bool {
	return len(s.IndexKeys) == 0 && len(s.Columns) == 0 && len(s.Constraints) == 0
}

// PredicateFunc tests whether a row matches certain criteria
type PredicateFunc func(data.Row) bool

// Apply narrows t according to spec and returns a new table.
//
// Steps run in a fixed order: row retention by index key, column retention,
// then per-column constraints AND-ed together. Kept rows and kept columns
// both follow the table's order, not the order of spec.IndexKeys or
// spec.Columns, and unknown names are skipped. Constraints on columns that
// are absent after step 2, or whose type does not match the column, are
// ignored. Apply never fails; an empty result is a valid table.
func Apply(t *schema.Table, spec Spec) *schema.Table {
	// 1. Rows, in table order
	keys := t.Keys()
	if len(spec.IndexKeys) > 0 {
		wanted := toSet(spec.IndexKeys)
		kept := keys[:0]
		for _, key := range keys {
			if _, ok := wanted[key]; ok {
				kept = append(kept, key)
			}
		}
		keys = kept
	}

	// 2. Columns, in table order
	columns := t.Columns()
	if len(spec.Columns) > 0 {
		wanted := toSet(spec.Columns)
		for _, c := range spec.AlwaysKeep {
			wanted[c] = struct{}{}
		}
		kept := columns[:0]
		for _, col := range columns {
			if _, ok := wanted[col]; ok {
				kept = append(kept, col)
			}
		}
		columns = kept
	}

	narrowed := t.Project(keys, columns)

	// 3. Value constraints
	pred := Build(narrowed, spec.Constraints)
	if pred == nil {
		return narrowed
	}

	matched := make([]string, 0, narrowed.Len())
	for _, key := range narrowed.Keys() {
		row, _ := narrowed.Row(key)
		if pred(row) {
			matched = append(matched, key)
		}
	}
	return narrowed.Project(matched, narrowed.Columns())
}

// Build combines the constraints that apply to t into one predicate.
// It returns nil when no constraint applies.
func Build(t *schema.Table, constraints map[string]Constraint) PredicateFunc {
	var preds []PredicateFunc
	for _, col := range t.Columns() {
		c, ok := constraints[col]
		if !ok || c == nil {
			continue
		}
		if typ, _ := t.Type(col); typ != c.ColumnType() {
			continue
		}
		preds = append(preds, columnPredicate(col, c))
	}

	if len(preds) == 0 {
		return nil
	}
	return func(row data.Row) bool {
		for _, p := range preds {
			if !p(row) {
				return false
			}
		}
		return true
	}
}

func columnPredicate(column string, c Constraint) PredicateFunc {
	return func(row data.Row) bool {
		return c.Match(row.Get(column))
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
