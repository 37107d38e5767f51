package planner

import (
	"fmt"
	"math"

	"github.com/leengari/mdtable/internal/domain/data"
	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/filter"
	"github.com/leengari/mdtable/internal/parser/ast"
	"github.com/leengari/mdtable/internal/planner/predicate"
)

// Options control how literals are read and which columns always survive
type Options struct {
	// DateLayout is the layout date literals are written in
	DateLayout string
	// AlwaysKeep is copied into the spec unchanged
	AlwaysKeep []string
}

// Plan converts a parsed FILTER statement into a filter.Spec for table t.
//
// Columns named in COLUMNS or WHERE must exist. The index column may appear in
// COLUMNS; it is always kept anyway. Several conditions on the same column
// are intersected.
func Plan(stmt *ast.FilterStatement, t *schema.Table, opts Options) (filter.Spec, error) {
	if opts.DateLayout == "" {
		opts.DateLayout = data.DateLayout
	}
	spec := filter.Spec{AlwaysKeep: opts.AlwaysKeep}

	// 1. Row keys; unknown keys simply select nothing
	for _, r := range stmt.Rows {
		spec.IndexKeys = append(spec.IndexKeys, r.Text())
	}

	// 2. Columns; the index name matches no data column, so naming
	// only the index keeps the index alone
	for _, c := range stmt.Columns {
		if c.Value != t.IndexColumn() && !t.HasColumn(c.Value) {
			return filter.Spec{}, fmt.Errorf("column not found: %s", c.Value)
		}
		spec.Columns = append(spec.Columns, c.Value)
	}

	// 3. Conditions
	for _, cond := range stmt.Where {
		col := cond.ColumnName()
		if col == t.IndexColumn() {
			return filter.Spec{}, fmt.Errorf("index column %s cannot be constrained, use ROWS", col)
		}
		typ, ok := t.Type(col)
		if !ok {
			return filter.Spec{}, fmt.Errorf("column not found: %s", col)
		}
		c, err := predicate.Build(cond, typ, opts.DateLayout)
		if err != nil {
			return filter.Spec{}, err
		}
		if spec.Constraints == nil {
			spec.Constraints = make(map[string]filter.Constraint)
		}
		if prev, ok := spec.Constraints[col]; ok {
			c, err = intersect(col, prev, c)
			if err != nil {
				return filter.Spec{}, err
			}
		}
		spec.Constraints[col] = c
	}

	return spec, nil
}

// intersect combines two constraints on the same column into one
func intersect(column string, a, b filter.Constraint) (filter.Constraint, error) {
	switch x := a.(type) {
	case filter.NumericRange:
		y := b.(filter.NumericRange)
		return filter.NumericRange{Min: math.Max(x.Min, y.Min), Max: math.Min(x.Max, y.Max)}, nil
	case filter.DateRange:
		y := b.(filter.DateRange)
		out := x
		if out.Start.IsZero() || !y.Start.IsZero() && y.Start.After(out.Start) {
			out.Start = y.Start
		}
		if out.End.IsZero() || !y.End.IsZero() && y.End.Before(out.End) {
			out.End = y.End
		}
		return out, nil
	case filter.BoolEquals:
		y := b.(filter.BoolEquals)
		if x.Want != y.Want {
			return nil, fmt.Errorf("conflicting conditions on column %s: %s and %s", column, x, y)
		}
		return x, nil
	case filter.CategorySet:
		y := b.(filter.CategorySet)
		out := filter.OneOf()
		for v := range x.Values {
			if _, ok := y.Values[v]; ok {
				out.Values[v] = struct{}{}
			}
		}
		out.IncludeNull = x.IncludeNull && y.IncludeNull
		return out, nil
	}
	return nil, fmt.Errorf("cannot combine conditions on column %s", column)
}
