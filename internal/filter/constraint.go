package filter

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/leengari/mdtable/internal/domain/data"
	"github.com/leengari/mdtable/internal/domain/schema"
)

// Constraint narrows the rows of one column. Each constraint is shaped for
// a single column type and is only evaluated against columns of that type.
type Constraint interface {
	// ColumnType is the column type this constraint applies to
	ColumnType() schema.ColumnType
	// Match reports whether a cell satisfies the constraint
	Match(v data.Value) bool
	String() string
}

// NumericRange keeps numbers in the inclusive range [Min, Max]. Null never matches.
type NumericRange struct {
	Min float64
	Max float64
}

// AtLeast returns a range with no upper bound
func AtLeast(min float64) NumericRange { return NumericRange{Min: min, Max: math.Inf(1)} }

// AtMost returns a range with no lower bound
func AtMost(max float64) NumericRange { return NumericRange{Min: math.Inf(-1), Max: max} }

func (r NumericRange) ColumnType() schema.ColumnType { return schema.ColumnTypeNumeric }

func (r NumericRange) Match(v data.Value) bool {
	if v.Kind() != data.KindNumber {
		return false
	}
	n := v.Number()
	return n >= r.Min && n <= r.Max
}

func (r NumericRange) String() string {
	return "[" + data.Number(r.Min).String() + ", " + data.Number(r.Max).String() + "]"
}

// DateRange keeps dates in the inclusive range [Start, End]. A zero bound is open.
// Null never matches.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) ColumnType() schema.ColumnType { return schema.ColumnTypeDate }

func (r DateRange) Match(v data.Value) bool {
	if v.Kind() != data.KindDate {
		return false
	}
	d := v.Date()
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

func (r DateRange) String() string {
	bound := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format(data.DateLayout)
	}
	return "[" + bound(r.Start) + ", " + bound(r.End) + "]"
}

// BoolEquals keeps rows whose value equals Want. Null never matches.
type BoolEquals struct {
	Want bool
}

func (b BoolEquals) ColumnType() schema.ColumnType { return schema.ColumnTypeBoolean }

func (b BoolEquals) Match(v data.Value) bool {
	return v.Kind() == data.KindBool && v.Bool() == b.Want
}

func (b BoolEquals) String() string {
	return "= " + data.Bool(b.Want).String()
}

// CategorySet keeps rows whose value is one of the allowed strings.
// Null matches only when IncludeNull is set.
type CategorySet struct {
	Values      map[string]struct{}
	IncludeNull bool
}

// OneOf builds a CategorySet from a list of allowed values
func OneOf(values ...string) CategorySet {
	set := CategorySet{Values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		set.Values[v] = struct{}{}
	}
	return set
}

// WithNull returns a copy of the set that also accepts Null
func (c CategorySet) WithNull() CategorySet {
	c.IncludeNull = true
	return c
}

func (c CategorySet) ColumnType() schema.ColumnType { return schema.ColumnTypeCategorical }

func (c CategorySet) Match(v data.Value) bool {
	switch v.Kind() {
	case data.KindNull:
		return c.IncludeNull
	case data.KindText:
		_, ok := c.Values[v.Text()]
		return ok
	}
	return false
}

func (c CategorySet) String() string {
	vals := make([]string, 0, len(c.Values)+1)
	for v := range c.Values {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	if c.IncludeNull {
		vals = append(vals, "NULL")
	}
	return "in {" + strings.Join(vals, ", ") + "}"
}
