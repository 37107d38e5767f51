package coerce

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/cases"

	"github.com/leengari/mdtable/internal/domain/data"
	domainerrors "github.com/leengari/mdtable/internal/domain/errors"
	"github.com/leengari/mdtable/internal/domain/schema"
)

// Mode selects how columns that almost match a type are handled
type Mode int

const (
	// Lenient lets near-miss columns fall back to CATEGORICAL
	Lenient Mode = iota
	// Strict fails with a TypeCoercionError on near-miss columns. Near miss
	// uses Options.NearMissRatio in both modes: a column whose best rule
	// matches a smaller share of its values is plain CATEGORICAL and passes
	// strict mode silently, e.g. 1, 2, n/a at the default 0.8.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseMode maps "strict"/"lenient" to a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "strict":
		return Strict, nil
	case "lenient", "":
		return Lenient, nil
	}
	return Lenient, fmt.Errorf("unknown coercion mode %q (want strict or lenient)", s)
}

// Options controls type inference
type Options struct {
	Mode          Mode
	DateLayout    string   // time.Parse layout for DATE columns
	TrueTokens    []string // case-insensitive tokens read as true
	FalseTokens   []string // case-insensitive tokens read as false
	NearMissRatio float64  // share of values that must match for a column to count as a near miss
}

// DefaultOptions returns lenient inference with ISO dates and yes/no, true/false booleans.
func DefaultOptions() Options {
	return Options{
		Mode:          Lenient,
		DateLayout:    "2006-01-02",
		TrueTokens:    []string{"yes", "true"},
		FalseTokens:   []string{"no", "false"},
		NearMissRatio: 0.8,
	}
}

// numberPattern accepts an optionally signed decimal literal with optional exponent
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Inference describes what was decided for one column
type Inference struct {
	Column string            `json:"column"`
	Type   schema.ColumnType `json:"type"`
	// Candidate is the typed rule a lenient column nearly matched, empty otherwise
	Candidate schema.ColumnType `json:"candidate,omitempty"`
	// Offending is the first value that kept the column off Candidate
	Offending string `json:"offending,omitempty"`
	Matched   int    `json:"matched"`
	NonNull   int    `json:"nonNull"`
}

// FellBack reports whether a lenient column was downgraded to CATEGORICAL
func (i Inference) FellBack() bool {
	return i.Candidate != ""
}

// rule is one typed inference step, tried in order
type rule struct {
	typ   schema.ColumnType
	parse func(string) (data.Value, bool)
}

// coercer holds the per-call state built from Options
type coercer struct {
	opts  Options
	fold  cases.Caser
	truth map[string]bool
	rules []rule
}

func newCoercer(opts Options) *coercer {
	def := DefaultOptions()
	if opts.DateLayout == "" {
		opts.DateLayout = def.DateLayout
	}
	if len(opts.TrueTokens) == 0 && len(opts.FalseTokens) == 0 {
		opts.TrueTokens, opts.FalseTokens = def.TrueTokens, def.FalseTokens
	}
	if opts.NearMissRatio <= 0 || opts.NearMissRatio > 1 {
		opts.NearMissRatio = def.NearMissRatio
	}

	c := &coercer{
		opts:  opts,
		fold:  cases.Fold(),
		truth: make(map[string]bool, len(opts.TrueTokens)+len(opts.FalseTokens)),
	}
	for _, tok := range opts.TrueTokens {
		c.truth[c.fold.String(tok)] = true
	}
	for _, tok := range opts.FalseTokens {
		c.truth[c.fold.String(tok)] = false
	}

	c.rules = []rule{
		{schema.ColumnTypeBoolean, c.parseBool},
		{schema.ColumnTypeNumeric, parseNumber},
		{schema.ColumnTypeDate, c.parseDate},
	}
	return c
}

func (c *coercer) parseBool(s string) (data.Value, bool) {
	b, ok := c.truth[c.fold.String(s)]
	if !ok {
		return data.Value{}, false
	}
	return data.Bool(b), true
}

func parseNumber(s string) (data.Value, bool) {
	if !numberPattern.MatchString(s) {
		return data.Value{}, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return data.Value{}, false
	}
	return data.Number(f), true
}

func (c *coercer) parseDate(s string) (data.Value, bool) {
	d, err := time.Parse(c.opts.DateLayout, s)
	if err != nil {
		return data.Value{}, false
	}
	return data.Date(d), true
}

// rawValues returns the column's non-null cells as strings
func rawValues(t *schema.Table, column string) []string {
	var vals []string
	for _, key := range t.Keys() {
		v := t.Value(key, column)
		switch v.Kind() {
		case data.KindNull:
			continue
		case data.KindText:
			vals = append(vals, v.Text())
		default:
			vals = append(vals, v.String())
		}
	}
	return vals
}

// infer picks the first rule matching every value; when none does it
// records the first rule matching at least NearMissRatio of them.
func (c *coercer) infer(column string, vals []string) Inference {
	inf := Inference{Column: column, Type: schema.ColumnTypeCategorical, NonNull: len(vals)}
	if len(vals) == 0 {
		return inf
	}

	type miss struct {
		typ       schema.ColumnType
		matched   int
		offending string
	}
	var near *miss

	for _, r := range c.rules {
		matched := 0
		offending := ""
		for _, v := range vals {
			if _, ok := r.parse(v); ok {
				matched++
			} else if offending == "" {
				offending = v
			}
		}
		if matched == len(vals) {
			inf.Type = r.typ
			inf.Matched = matched
			return inf
		}
		ratio := float64(matched) / float64(len(vals))
		if near == nil && matched > 0 && ratio >= c.opts.NearMissRatio {
			near = &miss{typ: r.typ, matched: matched, offending: offending}
		}
	}

	if near != nil {
		inf.Candidate = near.typ
		inf.Offending = near.offending
		inf.Matched = near.matched
	}
	return inf
}

// Infer resolves the type of every data column without converting values.
// In strict mode a near-miss column yields a TypeCoercionError.
func Infer(t *schema.Table, opts Options) ([]Inference, error) {
	c := newCoercer(opts)
	return c.inferAll(t)
}

func (c *coercer) inferAll(t *schema.Table) ([]Inference, error) {
	columns := t.Columns()
	out := make([]Inference, 0, len(columns))
	for _, col := range columns {
		inf := c.infer(col, rawValues(t, col))
		if inf.FellBack() && c.opts.Mode == Strict {
			return nil, &domainerrors.TypeCoercionError{
				Column:   col,
				Value:    inf.Offending,
				Expected: string(inf.Candidate),
			}
		}
		out = append(out, inf)
	}
	return out, nil
}

// Coerce returns a new table whose columns carry their inferred types and
// whose values are converted accordingly. Null cells stay null.
func Coerce(t *schema.Table, opts Options) (*schema.Table, error) {
	tbl, _, err := CoerceWithReport(t, opts)
	return tbl, err
}

// CoerceWithReport is Coerce that also returns the per-column inferences
func CoerceWithReport(t *schema.Table, opts Options) (*schema.Table, []Inference, error) {
	c := newCoercer(opts)
	infs, err := c.inferAll(t)
	if err != nil {
		return nil, nil, err
	}

	parsers := make(map[schema.ColumnType]func(string) (data.Value, bool), len(c.rules))
	for _, r := range c.rules {
		parsers[r.typ] = r.parse
	}

	keys := t.Keys()
	columns := make([]schema.Column, len(infs))
	rows := make(map[string]data.Row, len(keys))
	for _, key := range keys {
		rows[key] = data.NewRow(len(infs))
	}

	for i, inf := range infs {
		columns[i] = schema.Column{Name: inf.Column, Type: inf.Type}
		parse := parsers[inf.Type]
		for _, key := range keys {
			v := t.Value(key, inf.Column)
			raw := v.Text()
			if v.Kind() != data.KindText {
				raw = v.String()
			}

			switch {
			case v.IsNull():
				rows[key][inf.Column] = data.Null()
			case parse == nil:
				rows[key][inf.Column] = data.Text(raw)
			default:
				parsed, _ := parse(raw)
				rows[key][inf.Column] = parsed
			}
		}
	}

	out, err := schema.New(t.IndexColumn(), columns, keys, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("coerce: %w", err)
	}
	return out, infs, nil
}
