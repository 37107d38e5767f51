package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against the typed errors below
var (
	ErrSectionNotFound = stderrors.New("section not found")
	ErrMalformedTable  = stderrors.New("malformed table")
	ErrTypeCoercion    = stderrors.New("type coercion failed")
)

// SectionNotFoundError is returned when the requested headline is absent
// or has no lines between it and the next headline.
type SectionNotFoundError struct {
	Headline string // headline prefix that was searched for
	Marker   string // heading marker that terminates a section
	Reason   string // human-readable explanation (optional)
}

func (e *SectionNotFoundError) Error() string {
	parts := []string{fmt.Sprintf("section %q not found", e.Headline)}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, " - ")
}

func (e *SectionNotFoundError) Unwrap() error { return ErrSectionNotFound }

// MalformedTableError describes a structural problem in a pipe table
type MalformedTableError struct {
	Row    int    // 1-based data row number (-1 for table-level problems)
	Line   int    // 1-based line within the table text (0 if unknown)
	Key    string // index key of the offending row, if known
	Reason string // human-readable explanation
	Want   int    // expected cell count (0 if not a count mismatch)
	Got    int    // actual cell count
}

func (e *MalformedTableError) Error() string {
	parts := []string{"malformed table"}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	if e.Want > 0 {
		parts = append(parts, fmt.Sprintf("expected %d cells, got %d", e.Want, e.Got))
	}

	if e.Row >= 0 {
		loc := fmt.Sprintf("at data row %d", e.Row)
		if e.Key != "" {
			loc += fmt.Sprintf(" (%q)", e.Key)
		}
		if e.Line > 0 {
			loc += fmt.Sprintf(", line %d", e.Line)
		}
		parts = append(parts, loc)
	}

	return strings.Join(parts, " - ")
}

func (e *MalformedTableError) Unwrap() error { return ErrMalformedTable }

// TypeCoercionError is raised in strict mode when a column looks typed
// but contains a value that does not parse as that type.
type TypeCoercionError struct {
	Column   string // column name
	Value    string // first offending value
	Expected string // type the column was inferred as
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("type coercion failed in column %q - value %q is not %s", e.Column, e.Value, e.Expected)
}

func (e *TypeCoercionError) Unwrap() error { return ErrTypeCoercion }

// NewCountMismatch builds the error for a data row whose cell count
// differs from the header's.
func NewCountMismatch(row, line int, key string, want, got int) *MalformedTableError {
	return &MalformedTableError{
		Row:    row,
		Line:   line,
		Key:    key,
		Reason: "cell count mismatch",
		Want:   want,
		Got:    got,
	}
}

// NewTooFewRows builds the error for a table without a header and at least one data row.
func NewTooFewRows(rows int) *MalformedTableError {
	return &MalformedTableError{
		Row:    -1,
		Reason: fmt.Sprintf("need a header and at least one data row, found %d row(s)", rows),
	}
}
