package data

import (
	"encoding/json"
	"strconv"
	"time"
)

// DateLayout is the layout used when a Date value is rendered as text.
const DateLayout = "2006-01-02"

// Kind tags which variant a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindDate
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindText:
		return "text"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single typed cell. The zero Value is Null.
// Values are immutable; accessors return the payload for the matching kind
// and the zero payload otherwise.
type Value struct {
	kind Kind
	b    bool
	n    float64
	t    time.Time
	s    string
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }
func Text(s string) Value { return Value{kind: KindText, s: s} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Bool() bool { return v.b }
func (v Value) Number() float64 { return v.n }
func (v Value) Date() time.Time { return v.t }
func (v Value) Text() string { return v.s }

// Equal reports whether two values have the same kind and payload.
// Dates compare by instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindDate:
		return v.t.Equal(o.t)
	case KindText:
		return v.s == o.s
	default:
		return true
	}
}

// String renders the value the way it would appear in a markdown cell.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "yes"
		}
		return "no"
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindDate:
		return v.t.Format(DateLayout)
	case KindText:
		return v.s
	default:
		return ""
	}
}

// Interface returns the payload as a plain Go value (nil for Null).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindDate:
		return v.t
	case KindText:
		return v.s
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindDate:
		return json.Marshal(v.t.Format(DateLayout))
	case KindText:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}
