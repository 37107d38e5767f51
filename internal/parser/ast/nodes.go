package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents a standalone query
type Statement interface {
	Node
	statementNode()
}

// Expression represents a value or a condition
type Expression interface {
	Node
	expressionNode()
}

// Condition is a single WHERE term bound to one column
type Condition interface {
	Expression
	ColumnName() string
}

// Identifier represents a column name
type Identifier struct {
	TokenLiteralValue string // The token literal (e.g. "Score")
	Value             string // The value (e.g. "Score")
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.TokenLiteralValue }
func (i *Identifier) String() string {
	if isBareIdentifier(i.Value) {
		return i.Value
	}
	return `"` + strings.ReplaceAll(i.Value, `"`, `""`) + `"`
}

type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
	LiteralNull
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "STRING"
	case LiteralNumber:
		return "NUMBER"
	case LiteralBool:
		return "BOOLEAN"
	case LiteralNull:
		return "NULL"
	}
	return fmt.Sprintf("LiteralKind(%d)", int(k))
}

// Literal represents a fixed value.
// Value holds a string, float64, bool or nil depending on Kind.
type Literal struct {
	TokenLiteralValue string
	Value             interface{}
	Kind              LiteralKind
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.TokenLiteralValue }
func (l *Literal) String() string {
	switch l.Kind {
	case LiteralString:
		return "'" + strings.ReplaceAll(l.TokenLiteralValue, "'", "''") + "'"
	case LiteralBool, LiteralNull:
		return strings.ToUpper(l.TokenLiteralValue)
	}
	return l.TokenLiteralValue
}

// Text returns the literal as it was written, without quotes
func (l *Literal) Text() string { return l.TokenLiteralValue }

// BinaryExpression: Left Operator Right (e.g. Score >= 3)
type BinaryExpression struct {
	Left     *Identifier
	Operator string
	Right    *Literal
}

func (e *BinaryExpression) expressionNode()      {}
func (e *BinaryExpression) TokenLiteral() string { return e.Operator }
func (e *BinaryExpression) ColumnName() string   { return e.Left.Value }
func (e *BinaryExpression) String() string {
	return fmt.Sprintf("%s %s %s", e.Left.String(), e.Operator, e.Right.String())
}

// BetweenExpression: Column BETWEEN Low AND High
type BetweenExpression struct {
	Column *Identifier
	Low    *Literal
	High   *Literal
}

func (e *BetweenExpression) expressionNode()      {}
func (e *BetweenExpression) TokenLiteral() string { return "BETWEEN" }
func (e *BetweenExpression) ColumnName() string   { return e.Column.Value }
func (e *BetweenExpression) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", e.Column.String(), e.Low.String(), e.High.String())
}

// InExpression: Column IN (v1, v2, ...)
type InExpression struct {
	Column *Identifier
	Values []*Literal
}

func (e *InExpression) expressionNode()      {}
func (e *InExpression) TokenLiteral() string { return "IN" }
func (e *InExpression) ColumnName() string   { return e.Column.Value }
func (e *InExpression) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s IN (%s)", e.Column.String(), strings.Join(parts, ", "))
}

// FilterStatement: FILTER [ROWS ...] [COLUMNS ...] [WHERE c1 AND c2 ...]
type FilterStatement struct {
	Rows    []*Literal
	Columns []*Identifier
	Where   []Condition
}

func (s *FilterStatement) statementNode()       {}
func (s *FilterStatement) TokenLiteral() string { return "FILTER" }
func (s *FilterStatement) String() string {
	var out bytes.Buffer
	out.WriteString("FILTER")
	if len(s.Rows) > 0 {
		out.WriteString(" ROWS ")
		for i, r := range s.Rows {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(r.String())
		}
	}
	if len(s.Columns) > 0 {
		out.WriteString(" COLUMNS ")
		for i, c := range s.Columns {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(c.String())
		}
	}
	if len(s.Where) > 0 {
		out.WriteString(" WHERE ")
		for i, c := range s.Where {
			if i > 0 {
				out.WriteString(" AND ")
			}
			out.WriteString(c.String())
		}
	}
	return out.String()
}

// isBareIdentifier reports whether name can be written without quotes
func isBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		letter := r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
		digit := '0' <= r && r <= '9'
		if !letter && !(digit && i > 0) {
			return false
		}
	}
	return !isKeyword(name)
}

var reserved = []string{"FILTER", "ROWS", "COLUMNS", "WHERE", "AND", "BETWEEN", "IN", "TRUE", "FALSE", "NULL"}

func isKeyword(name string) bool {
	upper := strings.ToUpper(name)
	for _, k := range reserved {
		if k == upper {
			return true
		}
	}
	return false
}
