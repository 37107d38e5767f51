package predicate

import (
	"fmt"
	"time"

	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/filter"
	"github.com/leengari/mdtable/internal/parser/ast"
)

// Build converts one WHERE condition into a constraint for a column of type typ.
// Supports:
//   - NUMERIC and DATE: =, >=, <=, BETWEEN
//   - BOOLEAN: = TRUE / FALSE
//   - CATEGORICAL: = and IN, with NULL allowed as a value
//
// Date literals are quoted strings in dateLayout.
func Build(cond ast.Condition, typ schema.ColumnType, dateLayout string) (filter.Constraint, error) {
	switch typ {
	case schema.ColumnTypeNumeric:
		return buildNumeric(cond)
	case schema.ColumnTypeDate:
		return buildDate(cond, dateLayout)
	case schema.ColumnTypeBoolean:
		return buildBool(cond)
	case schema.ColumnTypeCategorical:
		return buildCategory(cond)
	default:
		return nil, fmt.Errorf("unsupported column type %q for %s", typ, cond.ColumnName())
	}
}

// buildNumeric builds a NumericRange from a comparison or BETWEEN
func buildNumeric(cond ast.Condition) (filter.Constraint, error) {
	num := func(lit *ast.Literal) (float64, error) {
		if lit.Kind != ast.LiteralNumber {
			return 0, typeMismatch(cond, lit, schema.ColumnTypeNumeric)
		}
		return lit.Value.(float64), nil
	}

	switch e := cond.(type) {
	case *ast.BinaryExpression:
		n, err := num(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case ">=":
			return filter.AtLeast(n), nil
		case "<=":
			return filter.AtMost(n), nil
		default:
			return filter.NumericRange{Min: n, Max: n}, nil
		}
	case *ast.BetweenExpression:
		lo, err := num(e.Low)
		if err != nil {
			return nil, err
		}
		hi, err := num(e.High)
		if err != nil {
			return nil, err
		}
		return filter.NumericRange{Min: lo, Max: hi}, nil
	}
	return nil, unsupported(cond, schema.ColumnTypeNumeric)
}

// buildDate builds a DateRange; the zero time leaves a side open
func buildDate(cond ast.Condition, layout string) (filter.Constraint, error) {
	date := func(lit *ast.Literal) (time.Time, error) {
		if lit.Kind != ast.LiteralString {
			return time.Time{}, typeMismatch(cond, lit, schema.ColumnTypeDate)
		}
		d, err := time.Parse(layout, lit.Text())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %s for column %s: expected layout %s", lit, cond.ColumnName(), layout)
		}
		return d, nil
	}

	switch e := cond.(type) {
	case *ast.BinaryExpression:
		d, err := date(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case ">=":
			return filter.DateRange{Start: d}, nil
		case "<=":
			return filter.DateRange{End: d}, nil
		default:
			return filter.DateRange{Start: d, End: d}, nil
		}
	case *ast.BetweenExpression:
		start, err := date(e.Low)
		if err != nil {
			return nil, err
		}
		end, err := date(e.High)
		if err != nil {
			return nil, err
		}
		return filter.DateRange{Start: start, End: end}, nil
	}
	return nil, unsupported(cond, schema.ColumnTypeDate)
}

func buildBool(cond ast.Condition) (filter.Constraint, error) {
	e, ok := cond.(*ast.BinaryExpression)
	if !ok || e.Operator != "=" {
		return nil, unsupported(cond, schema.ColumnTypeBoolean)
	}
	if e.Right.Kind != ast.LiteralBool {
		return nil, typeMismatch(cond, e.Right, schema.ColumnTypeBoolean)
	}
	return filter.BoolEquals{Want: e.Right.Value.(bool)}, nil
}

// buildCategory accepts strings and numbers as text; NULL selects missing cells
func buildCategory(cond ast.Condition) (filter.Constraint, error) {
	var values []*ast.Literal
	switch e := cond.(type) {
	case *ast.BinaryExpression:
		if e.Operator != "=" {
			return nil, unsupported(cond, schema.ColumnTypeCategorical)
		}
		values = []*ast.Literal{e.Right}
	case *ast.InExpression:
		values = e.Values
	default:
		return nil, unsupported(cond, schema.ColumnTypeCategorical)
	}

	set := filter.OneOf()
	for _, lit := range values {
		switch lit.Kind {
		case ast.LiteralNull:
			set = set.WithNull()
		case ast.LiteralString, ast.LiteralNumber:
			set.Values[lit.Text()] = struct{}{}
		default:
			return nil, typeMismatch(cond, lit, schema.ColumnTypeCategorical)
		}
	}
	return set, nil
}

func typeMismatch(cond ast.Condition, lit *ast.Literal, typ schema.ColumnType) error {
	return fmt.Errorf("type mismatch for column %s: %s literal %s cannot be compared with %s", cond.ColumnName(), lit.Kind, lit, typ)
}

func unsupported(cond ast.Condition, typ schema.ColumnType) error {
	return fmt.Errorf("condition %q is not supported on %s column %s", cond.String(), typ, cond.ColumnName())
}
