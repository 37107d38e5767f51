package parser

import (
	"strings"
	"testing"

	"github.com/leengari/mdtable/internal/parser/ast"
	"github.com/leengari/mdtable/internal/parser/lexer"
)

func TestParseFilter(t *testing.T) {
	input := `FILTER ROWS A, 'alpaca-7b' COLUMNS Score, "Commercial?" WHERE Score BETWEEN 3 AND 4.5;`
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("Lexer error: %v", err)
	}

	p := New(tokens)
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	f, ok := stmt.(*ast.FilterStatement)
	if !ok {
		t.Fatalf("Expected FilterStatement, got %T", stmt)
	}

	if len(f.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(f.Rows))
	}
	if f.Rows[0].Text() != "A" || f.Rows[1].Text() != "alpaca-7b" {
		t.Errorf("Unexpected rows: %s, %s", f.Rows[0].Text(), f.Rows[1].Text())
	}

	if len(f.Columns) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(f.Columns))
	}
	if f.Columns[1].Value != "Commercial?" {
		t.Errorf("Expected column Commercial?, got %s", f.Columns[1].Value)
	}

	if len(f.Where) != 1 {
		t.Fatalf("Expected 1 condition, got %d", len(f.Where))
	}
	between, ok := f.Where[0].(*ast.BetweenExpression)
	if !ok {
		t.Fatalf("Expected BetweenExpression, got %T", f.Where[0])
	}
	if between.ColumnName() != "Score" {
		t.Errorf("Expected column Score, got %s", between.ColumnName())
	}
	if between.Low.Value.(float64) != 3 || between.High.Value.(float64) != 4.5 {
		t.Errorf("Expected bounds 3 and 4.5, got %v and %v", between.Low.Value, between.High.Value)
	}
}

func TestParseConditions(t *testing.T) {
	f, err := ParseQuery(`FILTER WHERE Score >= 3 AND Score <= 4 AND "Commercial?" = false AND Org IN ('Meta', NULL) AND Released = '2023-03-14'`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Where) != 5 {
		t.Fatalf("Expected 5 conditions, got %d", len(f.Where))
	}

	ge := f.Where[0].(*ast.BinaryExpression)
	if ge.Operator != ">=" || ge.Right.Kind != ast.LiteralNumber {
		t.Errorf("Unexpected first condition: %s", ge)
	}
	le := f.Where[1].(*ast.BinaryExpression)
	if le.Operator != "<=" {
		t.Errorf("Expected <=, got %s", le.Operator)
	}
	eq := f.Where[2].(*ast.BinaryExpression)
	if eq.Right.Kind != ast.LiteralBool || eq.Right.Value.(bool) != false {
		t.Errorf("Expected FALSE literal, got %s", eq.Right)
	}
	in := f.Where[3].(*ast.InExpression)
	if len(in.Values) != 2 || in.Values[1].Kind != ast.LiteralNull {
		t.Errorf("Unexpected IN list: %s", in)
	}
	date := f.Where[4].(*ast.BinaryExpression)
	if date.Right.Kind != ast.LiteralString || date.Right.Text() != "2023-03-14" {
		t.Errorf("Expected string literal, got %s", date.Right)
	}
}

func TestParseEmptyFilter(t *testing.T) {
	for _, input := range []string{"FILTER", "filter;", "FILTER COLUMNS *"} {
		f, err := ParseQuery(input)
		if err != nil {
			t.Fatalf("%q: parse error: %v", input, err)
		}
		if len(f.Rows) != 0 || len(f.Columns) != 0 || len(f.Where) != 0 {
			t.Errorf("%q: expected an empty statement, got %s", input, f)
		}
	}
}

func TestClausesInAnyOrder(t *testing.T) {
	f, err := ParseQuery("FILTER WHERE x = 1 ROWS a COLUMNS x")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Rows) != 1 || len(f.Columns) != 1 || len(f.Where) != 1 {
		t.Errorf("Unexpected statement: %s", f)
	}
}

func TestStatementString(t *testing.T) {
	input := `FILTER ROWS 'A', 'it''s' COLUMNS Score, "Commercial?" WHERE Score BETWEEN 3 AND 4 AND "Commercial?" = TRUE AND Org IN ('Meta', NULL)`
	f, err := ParseQuery(input)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if f.String() != input {
		t.Errorf("String mismatch\nwant: %s\ngot:  %s", input, f.String())
	}

	again, err := ParseQuery(f.String())
	if err != nil {
		t.Fatalf("Reparse error: %v", err)
	}
	if again.String() != f.String() {
		t.Errorf("Reparse changed the statement: %s", again)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "expected FILTER"},
		{"SELECT * FROM t", "expected FILTER"},
		{"FILTER WHERE x < 3", "illegal token"},
		{"FILTER ROWS", "expected row key"},
		{"FILTER COLUMNS 'x'", "expected identifier"},
		{"FILTER COLUMNS a,", "expected identifier after comma"},
		{"FILTER WHERE", "expected column name"},
		{"FILTER WHERE x", "expected =, >=, <=, BETWEEN or IN"},
		{"FILTER WHERE x BETWEEN 1 4", "expected AND in BETWEEN"},
		{"FILTER WHERE x IN 1", "expected ( after IN"},
		{"FILTER WHERE x IN (1, 2", "expected ) to close IN list"},
		{"FILTER WHERE x = y", "expected literal"},
		{"FILTER ROWS a ROWS b", "duplicate ROWS clause"},
		{"FILTER ROWS a b", "unexpected token b"},
	}

	for _, tt := range tests {
		_, err := ParseQuery(tt.input)
		if err == nil {
			t.Errorf("%q: expected error, got nil", tt.input)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%q: expected error containing %q, got %q", tt.input, tt.want, err.Error())
		}
	}
}
