package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `FILTER ROWS 'alpaca-7b', gpt4 COLUMNS Score, "Commercial?"
WHERE Score BETWEEN -1.5 AND 4 AND "Commercial?" = true AND Org IN ('Meta', NULL) AND Released >= '2023-01-01';`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{FILTER, "FILTER"},
		{ROWS, "ROWS"},
		{STRING, "alpaca-7b"},
		{COMMA, ","},
		{IDENTIFIER, "gpt4"},
		{COLUMNS, "COLUMNS"},
		{IDENTIFIER, "Score"},
		{COMMA, ","},
		{IDENTIFIER, "Commercial?"},
		{WHERE, "WHERE"},
		{IDENTIFIER, "Score"},
		{BETWEEN, "BETWEEN"},
		{NUMBER, "-1.5"},
		{AND, "AND"},
		{NUMBER, "4"},
		{AND, "AND"},
		{IDENTIFIER, "Commercial?"},
		{EQUALS, "="},
		{TRUE, "true"},
		{AND, "AND"},
		{IDENTIFIER, "Org"},
		{IN, "IN"},
		{PAREN_OPEN, "("},
		{STRING, "Meta"},
		{COMMA, ","},
		{NULL, "NULL"},
		{PAREN_CLOSE, ")"},
		{AND, "AND"},
		{IDENTIFIER, "Released"},
		{GREATER_EQUAL, ">="},
		{STRING, "2023-01-01"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("FILTER\n  WHERE x <= .5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(tokens))
	}
	where := tokens[1]
	if where.Line != 2 || where.Column != 3 {
		t.Errorf("WHERE position: expected 2:3, got %d:%d", where.Line, where.Column)
	}
	if tokens[3].Type != LESS_EQUAL || tokens[4].Literal != ".5" {
		t.Errorf("unexpected tail tokens: %v %v", tokens[3], tokens[4])
	}
}

func TestDoubledQuotes(t *testing.T) {
	tokens, err := Tokenize(`'it''s' "a ""b"""`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Literal != "it's" {
		t.Errorf("expected it's, got %q", tokens[0].Literal)
	}
	if tokens[1].Type != IDENTIFIER || tokens[1].Literal != `a "b"` {
		t.Errorf("expected identifier a \"b\", got %v", tokens[1])
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, input := range []string{"FILTER 'open", "WHERE x < 3", "WHERE x ! 3", `"unterminated`} {
		if _, err := Tokenize(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}
