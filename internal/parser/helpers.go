package parser

import (
	"github.com/leengari/mdtable/internal/parser/lexer"
)

// isClauseKeyword checks if a token opens a FILTER clause
func isClauseKeyword(t lexer.TokenType) bool {
	return t == lexer.ROWS || t == lexer.COLUMNS || t == lexer.WHERE
}

// isComparisonOperator checks if a token type is a comparison operator
func isComparisonOperator(t lexer.TokenType) bool {
	return t == lexer.EQUALS ||
		t == lexer.LESS_EQUAL ||
		t == lexer.GREATER_EQUAL
}

// describe renders a token for error messages
func describe(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return tok.Literal
}
