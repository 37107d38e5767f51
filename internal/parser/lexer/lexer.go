package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER // Score, "Commercial?"
	STRING     // 'alpaca-7b'
	NUMBER     // 3, -1.5

	// Keywords
	FILTER
	ROWS
	COLUMNS
	WHERE
	AND
	BETWEEN
	IN
	TRUE
	FALSE
	NULL

	// Operators & Punctuation
	ASTERISK      // *
	COMMA         // ,
	PAREN_OPEN    // (
	PAREN_CLOSE   // )
	EQUALS        // =
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=
	SEMICOLON     // ;
)

var tokenNames = map[TokenType]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "EOF",
	IDENTIFIER:    "IDENTIFIER",
	STRING:        "STRING",
	NUMBER:        "NUMBER",
	FILTER:        "FILTER",
	ROWS:          "ROWS",
	COLUMNS:       "COLUMNS",
	WHERE:         "WHERE",
	AND:           "AND",
	BETWEEN:       "BETWEEN",
	IN:            "IN",
	TRUE:          "TRUE",
	FALSE:         "FALSE",
	NULL:          "NULL",
	ASTERISK:      "*",
	COMMA:         ",",
	PAREN_OPEN:    "(",
	PAREN_CLOSE:   ")",
	EQUALS:        "=",
	LESS_EQUAL:    "<=",
	GREATER_EQUAL: ">=",
	SEMICOLON:     ";",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"FILTER":  FILTER,
	"ROWS":    ROWS,
	"COLUMNS": COLUMNS,
	"WHERE":   WHERE,
	"AND":     AND,
	"BETWEEN": BETWEEN,
	"IN":      IN,
	"TRUE":    TRUE,
	"FALSE":   FALSE,
	"NULL":    NULL,
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	line, col := l.line, l.column

	switch l.ch {
	case '*':
		tok = newToken(ASTERISK, l.ch, line, col)
	case ',':
		tok = newToken(COMMA, l.ch, line, col)
	case '(':
		tok = newToken(PAREN_OPEN, l.ch, line, col)
	case ')':
		tok = newToken(PAREN_CLOSE, l.ch, line, col)
	case '=':
		tok = newToken(EQUALS, l.ch, line, col)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, col)
	case '<', '>':
		if l.peekChar() != '=' {
			tok = newToken(ILLEGAL, l.ch, line, col)
			break
		}
		typ := LESS_EQUAL
		if l.ch == '>' {
			typ = GREATER_EQUAL
		}
		lit := string(l.ch) + "="
		l.readChar()
		tok = Token{Type: typ, Literal: lit, Line: line, Column: col}
	case '\'', '"':
		quote := l.ch
		lit, ok := l.readQuoted(quote)
		if !ok {
			return Token{Type: ILLEGAL, Literal: string(quote) + lit, Line: line, Column: col}
		}
		typ := STRING
		if quote == '"' {
			typ = IDENTIFIER
		}
		return Token{Type: typ, Literal: lit, Line: line, Column: col}
	case 0:
		tok.Literal = ""
		tok.Type = EOF
		tok.Line, tok.Column = line, col
	default:
		if isLetter(l.ch) {
			lit := l.readIdentifier()
			return Token{Type: LookupIdent(lit), Literal: lit, Line: line, Column: col}
		} else if isDigit(l.ch) || l.ch == '.' && isDigit(l.peekChar()) ||
			(l.ch == '-' || l.ch == '+') && (isDigit(l.peekChar()) || l.peekChar() == '.') {
			return Token{Type: NUMBER, Literal: l.readNumber(), Line: line, Column: col}
		} else {
			tok = newToken(ILLEGAL, l.ch, line, col)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' || l.ch == '+' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

// readQuoted reads a quoted literal; a doubled quote stands for one quote
// character. ok is false when the input ends before the closing quote.
func (l *Lexer) readQuoted(quote byte) (string, bool) {
	var b strings.Builder
	for {
		l.readChar()
		switch {
		case l.ch == 0:
			return b.String(), false
		case l.ch == quote && l.peekChar() == quote:
			b.WriteByte(quote)
			l.readChar()
		case l.ch == quote:
			l.readChar()
			return b.String(), true
		default:
			if l.ch == '\n' {
				l.line++
				l.column = 0
			}
			b.WriteByte(l.ch)
		}
	}
}

func newToken(tokenType TokenType, ch byte, line, col int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize scans the entire input at once
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("illegal token at line %d, col %d: %s", tok.Line, tok.Column, tok.Literal)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
