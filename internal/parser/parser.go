package parser

import (
	"fmt"
	"strconv"

	"github.com/leengari/mdtable/internal/parser/ast"
	"github.com/leengari/mdtable/internal/parser/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

// ParseQuery tokenizes and parses a single filter query
func ParseQuery(input string) (*ast.FilterStatement, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	stmt, err := New(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return stmt.(*ast.FilterStatement), nil
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF}
	}
}

func (p *Parser) Parse() (ast.Statement, error) {
	switch p.curTok.Type {
	case lexer.FILTER:
		return p.parseFilter()
	default:
		return nil, fmt.Errorf("unexpected token %v, expected FILTER", p.curTok.Type)
	}
}

func (p *Parser) parseFilter() (*ast.FilterStatement, error) {
	stmt := &ast.FilterStatement{}
	seen := make(map[lexer.TokenType]bool)

	// FILTER
	p.nextToken()

	for isClauseKeyword(p.curTok.Type) {
		clause := p.curTok.Type
		if seen[clause] {
			return nil, fmt.Errorf("duplicate %s clause", clause)
		}
		seen[clause] = true
		p.nextToken()

		var err error
		switch clause {
		case lexer.ROWS:
			stmt.Rows, err = p.parseKeyList()
		case lexer.COLUMNS:
			stmt.Columns, err = p.parseIdentifierList()
		case lexer.WHERE:
			stmt.Where, err = p.parseConditions()
		}
		if err != nil {
			return nil, err
		}
	}

	// Semicolon (Optional)
	if p.curTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}

	if p.curTok.Type != lexer.EOF {
		return nil, fmt.Errorf("unexpected token %s at line %d, col %d", p.curTok.Literal, p.curTok.Line, p.curTok.Column)
	}

	return stmt, nil
}

// parseKeyList reads index keys; bare words, quoted strings and numbers are accepted
func (p *Parser) parseKeyList() ([]*ast.Literal, error) {
	var keys []*ast.Literal
	for {
		switch p.curTok.Type {
		case lexer.IDENTIFIER, lexer.STRING, lexer.NUMBER:
			keys = append(keys, &ast.Literal{TokenLiteralValue: p.curTok.Literal, Value: p.curTok.Literal, Kind: ast.LiteralString})
			p.nextToken()
		default:
			return nil, fmt.Errorf("expected row key, got %s", describe(p.curTok))
		}
		if p.curTok.Type != lexer.COMMA {
			return keys, nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseIdentifierList() ([]*ast.Identifier, error) {
	var identifiers []*ast.Identifier

	// COLUMNS * keeps every column
	if p.curTok.Type == lexer.ASTERISK {
		p.nextToken()
		return nil, nil
	}

	if p.curTok.Type != lexer.IDENTIFIER {
		return nil, fmt.Errorf("expected identifier, got %s", describe(p.curTok))
	}

	identifiers = append(identifiers, p.identifier())
	p.nextToken()

	for p.curTok.Type == lexer.COMMA {
		p.nextToken()
		if p.curTok.Type != lexer.IDENTIFIER {
			return nil, fmt.Errorf("expected identifier after comma, got %s", describe(p.curTok))
		}
		identifiers = append(identifiers, p.identifier())
		p.nextToken()
	}

	return identifiers, nil
}

func (p *Parser) parseConditions() ([]ast.Condition, error) {
	var conds []ast.Condition
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)

		if p.curTok.Type != lexer.AND {
			return conds, nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseCondition() (ast.Condition, error) {
	if p.curTok.Type != lexer.IDENTIFIER {
		return nil, fmt.Errorf("expected column name, got %s", describe(p.curTok))
	}
	column := p.identifier()
	p.nextToken()

	switch {
	case isComparisonOperator(p.curTok.Type):
		op := p.curTok.Literal
		p.nextToken()
		right, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpression{Left: column, Operator: op, Right: right}, nil

	case p.curTok.Type == lexer.BETWEEN:
		p.nextToken()
		low, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != lexer.AND {
			return nil, fmt.Errorf("expected AND in BETWEEN, got %s", describe(p.curTok))
		}
		p.nextToken()
		high, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.BetweenExpression{Column: column, Low: low, High: high}, nil

	case p.curTok.Type == lexer.IN:
		p.nextToken()
		if p.curTok.Type != lexer.PAREN_OPEN {
			return nil, fmt.Errorf("expected ( after IN, got %s", describe(p.curTok))
		}
		p.nextToken()
		var values []*ast.Literal
		for {
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			values = append(values, lit)
			if p.curTok.Type != lexer.COMMA {
				break
			}
			p.nextToken()
		}
		if p.curTok.Type != lexer.PAREN_CLOSE {
			return nil, fmt.Errorf("expected ) to close IN list, got %s", describe(p.curTok))
		}
		p.nextToken()
		return &ast.InExpression{Column: column, Values: values}, nil
	}

	return nil, fmt.Errorf("expected =, >=, <=, BETWEEN or IN after %s, got %s", column.Value, describe(p.curTok))
}

func (p *Parser) parseLiteral() (*ast.Literal, error) {
	tok := p.curTok
	switch tok.Type {
	case lexer.STRING:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: tok.Literal, Value: tok.Literal, Kind: ast.LiteralString}, nil
	case lexer.NUMBER:
		p.nextToken()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", tok.Literal)
		}
		return &ast.Literal{TokenLiteralValue: tok.Literal, Value: f, Kind: ast.LiteralNumber}, nil
	case lexer.TRUE:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: "TRUE", Value: true, Kind: ast.LiteralBool}, nil
	case lexer.FALSE:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: "FALSE", Value: false, Kind: ast.LiteralBool}, nil
	case lexer.NULL:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: "NULL", Value: nil, Kind: ast.LiteralNull}, nil
	default:
		return nil, fmt.Errorf("expected literal, got %s", describe(tok))
	}
}

func (p *Parser) identifier() *ast.Identifier {
	return &ast.Identifier{TokenLiteralValue: p.curTok.Literal, Value: p.curTok.Literal}
}
