package parser

import (
	"bizdsl/interpreter-go/pkg/ast"
)

// Binary precedence, loosest first. Every level is left-associative.
func (p *parser) expression() (ast.Expression, error) {
	return p.binary((*parser).andExpr, OR)
}

func (p *parser) andExpr() (ast.Expression, error) {
	return p.binary((*parser).equalityExpr, AND)
}

func (p *parser) equalityExpr() (ast.Expression, error) {
	return p.binary((*parser).comparisonExpr, EQ, NEQ)
}

func (p *parser) comparisonExpr() (ast.Expression, error) {
	return p.binary((*parser).additiveExpr, LESS, GREATER, LESS_EQ, GREATER_EQ)
}

func (p *parser) additiveExpr() (ast.Expression, error) {
	return p.binary((*parser).multiplicativeExpr, PLUS, MINUS)
}

func (p *parser) multiplicativeExpr() (ast.Expression, error) {
	return p.binary((*parser).postfixExpr, STAR, SLASH, PERCENT)
}

func (p *parser) binary(next func(*parser) (ast.Expression, error), ops ...TokenType) (ast.Expression, error) {
	start := p.peek()
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.match(ops...)
		if !ok {
			return left, nil
		}
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		left = finish(p, ast.NewBinaryExpression(op.Lexeme, left, right), start)
	}
}

// postfixExpr handles member and index chains: a.b[c].d
func (p *parser) postfixExpr() (ast.Expression, error) {
	start := p.peek()
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(PERIOD):
			p.advance()
			member, err := p.identifier("field name after '.'")
			if err != nil {
				return nil, err
			}
			expr = finish(p, ast.NewMemberAccess(expr, member), start)
		case p.check(LBRACKET):
			p.advance()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET, "']' after index"); err != nil {
				return nil, err
			}
			expr = finish(p, ast.NewIndexExpression(expr, index), start)
		default:
			return expr, nil
		}
	}
}

func (p *parser) primary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return finish(p, ast.NewNumberLiteral(tok.Literal.(float64)), tok), nil
	case MINUS:
		// Negative numeric literal; there is no general unary minus.
		if p.peekAt(1).Type != NUMBER {
			return nil, unexpected(tok, "expression")
		}
		p.advance()
		num := p.advance()
		return finish(p, ast.NewNumberLiteral(-num.Literal.(float64)), tok), nil
	case STRING:
		p.advance()
		return finish(p, ast.NewStringLiteral(tok.Literal.(string)), tok), nil
	case BOOLEAN:
		p.advance()
		return finish(p, ast.NewBooleanLiteral(tok.Literal.(bool)), tok), nil
	case NULL:
		p.advance()
		return finish(p, ast.NewNullLiteral(), tok), nil
	case IDENT:
		id, err := p.identifier("identifier")
		if err != nil {
			return nil, err
		}
		if !p.check(LPAREN) {
			return id, nil
		}
		return p.call(id, tok)
	case LPAREN:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "')' to close group"); err != nil {
			return nil, err
		}
		return expr, nil
	case LBRACKET:
		return p.arrayLiteral()
	case LBRACE:
		return p.objectLiteral()
	}
	return nil, unexpected(tok, "expression")
}

func (p *parser) call(callee *ast.Identifier, start Token) (ast.Expression, error) {
	p.advance() // '('
	var args []ast.Expression
	if !p.check(RPAREN) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN, "')' after arguments"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewFunctionCall(callee, args), start), nil
}

func (p *parser) arrayLiteral() (ast.Expression, error) {
	start := p.advance()
	var elements []ast.Expression
	if !p.check(RBRACKET) {
		for {
			el, err := p.expression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
	}
	if _, err := p.expect(RBRACKET, "']' to close list"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewArrayLiteral(elements), start), nil
}

func (p *parser) objectLiteral() (ast.Expression, error) {
	start := p.advance()
	var fields []*ast.ObjectField
	if !p.check(RBRACE) {
		for {
			keyTok, ok := p.match(IDENT, STRING)
			if !ok {
				return nil, unexpected(p.peek(), "field name")
			}
			key := keyTok.Lexeme
			if keyTok.Type == STRING {
				key = keyTok.Literal.(string)
			}
			if _, err := p.expect(COLON, "':' after field name"); err != nil {
				return nil, err
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			fields = append(fields, finish(p, ast.NewObjectField(key, value), keyTok))
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
	}
	if _, err := p.expect(RBRACE, "'}' to close record"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewObjectLiteral(fields), start), nil
}
