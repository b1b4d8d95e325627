package parser

import (
	"bizdsl/interpreter-go/pkg/ast"
)

// ParseProgram parses DSL source text into a program AST. Failures are
// reported as *SyntaxError. No semantic checks happen here: unknown names,
// arity mismatches and type errors surface during evaluation.
func ParseProgram(source string) (*ast.Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.program()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) previous() Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) match(types ...TokenType) (Token, bool) {
	for _, tt := range types {
		if p.check(tt) {
			return p.advance(), true
		}
	}
	return Token{}, false
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, unexpected(p.peek(), what)
}

// finish stamps node with a span from start to the last consumed token.
func finish[T ast.Node](p *parser, node T, start Token) T {
	end := p.previous()
	ast.SetSpan(node, ast.Span{
		Start: ast.Position{Line: start.Line, Column: start.Col},
		End:   ast.Position{Line: end.EndLine, Column: end.EndCol},
	})
	return node
}

func (p *parser) program() (*ast.Program, error) {
	start := p.peek()
	var body []ast.Statement
	for !p.check(EOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return finish(p, ast.NewProgram(body), start), nil
}

func (p *parser) statement() (ast.Statement, error) {
	switch p.peek().Type {
	case FUNCTION:
		return p.functionDecl()
	case VAR:
		return p.variableDecl()
	case IF:
		return p.ifStatement()
	case FOR:
		return p.forStatement()
	case RETURN:
		return p.returnStatement()
	case IDENT:
		if p.peekAt(1).Type == ASSIGN {
			return p.assignment()
		}
	}
	return p.expressionStatement()
}

func (p *parser) identifier(what string) (*ast.Identifier, error) {
	tok, err := p.expect(IDENT, what)
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewIdentifier(tok.Lexeme), tok), nil
}

func (p *parser) functionDecl() (*ast.FunctionDecl, error) {
	start := p.advance()
	name, err := p.identifier("function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "'(' after function name"); err != nil {
		return nil, err
	}
	var params []*ast.Identifier
	if !p.check(RPAREN) {
		for {
			param, err := p.identifier("parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN, "')' after parameters"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewFunctionDecl(name, params, body), start), nil
}

func (p *parser) variableDecl() (*ast.VariableDecl, error) {
	start := p.advance()
	name, err := p.identifier("variable name")
	if err != nil {
		return nil, err
	}
	var init ast.Expression
	if _, ok := p.match(ASSIGN); ok {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON, "';' after variable declaration"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewVariableDecl(name, init), start), nil
}

func (p *parser) assignment() (*ast.Assignment, error) {
	start := p.peek()
	target, err := p.identifier("assignment target")
	if err != nil {
		return nil, err
	}
	p.advance() // '='
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "';' after assignment"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewAssignment(target, value), start), nil
}

func (p *parser) ifStatement() (*ast.IfStatement, error) {
	start := p.advance()
	if _, err := p.expect(LPAREN, "'(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "')' after condition"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	if _, ok := p.match(ELSE); !ok {
		return finish(p, ast.NewIfStatement(cond, then, nil), start), nil
	}
	if p.check(IF) {
		nested, err := p.ifStatement()
		if err != nil {
			return nil, err
		}
		return finish(p, ast.NewIfStatement(cond, then, nested), start), nil
	}
	alt, err := p.block()
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewIfStatement(cond, then, alt), start), nil
}

func (p *parser) forStatement() (*ast.ForStatement, error) {
	start := p.advance()
	if _, err := p.expect(LPAREN, "'(' after 'for'"); err != nil {
		return nil, err
	}
	variable, err := p.identifier("loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN, "'in' after loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "')' after loop iterable"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewForStatement(variable, iterable, body), start), nil
}

func (p *parser) returnStatement() (*ast.ReturnStatement, error) {
	start := p.advance()
	var arg ast.Expression
	if !p.check(SEMICOLON) {
		var err error
		if arg, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON, "';' after return"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewReturnStatement(arg), start), nil
}

func (p *parser) expressionStatement() (*ast.ExpressionStatement, error) {
	start := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "';' after expression"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewExpressionStatement(expr), start), nil
}

func (p *parser) block() (*ast.Block, error) {
	start, err := p.expect(LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	var body []ast.Statement
	for !p.check(RBRACE) {
		if p.check(EOF) {
			return nil, unexpected(p.peek(), "'}' to close block")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance()
	return finish(p, ast.NewBlock(body), start), nil
}
