package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota

	// Punctuation
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	COLON
	SEMICOLON
	PERIOD

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	ASSIGN
	EQ
	NEQ
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	AND
	OR

	// Literals & identifiers
	IDENT
	NUMBER
	STRING
	BOOLEAN
	NULL

	// Keywords
	FUNCTION
	VAR
	IF
	ELSE
	FOR
	IN
	RETURN
)

var tokenNames = map[TokenType]string{
	EOF:        "end of input",
	LPAREN:     "'('",
	RPAREN:     "')'",
	LBRACKET:   "'['",
	RBRACKET:   "']'",
	LBRACE:     "'{'",
	RBRACE:     "'}'",
	COMMA:      "','",
	COLON:      "':'",
	SEMICOLON:  "';'",
	PERIOD:     "'.'",
	PLUS:       "'+'",
	MINUS:      "'-'",
	STAR:       "'*'",
	SLASH:      "'/'",
	PERCENT:    "'%'",
	ASSIGN:     "'='",
	EQ:         "'=='",
	NEQ:        "'!='",
	LESS:       "'<'",
	LESS_EQ:    "'<='",
	GREATER:    "'>'",
	GREATER_EQ: "'>='",
	AND:        "'&&'",
	OR:         "'||'",
	IDENT:      "identifier",
	NUMBER:     "number",
	STRING:     "string",
	BOOLEAN:    "boolean",
	NULL:       "'null'",
	FUNCTION:   "'function'",
	VAR:        "'var'",
	IF:         "'if'",
	ELSE:       "'else'",
	FOR:        "'for'",
	IN:         "'in'",
	RETURN:     "'return'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexical token with an optional decoded literal.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
	Col     int

	EndLine int
	EndCol  int
}

func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return strconv.Quote(t.Lexeme)
	default:
		return fmt.Sprintf("'%s'", t.Lexeme)
	}
}

var keywords = map[string]TokenType{
	"function": FUNCTION,
	"var":      VAR,
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"true":     BOOLEAN,
	"false":    BOOLEAN,
	"null":     NULL,
}

// Lexer scans DSL source into tokens. Lines and columns are 1-based.
type Lexer struct {
	src  string
	cur  int
	line int
	col  int

	startLine int
	startCol  int
	start     int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize scans the whole input. The returned slice always ends with EOF.
func Tokenize(src string) ([]Token, error) {
	lx := NewLexer(src)
	var out []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Type == EOF {
			return out, nil
		}
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekN(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else if utf8.RuneStart(ch) {
		l.col++
	}
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) errorf(line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Message: "parser: syntax error: " + fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
}

func (l *Lexer) emit(tt TokenType, lit any) Token {
	return Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.startLine,
		Col:     l.startCol,
		EndLine: l.line,
		EndCol:  l.col,
	}
}

func (l *Lexer) skipTrivia() error {
	for !l.isAtEnd() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekN(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			closed := false
			for !l.isAtEnd() {
				if l.peek() == '*' && l.peekN(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				err := l.errorf(line, col, "unterminated block comment")
				err.Incomplete = true
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	l.start = l.cur
	l.startLine, l.startCol = l.line, l.col
	if l.isAtEnd() {
		return l.emit(EOF, nil), nil
	}

	ch := l.advance()
	switch ch {
	case '(':
		return l.emit(LPAREN, nil), nil
	case ')':
		return l.emit(RPAREN, nil), nil
	case '[':
		return l.emit(LBRACKET, nil), nil
	case ']':
		return l.emit(RBRACKET, nil), nil
	case '{':
		return l.emit(LBRACE, nil), nil
	case '}':
		return l.emit(RBRACE, nil), nil
	case ',':
		return l.emit(COMMA, nil), nil
	case ':':
		return l.emit(COLON, nil), nil
	case ';':
		return l.emit(SEMICOLON, nil), nil
	case '+':
		return l.emit(PLUS, nil), nil
	case '-':
		return l.emit(MINUS, nil), nil
	case '*':
		return l.emit(STAR, nil), nil
	case '/':
		return l.emit(SLASH, nil), nil
	case '%':
		return l.emit(PERCENT, nil), nil
	case '=':
		if l.match('=') {
			return l.emit(EQ, nil), nil
		}
		return l.emit(ASSIGN, nil), nil
	case '!':
		if l.match('=') {
			return l.emit(NEQ, nil), nil
		}
		return Token{}, l.errorf(l.startLine, l.startCol, "unexpected character '!'")
	case '<':
		if l.match('=') {
			return l.emit(LESS_EQ, nil), nil
		}
		return l.emit(LESS, nil), nil
	case '>':
		if l.match('=') {
			return l.emit(GREATER_EQ, nil), nil
		}
		return l.emit(GREATER, nil), nil
	case '&':
		if l.match('&') {
			return l.emit(AND, nil), nil
		}
		return Token{}, l.errorf(l.startLine, l.startCol, "unexpected character '&' (did you mean '&&'?)")
	case '|':
		if l.match('|') {
			return l.emit(OR, nil), nil
		}
		return Token{}, l.errorf(l.startLine, l.startCol, "unexpected character '|' (did you mean '||'?)")
	case '"':
		return l.scanString()
	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber()
		}
		return l.emit(PERIOD, nil), nil
	}

	switch {
	case isDigit(ch):
		return l.scanNumber()
	case isAlpha(ch):
		return l.scanIdentifier(), nil
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.start:])
	return Token{}, l.errorf(l.startLine, l.startCol, "unexpected character %q", r)
}

func (l *Lexer) scanString() (Token, error) {
	var b strings.Builder
	for {
		if l.isAtEnd() {
			return Token{}, l.errorf(l.startLine, l.startCol, "unterminated string literal")
		}
		ch := l.advance()
		switch ch {
		case '"':
			tok := l.emit(STRING, b.String())
			tok.Lexeme = b.String()
			return tok, nil
		case '\n':
			return Token{}, l.errorf(l.startLine, l.startCol, "unterminated string literal")
		case '\\':
			if l.isAtEnd() {
				return Token{}, l.errorf(l.startLine, l.startCol, "unterminated string literal")
			}
			escLine, escCol := l.line, l.col
			switch esc := l.advance(); esc {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return Token{}, l.errorf(escLine, escCol-1, "invalid escape sequence \\%c", esc)
			}
		default:
			b.WriteByte(ch)
		}
	}
}

// scanNumber accepts 12, 1.5, .5 and exponents like 1e-3. The first byte has
// already been consumed.
func (l *Lexer) scanNumber() (Token, error) {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if e := l.peek(); e == 'e' || e == 'E' {
		next := l.peekN(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekN(2))) {
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	text := l.src[l.start:l.cur]
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, l.errorf(l.startLine, l.startCol, "invalid number literal %q", text)
	}
	if isAlpha(l.peek()) {
		return Token{}, l.errorf(l.startLine, l.startCol, "invalid number literal %q", text+string(l.peek()))
	}
	return l.emit(NUMBER, val), nil
}

func (l *Lexer) scanIdentifier() Token {
	for isAlphaNum(l.peek()) {
		l.advance()
	}
	text := l.src[l.start:l.cur]
	if tt, ok := keywords[text]; ok {
		switch tt {
		case BOOLEAN:
			return l.emit(BOOLEAN, text == "true")
		default:
			return l.emit(tt, nil)
		}
	}
	return l.emit(IDENT, text)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}
