package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenizeOperators(t *testing.T) {
	tokens, err := Tokenize("a<=b>=c==d!=e&&f||g<h>i=j")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	var got []TokenType
	for _, tok := range tokens {
		got = append(got, tok.Type)
	}
	want := []TokenType{
		IDENT, LESS_EQ, IDENT, GREATER_EQ, IDENT, EQ, IDENT, NEQ, IDENT,
		AND, IDENT, OR, IDENT, LESS, IDENT, GREATER, IDENT, ASSIGN, IDENT, EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeLiterals(t *testing.T) {
	cases := []struct {
		src  string
		typ  TokenType
		want any
	}{
		{"42", NUMBER, 42.0},
		{"3.25", NUMBER, 3.25},
		{".5", NUMBER, 0.5},
		{"1e3", NUMBER, 1000.0},
		{"2.5E-1", NUMBER, 0.25},
		{`"tab\there"`, STRING, "tab\there"},
		{`"quote \" and \\ slash"`, STRING, `quote " and \ slash`},
		{`"ünïcode"`, STRING, "ünïcode"},
		{"true", BOOLEAN, true},
		{"false", BOOLEAN, false},
	}
	for _, tc := range cases {
		tokens, err := Tokenize(tc.src)
		if err != nil {
			t.Fatalf("%s: tokenize: %v", tc.src, err)
		}
		if tokens[0].Type != tc.typ {
			t.Fatalf("%s: expected %s, got %s", tc.src, tc.typ, tokens[0].Type)
		}
		if tokens[0].Literal != tc.want {
			t.Fatalf("%s: expected literal %#v, got %#v", tc.src, tc.want, tokens[0].Literal)
		}
	}
}

func TestTokenizeKeywordsAndPositions(t *testing.T) {
	tokens, err := Tokenize("function f(x) {\n  return null;\n}")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	ret := tokens[6]
	if ret.Type != RETURN || ret.Line != 2 || ret.Col != 3 {
		t.Fatalf("expected 'return' at 2:3, got %s at %d:%d", ret.Type, ret.Line, ret.Col)
	}
	if tokens[7].Type != NULL {
		t.Fatalf("expected null keyword, got %s", tokens[7].Type)
	}
}

func TestTokenizeRejectsBadNumber(t *testing.T) {
	if _, err := Tokenize("12abc"); err == nil {
		t.Fatalf("expected error for identifier glued to number")
	}
}
