package parser

import (
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"bizdsl/interpreter-go/pkg/ast"
)

// ignoreNodeInternals skips spans and marker embeds so trees built with the
// ast helpers compare equal to parsed ones.
var ignoreNodeInternals = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	if !ok {
		return false
	}
	r := []rune(sf.Name())
	return len(r) > 0 && !unicode.IsUpper(r[0])
}, cmp.Ignore())

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return prog
}

func assertProgram(t *testing.T, src string, want *ast.Program) {
	t.Helper()
	got := mustParse(t, src)
	if diff := cmp.Diff(want, got, ignoreNodeInternals, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDiscountScript(t *testing.T) {
	src := `
function calculateDiscount(productId, price, userId) {
    if (userId == "VIP123") {
        return price * 0.8;
    }
    return price;
}
`
	want := ast.Prog(
		ast.Fn("calculateDiscount", []string{"productId", "price", "userId"},
			ast.If(
				ast.Bin("==", ast.ID("userId"), ast.Str("VIP123")),
				ast.Blk(ast.Ret(ast.Bin("*", ast.ID("price"), ast.Num(0.8)))),
				nil,
			),
			ast.Ret(ast.ID("price")),
		),
	)
	assertProgram(t, src, want)
}

func TestParseStatements(t *testing.T) {
	src := `
var total = 0;
var empty;
total = total + 1;
for (x in [10, 20, 30]) { total = total + x; }
if (total > 10) { print("big"); } else if (total > 5) { print("mid"); } else { print("small"); }
return;
`
	want := ast.Prog(
		ast.Var("total", ast.Num(0)),
		ast.Var("empty", nil),
		ast.Assign("total", ast.Bin("+", ast.ID("total"), ast.Num(1))),
		ast.For("x", ast.Arr(ast.Num(10), ast.Num(20), ast.Num(30)),
			ast.Assign("total", ast.Bin("+", ast.ID("total"), ast.ID("x"))),
		),
		ast.If(
			ast.Bin(">", ast.ID("total"), ast.Num(10)),
			ast.Blk(ast.Expr(ast.Call("print", ast.Str("big")))),
			ast.If(
				ast.Bin(">", ast.ID("total"), ast.Num(5)),
				ast.Blk(ast.Expr(ast.Call("print", ast.Str("mid")))),
				ast.Blk(ast.Expr(ast.Call("print", ast.Str("small")))),
			),
		),
		ast.Ret(nil),
	)
	assertProgram(t, src, want)
}

func TestParsePrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want ast.Expression
	}{
		{"1 + 2 * 3;", ast.Bin("+", ast.Num(1), ast.Bin("*", ast.Num(2), ast.Num(3)))},
		{"(1 + 2) * 3;", ast.Bin("*", ast.Bin("+", ast.Num(1), ast.Num(2)), ast.Num(3))},
		{"10 - 4 - 3;", ast.Bin("-", ast.Bin("-", ast.Num(10), ast.Num(4)), ast.Num(3))},
		{"a || b && c;", ast.Bin("||", ast.ID("a"), ast.Bin("&&", ast.ID("b"), ast.ID("c")))},
		{"a == 1 && b != 2;", ast.Bin("&&",
			ast.Bin("==", ast.ID("a"), ast.Num(1)),
			ast.Bin("!=", ast.ID("b"), ast.Num(2)))},
		{"x < 1 == y >= 2;", ast.Bin("==",
			ast.Bin("<", ast.ID("x"), ast.Num(1)),
			ast.Bin(">=", ast.ID("y"), ast.Num(2)))},
		{"7 % 4 / 2;", ast.Bin("/", ast.Bin("%", ast.Num(7), ast.Num(4)), ast.Num(2))},
		{"a * -2;", ast.Bin("*", ast.ID("a"), ast.Num(-2))},
	}
	for _, tc := range cases {
		assertProgram(t, tc.src, ast.Prog(ast.Expr(tc.want)))
	}
}

func TestParsePostfixChains(t *testing.T) {
	src := `order.items[0].price;`
	want := ast.Member(
		ast.Index(ast.Member(ast.ID("order"), "items"), ast.Num(0)),
		"price",
	)
	assertProgram(t, src, ast.Prog(ast.Expr(want)))
}

func TestParseLiterals(t *testing.T) {
	src := `var r = {name: "a\"b", "two words": [1, true, null, -0.5], nested: {}};`
	want := ast.Prog(ast.Var("r", ast.Obj(
		ast.Field("name", ast.Str(`a"b`)),
		ast.Field("two words", ast.Arr(ast.Num(1), ast.Bool(true), ast.Null(), ast.Num(-0.5))),
		ast.Field("nested", ast.Obj()),
	)))
	assertProgram(t, src, want)
}

func TestParseSkipsComments(t *testing.T) {
	src := `
// leading comment
var a = 1; /* block
comment */ var b = 2;
`
	want := ast.Prog(ast.Var("a", ast.Num(1)), ast.Var("b", ast.Num(2)))
	assertProgram(t, src, want)
}

func TestParseRecordsSpans(t *testing.T) {
	prog := mustParse(t, "var a = 1;\n  total = a;")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}
	assign := prog.Body[1]
	start := assign.Span().Start
	if start.Line != 2 || start.Column != 3 {
		t.Fatalf("expected assignment at 2:3, got %d:%d", start.Line, start.Column)
	}
	end := assign.Span().End
	if end.Line != 2 || end.Column != 13 {
		t.Fatalf("expected assignment to end at 2:13, got %d:%d", end.Line, end.Column)
	}
}

func TestParseEmptyProgram(t *testing.T) {
	prog := mustParse(t, "  // nothing here\n")
	if len(prog.Body) != 0 {
		t.Fatalf("expected empty program, got %d statements", len(prog.Body))
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		line     int
		column   int
		contains string
	}{
		{"missing semicolon", "var a = 1\nvar b = 2;", 2, 1, "expected ';'"},
		{"unclosed block", "function f() {\n  return 1;\n", 3, 1, "'}'"},
		{"bad assignment target", "1 = 2;", 1, 3, "expected ';'"},
		{"unterminated string", `var s = "abc;`, 1, 9, "unterminated string"},
		{"stray bang", "var a = !b;", 1, 9, "unexpected character '!'"},
		{"single ampersand", "a & b;", 1, 3, "'&&'"},
		{"missing paren", "if a > 1 { }", 1, 4, "expected '(' after 'if'"},
		{"missing in", "for (x of xs) { }", 1, 8, "'in'"},
		{"bad object key", "var r = {1: 2};", 1, 10, "field name"},
		{"dangling operator", "var a = 1 + ;", 1, 13, "expected expression"},
		{"unterminated comment", "var a = 1; /* oops", 1, 12, "unterminated block comment"},
		{"lone minus", "var a = -b;", 1, 9, "expected expression"},
	}
	for _, tc := range cases {
		_, err := ParseProgram(tc.src)
		var syn *SyntaxError
		if !errors.As(err, &syn) {
			t.Fatalf("%s: expected SyntaxError, got %v", tc.name, err)
		}
		if syn.Line != tc.line || syn.Column != tc.column {
			t.Fatalf("%s: expected position %d:%d, got %d:%d (%s)", tc.name, tc.line, tc.column, syn.Line, syn.Column, syn.Message)
		}
		if !strings.Contains(syn.Error(), tc.contains) {
			t.Fatalf("%s: expected message containing %q, got %q", tc.name, tc.contains, syn.Error())
		}
		if !strings.HasPrefix(syn.Message, "parser: syntax error") {
			t.Fatalf("%s: unexpected message prefix %q", tc.name, syn.Message)
		}
	}
}

func TestIsIncomplete(t *testing.T) {
	cases := map[string]bool{
		"function f() {":             true,
		"var x = (1 +":               true,
		"/* still open":              true,
		"var x = ;":                  false,
		"var s = \"abc":              false,
		"function f() { return 1; }": false,
	}
	for src, want := range cases {
		_, err := ParseProgram(src)
		if got := IsIncomplete(err); got != want {
			t.Fatalf("IsIncomplete(%q) = %v, want %v (err %v)", src, got, want, err)
		}
	}
}
