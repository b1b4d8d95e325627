package interpreter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"bizdsl/interpreter-go/pkg/runtime"
)

func TestCoreBuiltins(t *testing.T) {
	interp := New(Options{Builtins: CoreBuiltins()})
	cases := []struct {
		expr string
		want runtime.Value
	}{
		{`sum()`, num(0)},
		{`sum(1, 2, 3.5)`, num(6.5)},
		{`sum(1, "2", null, 3)`, num(4)},
		{`length("héllo")`, num(5)},
		{`length([1, 2, 3])`, num(3)},
		{`length(null)`, num(0)},
		{`length(42)`, num(0)},
		{`length()`, num(0)},
		{`print("x")`, runtime.Null},
	}
	for _, tc := range cases {
		expectValue(t, evalExpr(t, interp, tc.expr), tc.want)
	}

	err := evalExprErr(interp, `abs(-1)`)
	var undefined *UndefinedFunctionError
	if !errors.As(err, &undefined) {
		t.Fatalf("standard builtins should be absent from the core table, got %v", err)
	}
}

func TestStandardBuiltins(t *testing.T) {
	interp := New(Options{Builtins: CoreBuiltins().Merge(StandardBuiltins())})
	cases := []struct {
		expr string
		want runtime.Value
	}{
		{`abs(-2.5)`, num(2.5)},
		{`max(1, 5, 3)`, num(5)},
		{`min(4, -1)`, num(-1)},
		{`round(2.5)`, num(3)},
		{`round(-2.5)`, num(-2)},
		{`round(2.4)`, num(2)},
		{`substring("hello", 1, 3)`, text("el")},
		{`substring("hello", 2)`, text("llo")},
		{`toUpperCase("vip")`, text("VIP")},
		{`toLowerCase("VIP")`, text("vip")},
		{`keys({b: 1, a: 2})`, runtime.NewList(text("b"), text("a"))},
		{`keys(null)`, runtime.NewList()},
		{`log("hello")`, runtime.Null},
		{`logError("boom")`, runtime.Null},
	}
	for _, tc := range cases {
		expectValue(t, evalExpr(t, interp, tc.expr), tc.want)
	}

	for _, expr := range []string{`abs("x")`, `max()`, `toUpperCase(1)`, `keys([1])`} {
		var typeErr *TypeError
		if err := evalExprErr(interp, expr); !errors.As(err, &typeErr) {
			t.Fatalf("%s: expected TypeError, got %v", expr, err)
		}
	}
	var rangeErr *IndexOutOfRangeError
	if err := evalExprErr(interp, `substring("abc", 2, 9)`); !errors.As(err, &rangeErr) {
		t.Fatalf("expected IndexOutOfRangeError, got %v", err)
	}
}

func TestPrintWritesToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	interp := New(Options{Logger: logger})
	script, err := interp.Compile(context.Background(), "greet.dsl", `function greet(name) { print("hello " + name); }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := interp.CallFunction(context.Background(), script, "greet", []runtime.Value{text("bob")}); err != nil {
		t.Fatalf("call: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "msg=print") || !strings.Contains(out, `value="hello bob"`) || !strings.Contains(out, "script=greet.dsl") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestBuiltinsMergeAndWith(t *testing.T) {
	base := CoreBuiltins()
	custom := base.With("checkVipStatus", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		id, _ := args[0].(runtime.StringValue)
		return runtime.BoolValue{Val: strings.HasPrefix(id.Val, "VIP")}, nil
	})
	if _, ok := base["checkVipStatus"]; ok {
		t.Fatalf("With must not mutate the receiver")
	}
	interp := New(Options{Builtins: custom})
	expectValue(t, evalExpr(t, interp, `checkVipStatus("VIP123")`), runtime.BoolValue{Val: true})
	if got := strings.Join(custom.Names(), ","); got != "checkVipStatus,length,print,sum" {
		t.Fatalf("expected sorted builtin names, got %s", got)
	}
}

func TestDefaultTableLeavesStandardNamesToScripts(t *testing.T) {
	interp := New(Options{})
	if got := strings.Join(interp.Builtins().Names(), ","); got != "length,print,sum" {
		t.Fatalf("expected the core table by default, got %s", got)
	}
	script := compileSource(t, interp, `
function max(a, b) { return "script max"; }
function pick() { return max(1, 2); }
`)
	expectValue(t, call(t, interp, script, "pick"), text("script max"))
}
