package interpreter

import (
	"context"
	"sync/atomic"
	"testing"

	"bizdsl/interpreter-go/pkg/ast"
	"bizdsl/interpreter-go/pkg/runtime"
)

func num(v float64) runtime.NumberValue { return runtime.NumberValue{Val: v} }
func text(v string) runtime.StringValue  { return runtime.StringValue{Val: v} }

func compileSource(t *testing.T, interp *Interpreter, source string) *runtime.Script {
	t.Helper()
	script, err := interp.Compile(context.Background(), "test.dsl", source)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return script
}

func compileAST(t *testing.T, interp *Interpreter, prog *ast.Program) *runtime.Script {
	t.Helper()
	script, err := interp.CompileProgram(context.Background(), "test.dsl", "", prog)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return script
}

func call(t *testing.T, interp *Interpreter, script *runtime.Script, name string, args ...runtime.Value) runtime.Value {
	t.Helper()
	val, err := interp.CallFunction(context.Background(), script, name, args)
	if err != nil {
		t.Fatalf("call %s failed: %v", name, err)
	}
	return val
}

// evalExpr wraps an expression in a function and returns its value.
func evalExpr(t *testing.T, interp *Interpreter, expr string) runtime.Value {
	t.Helper()
	script := compileSource(t, interp, "function main() { return "+expr+"; }")
	return call(t, interp, script, "main")
}

func evalExprErr(interp *Interpreter, expr string) error {
	script, err := interp.Compile(context.Background(), "test.dsl", "function main() { return "+expr+"; }")
	if err != nil {
		return err
	}
	_, err = interp.CallFunction(context.Background(), script, "main", nil)
	return err
}

func expectValue(t *testing.T, got runtime.Value, want runtime.Value) {
	t.Helper()
	if !runtime.Equal(got, want) {
		t.Fatalf("expected %s, got %s", runtime.Inspect(want), runtime.Inspect(got))
	}
}

// countingBuiltins replaces print with a counter so tests can observe calls.
func countingBuiltins(counter *atomic.Int64) Builtins {
	return CoreBuiltins().With("print", func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
		counter.Add(1)
		return runtime.Null, nil
	})
}
