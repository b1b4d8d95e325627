package interpreter

import (
	"math"

	"bizdsl/interpreter-go/pkg/ast"
	"bizdsl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	switch expr.Operator {
	case "&&", "||":
		return i.evaluateLogical(expr, env)
	}
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(expr, left, right)
}

// evaluateLogical short-circuits: the right operand is only evaluated when
// the left one does not settle the result.
func (i *Interpreter) evaluateLogical(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	lv := runtime.ToBoolean(left)
	if expr.Operator == "&&" && !lv {
		return runtime.BoolValue{Val: false}, nil
	}
	if expr.Operator == "||" && lv {
		return runtime.BoolValue{Val: true}, nil
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return runtime.BoolValue{Val: runtime.ToBoolean(right)}, nil
}

func applyBinary(expr *ast.BinaryExpression, left, right runtime.Value) (runtime.Value, error) {
	op := expr.Operator
	switch op {
	case "==":
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case "<", ">", "<=", ">=":
		result, ok := runtime.Compare(op, left, right)
		if !ok {
			return nil, typeErrorf(expr, "cannot compare %s %s %s", left.Kind(), op, right.Kind())
		}
		return runtime.BoolValue{Val: result}, nil
	case "+":
		_, ls := left.(runtime.StringValue)
		_, rs := right.(runtime.StringValue)
		if ls || rs {
			return runtime.StringValue{Val: runtime.ToText(left) + runtime.ToText(right)}, nil
		}
	}

	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return nil, typeErrorf(expr, "unsupported operand types for %s: %s and %s", op, left.Kind(), right.Kind())
	}
	switch op {
	case "+":
		return runtime.NumberValue{Val: l.Val + r.Val}, nil
	case "-":
		return runtime.NumberValue{Val: l.Val - r.Val}, nil
	case "*":
		return runtime.NumberValue{Val: l.Val * r.Val}, nil
	case "/":
		return runtime.NumberValue{Val: l.Val / r.Val}, nil
	case "%":
		return runtime.NumberValue{Val: math.Mod(l.Val, r.Val)}, nil
	default:
		return nil, typeErrorf(expr, "unknown operator %s", op)
	}
}
