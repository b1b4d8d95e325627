package interpreter

import (
	"fmt"

	"bizdsl/interpreter-go/pkg/ast"
	"bizdsl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.Identifier:
		return env.Lookup(n.Name), nil
	case *ast.ArrayLiteral:
		values := make([]runtime.Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			val, err := i.evaluateExpression(el, env)
			if err != nil {
				return nil, err
			}
			values = append(values, val)
		}
		return runtime.NewList(values...), nil
	case *ast.ObjectLiteral:
		keys := make([]string, 0, len(n.Fields))
		values := make([]runtime.Value, 0, len(n.Fields))
		for _, field := range n.Fields {
			val, err := i.evaluateExpression(field.Value, env)
			if err != nil {
				return nil, err
			}
			keys = append(keys, field.Key)
			values = append(values, val)
		}
		return runtime.NewRecord(keys, values), nil
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, env)
	case *ast.MemberAccess:
		return i.evaluateMemberAccess(n, env)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	name := call.Callee.Name
	st := i.state(env)
	if native, ok := i.builtins[name]; ok {
		ctx := &runtime.NativeCallContext{
			Function: name,
			Logger:   i.logger,
		}
		if st != nil {
			ctx.Context = st.ctx
			ctx.ScriptID = st.scriptID
		}
		val, err := native.Impl(ctx, args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if val == nil {
			val = runtime.Null
		}
		return val, nil
	}
	if st != nil {
		if fn, ok := st.lookupFunction(name); ok {
			return i.invokeFunction(fn, args, call, env)
		}
	}
	return nil, &UndefinedFunctionError{Name: name, Pos: call.Span().Start}
}
