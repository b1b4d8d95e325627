package interpreter

import (
	"math"

	"bizdsl/interpreter-go/pkg/ast"
	"bizdsl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateMemberAccess(expr *ast.MemberAccess, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	rec, ok := object.(*runtime.RecordValue)
	if !ok {
		return nil, typeErrorf(expr, "cannot read field '%s' of %s", expr.Member.Name, object.Kind())
	}
	if val, found := rec.Get(expr.Member.Name); found {
		return val, nil
	}
	return runtime.Null, nil
}

func (i *Interpreter) evaluateIndexExpression(expr *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	index, err := i.evaluateExpression(expr.Index, env)
	if err != nil {
		return nil, err
	}
	switch obj := object.(type) {
	case *runtime.ListValue:
		num, ok := index.(runtime.NumberValue)
		if !ok {
			return nil, typeErrorf(expr.Index, "list index must be a number, got %s", index.Kind())
		}
		idx := math.Trunc(num.Val)
		if math.IsNaN(idx) || idx < 0 || idx >= float64(obj.Len()) {
			return nil, &IndexOutOfRangeError{Index: num.Val, Length: obj.Len(), Pos: expr.Span().Start}
		}
		return obj.Elements[int(idx)], nil
	case *runtime.RecordValue:
		if val, found := obj.Get(runtime.ToText(index)); found {
			return val, nil
		}
		return runtime.Null, nil
	default:
		return nil, typeErrorf(expr, "cannot index into %s", object.Kind())
	}
}
