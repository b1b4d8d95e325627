package interpreter

import (
	"fmt"

	"bizdsl/interpreter-go/pkg/ast"
	"bizdsl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	if st := i.state(env); st != nil {
		if err := st.ctx.Err(); err != nil {
			return nil, err
		}
	}
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		return i.evaluateExpression(n.Expression, env)
	case *ast.VariableDecl:
		return i.evaluateVariableDecl(n, env)
	case *ast.Assignment:
		return i.evaluateAssignment(n, env)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.ForStatement:
		return i.evaluateForStatement(n, env)
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env)
	case *ast.FunctionDecl:
		return i.evaluateFunctionDecl(n, env)
	default:
		return nil, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

// evaluateStatements runs statements in env without pushing a frame and
// returns the value of the last one.
func (i *Interpreter) evaluateStatements(stmts []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.Null
	for _, stmt := range stmts {
		val, err := i.evaluateStatement(stmt, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (i *Interpreter) evaluateBlock(block *ast.Block, env *runtime.Environment) (runtime.Value, error) {
	return i.evaluateStatements(block.Body, env.Extend())
}

func (i *Interpreter) evaluateVariableDecl(decl *ast.VariableDecl, env *runtime.Environment) (runtime.Value, error) {
	var val runtime.Value = runtime.Null
	if decl.Initializer != nil {
		var err error
		if val, err = i.evaluateExpression(decl.Initializer, env); err != nil {
			return nil, err
		}
	}
	env.Define(decl.ID.Name, val)
	return runtime.Null, nil
}

func (i *Interpreter) evaluateAssignment(assign *ast.Assignment, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(assign.Value, env)
	if err != nil {
		return nil, err
	}
	if err := env.Assign(assign.Target.Name, val); err != nil {
		return nil, err
	}
	return runtime.Null, nil
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, env *runtime.Environment) (runtime.Value, error) {
	cond, err := i.evaluateExpression(stmt.Condition, env)
	if err != nil {
		return nil, err
	}
	if runtime.ToBoolean(cond) {
		return i.evaluateBlock(stmt.Then, env)
	}
	switch alt := stmt.Else.(type) {
	case nil:
		return runtime.Null, nil
	case *ast.Block:
		return i.evaluateBlock(alt, env)
	case *ast.IfStatement:
		return i.evaluateIfStatement(alt, env)
	default:
		return nil, fmt.Errorf("unsupported else branch: %s", alt.NodeType())
	}
}

func (i *Interpreter) evaluateForStatement(loop *ast.ForStatement, env *runtime.Environment) (runtime.Value, error) {
	iterable, err := i.evaluateExpression(loop.Iterable, env)
	if err != nil {
		return nil, err
	}
	var items []runtime.Value
	switch it := iterable.(type) {
	case runtime.NullValue:
	case *runtime.ListValue:
		items = it.Elements
	case *runtime.RecordValue:
		keys := it.Keys()
		items = make([]runtime.Value, 0, len(keys))
		for _, key := range keys {
			items = append(items, runtime.StringValue{Val: key})
		}
	default:
		return nil, typeErrorf(loop.Iterable, "cannot iterate over %s", iterable.Kind())
	}
	for _, item := range items {
		scope := env.Extend()
		scope.Define(loop.Variable.Name, item)
		if _, err := i.evaluateStatements(loop.Body.Body, scope); err != nil {
			return nil, err
		}
	}
	return runtime.Null, nil
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.Null
	if stmt.Argument != nil {
		val, err := i.evaluateExpression(stmt.Argument, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return nil, returnSignal{value: result}
}

// evaluateFunctionDecl registers a declaration; a later declaration of the
// same name replaces an earlier one.
func (i *Interpreter) evaluateFunctionDecl(decl *ast.FunctionDecl, env *runtime.Environment) (runtime.Value, error) {
	st := i.state(env)
	if st == nil {
		return nil, fmt.Errorf("function %s declared outside an evaluation", decl.Name())
	}
	st.declare(decl)
	return runtime.Null, nil
}
