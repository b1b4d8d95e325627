package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Field(key string, value Expression) *ObjectField {
	return NewObjectField(key, value)
}

func Obj(fields ...*ObjectField) *ObjectLiteral {
	return NewObjectLiteral(fields)
}

// Expression helpers.

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

func Member(object Expression, member string) *MemberAccess {
	return NewMemberAccess(object, ID(member))
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

// Statement helpers.

func Prog(body ...Statement) *Program {
	return NewProgram(body)
}

func Blk(body ...Statement) *Block {
	return NewBlock(body)
}

func Fn(name string, params []string, body ...Statement) *FunctionDecl {
	ids := make([]*Identifier, 0, len(params))
	for _, p := range params {
		ids = append(ids, ID(p))
	}
	return NewFunctionDecl(ID(name), ids, NewBlock(body))
}

func Var(name string, init Expression) *VariableDecl {
	return NewVariableDecl(ID(name), init)
}

func Assign(name string, value Expression) *Assignment {
	return NewAssignment(ID(name), value)
}

func If(cond Expression, then *Block, elseBranch ElseBranch) *IfStatement {
	return NewIfStatement(cond, then, elseBranch)
}

func For(variable string, iterable Expression, body ...Statement) *ForStatement {
	return NewForStatement(ID(variable), iterable, NewBlock(body))
}

func Ret(arg Expression) *ReturnStatement {
	return NewReturnStatement(arg)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}
