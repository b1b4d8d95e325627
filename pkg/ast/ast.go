package ast

type NodeType string

const (
	NodeProgram             NodeType = "Program"
	NodeIdentifier          NodeType = "Identifier"
	NodeNumberLiteral       NodeType = "NumberLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeNullLiteral         NodeType = "NullLiteral"
	NodeArrayLiteral        NodeType = "ArrayLiteral"
	NodeObjectLiteral       NodeType = "ObjectLiteral"
	NodeObjectField         NodeType = "ObjectField"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeFunctionCall        NodeType = "FunctionCall"
	NodeMemberAccess        NodeType = "MemberAccess"
	NodeIndexExpression     NodeType = "IndexExpression"
	NodeBlock               NodeType = "Block"
	NodeFunctionDecl        NodeType = "FunctionDecl"
	NodeVariableDecl        NodeType = "VariableDecl"
	NodeAssignment          NodeType = "Assignment"
	NodeIfStatement         NodeType = "IfStatement"
	NodeForStatement        NodeType = "ForStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeExpressionStatement NodeType = "ExpressionStatement"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// ElseBranch is either a *Block or a nested *IfStatement.
type ElseBranch interface {
	Node
	elseBranchNode()
}

type elseBranchMarker struct{}

func (elseBranchMarker) elseBranchNode() {}

// Program

type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// ObjectField is a single `key: value` pair inside an object literal. Keys
// written as identifiers and as string literals are both stored as plain text.
type ObjectField struct {
	nodeImpl

	Key   string     `json:"key"`
	Value Expression `json:"value"`
}

func NewObjectField(key string, value Expression) *ObjectField {
	return &ObjectField{nodeImpl: newNodeImpl(NodeObjectField), Key: key, Value: value}
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker

	Fields []*ObjectField `json:"fields"`
}

func NewObjectLiteral(fields []*ObjectField) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Fields: fields}
}

// Operators and access

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// FunctionCall names its callee directly; the grammar has no first-class
// function values.
type FunctionCall struct {
	nodeImpl
	expressionMarker

	Callee    *Identifier  `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee *Identifier, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

type MemberAccess struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Member *Identifier `json:"member"`
}

func NewMemberAccess(object Expression, member *Identifier) *MemberAccess {
	return &MemberAccess{nodeImpl: newNodeImpl(NodeMemberAccess), Object: object, Member: member}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

// Statements

type Block struct {
	nodeImpl
	elseBranchMarker

	Body []Statement `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: body}
}

type FunctionDecl struct {
	nodeImpl
	statementMarker

	ID     *Identifier   `json:"id"`
	Params []*Identifier `json:"params"`
	Body   *Block        `json:"body"`
}

func NewFunctionDecl(id *Identifier, params []*Identifier, body *Block) *FunctionDecl {
	return &FunctionDecl{nodeImpl: newNodeImpl(NodeFunctionDecl), ID: id, Params: params, Body: body}
}

// Name returns the declared function name, or "" for a malformed node.
func (f *FunctionDecl) Name() string {
	if f == nil || f.ID == nil {
		return ""
	}
	return f.ID.Name
}

// ParamNames lists the parameter names in declaration order.
func (f *FunctionDecl) ParamNames() []string {
	names := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		if p != nil {
			names = append(names, p.Name)
		}
	}
	return names
}

type VariableDecl struct {
	nodeImpl
	statementMarker

	ID          *Identifier `json:"id"`
	Initializer Expression  `json:"initializer,omitempty"`
}

func NewVariableDecl(id *Identifier, init Expression) *VariableDecl {
	return &VariableDecl{nodeImpl: newNodeImpl(NodeVariableDecl), ID: id, Initializer: init}
}

type Assignment struct {
	nodeImpl
	statementMarker

	Target *Identifier `json:"target"`
	Value  Expression  `json:"value"`
}

func NewAssignment(target *Identifier, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

type IfStatement struct {
	nodeImpl
	statementMarker
	elseBranchMarker

	Condition Expression `json:"condition"`
	Then      *Block     `json:"then"`
	Else      ElseBranch `json:"else,omitempty"`
}

func NewIfStatement(cond Expression, then *Block, elseBranch ElseBranch) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then, Else: elseBranch}
}

type ForStatement struct {
	nodeImpl
	statementMarker

	Variable *Identifier `json:"variable"`
	Iterable Expression  `json:"iterable"`
	Body     *Block      `json:"body"`
}

func NewForStatement(variable *Identifier, iterable Expression, body *Block) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Variable: variable, Iterable: iterable, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(arg Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: arg}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}
