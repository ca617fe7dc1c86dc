// Package ast defines the immutable syntax tree produced by the toy parser.
package ast

type NodeType string

const (
	NodeIdentifier         NodeType = "Identifier"
	NodeNumberLiteral      NodeType = "NumberLiteral"
	NodeTextLiteral        NodeType = "TextLiteral"
	NodeBooleanLiteral     NodeType = "BooleanLiteral"
	NodeBinaryExpression   NodeType = "BinaryExpression"
	NodeUnaryExpression    NodeType = "UnaryExpression"
	NodeFunctionCall       NodeType = "FunctionCall"
	NodePropertyAccess     NodeType = "PropertyAccess"
	NodeFunctionLiteral    NodeType = "FunctionLiteral"
	NodeClassLiteral       NodeType = "ClassLiteral"
	NodeSequence           NodeType = "Sequence"
	NodeEmpty              NodeType = "Empty"
	NodeAssignment         NodeType = "Assignment"
	NodePropertyAssignment NodeType = "PropertyAssignment"
	NodeExpressionStmt     NodeType = "ExpressionStatement"
	NodeIfStatement        NodeType = "IfStatement"
	NodeWhileLoop          NodeType = "WhileLoop"
	NodeSwitchStatement    NodeType = "SwitchStatement"
	NodeReturnStatement    NodeType = "ReturnStatement"
	NodeThrowStatement     NodeType = "ThrowStatement"
	NodeBreakStatement     NodeType = "BreakStatement"
	NodeTryStatement       NodeType = "TryStatement"
	NodeImportStatement    NodeType = "ImportStatement"
	NodeProgram            NodeType = "Program"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

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

// Identifier is a variable reference. Parsers intern identifiers, so two
// references to the same name in one program share a node.
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

type TextLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewTextLiteral(value string) *TextLiteral {
	return &TextLiteral{nodeImpl: newNodeImpl(NodeTextLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

// Operators

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

// UnaryExpression covers `not x` and `-x`.
type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

// Calls and members

type FunctionCall struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee Expression, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

type PropertyAccess struct {
	nodeImpl
	expressionMarker

	Target Expression `json:"target"`
	Name   string     `json:"name"`
}

func NewPropertyAccess(target Expression, name string) *PropertyAccess {
	return &PropertyAccess{nodeImpl: newNodeImpl(NodePropertyAccess), Target: target, Name: name}
}

// Function and class values

type FunctionLiteral struct {
	nodeImpl
	expressionMarker

	Name       string    `json:"name"`
	Parameters []string  `json:"parameters"`
	Body       Statement `json:"body"`
}

func NewFunctionLiteral(name string, params []string, body Statement) *FunctionLiteral {
	return &FunctionLiteral{nodeImpl: newNodeImpl(NodeFunctionLiteral), Name: name, Parameters: params, Body: body}
}

// ClassLiteral carries the method table and the statements of the class body
// that are not method definitions.
type ClassLiteral struct {
	nodeImpl
	expressionMarker

	Name       string             `json:"name"`
	Parents    []string           `json:"parents"`
	StaticBody Statement          `json:"staticBody"`
	Methods    []*FunctionLiteral `json:"methods"`
}

func NewClassLiteral(name string, parents []string, static Statement, methods []*FunctionLiteral) *ClassLiteral {
	return &ClassLiteral{nodeImpl: newNodeImpl(NodeClassLiteral), Name: name, Parents: parents, StaticBody: static, Methods: methods}
}

// Statements

// Sequence is one link of the right-leaning statement chain. Pos and Source
// locate First for stack traces; Lines counts the source lines First spans.
type Sequence struct {
	nodeImpl
	statementMarker

	First  Statement `json:"first"`
	Second Statement `json:"second"`
	Pos    Position  `json:"pos"`
	Source string    `json:"source"`
	Lines  int       `json:"lines"`
}

func NewSequence(first, second Statement, pos Position, source string, lines int) *Sequence {
	return &Sequence{nodeImpl: newNodeImpl(NodeSequence), First: first, Second: second, Pos: pos, Source: source, Lines: lines}
}

// EmptyStatement terminates every statement chain.
type EmptyStatement struct {
	nodeImpl
	statementMarker
}

// Empty is the shared chain terminator.
var Empty Statement = &EmptyStatement{nodeImpl: newNodeImpl(NodeEmpty)}

// IsEmpty reports whether stmt is the chain terminator.
func IsEmpty(stmt Statement) bool {
	_, ok := stmt.(*EmptyStatement)
	return ok || stmt == nil
}

type Assignment struct {
	nodeImpl
	statementMarker

	Target   *Identifier `json:"target"`
	Operator string      `json:"operator"`
	Value    Expression  `json:"value"`
	Nonlocal bool        `json:"nonlocal"`
}

func NewAssignment(target *Identifier, operator string, value Expression, nonlocal bool) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Operator: operator, Value: value, Nonlocal: nonlocal}
}

// CompoundOperator returns the binary operator of `op=` assignments ("" for `=`).
func (a *Assignment) CompoundOperator() string {
	return compoundOperator(a.Operator)
}

type PropertyAssignment struct {
	nodeImpl
	statementMarker

	Target   Expression `json:"target"`
	Name     string     `json:"name"`
	Operator string     `json:"operator"`
	Value    Expression `json:"value"`
}

func NewPropertyAssignment(target Expression, name, operator string, value Expression) *PropertyAssignment {
	return &PropertyAssignment{nodeImpl: newNodeImpl(NodePropertyAssignment), Target: target, Name: name, Operator: operator, Value: value}
}

func (a *PropertyAssignment) CompoundOperator() string {
	return compoundOperator(a.Operator)
}

func compoundOperator(op string) string {
	if op == "" || op == "=" {
		return ""
	}
	return op[:len(op)-1]
}

// ExpressionStatement evaluates a call for its side effects.
type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStmt), Expression: expr}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Then      Statement  `json:"then"`
	Else      Statement  `json:"else"`
}

func NewIfStatement(cond Expression, then, otherwise Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then, Else: otherwise}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhileLoop(cond Expression, body Statement) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: cond, Body: body}
}

type SwitchCase struct {
	Values []Expression `json:"values"`
	Body   Statement    `json:"body"`
}

type SwitchStatement struct {
	nodeImpl
	statementMarker

	Value   Expression   `json:"value"`
	Cases   []SwitchCase `json:"cases"`
	Default Statement    `json:"default"`
}

func NewSwitchStatement(value Expression, cases []SwitchCase, def Statement) *SwitchStatement {
	return &SwitchStatement{nodeImpl: newNodeImpl(NodeSwitchStatement), Value: value, Cases: cases, Default: def}
}

// ReturnStatement with a nil Argument returns no value.
type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(arg Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: arg}
}

type ThrowStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewThrowStatement(expr Expression) *ThrowStatement {
	return &ThrowStatement{nodeImpl: newNodeImpl(NodeThrowStatement), Expression: expr}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type TryStatement struct {
	nodeImpl
	statementMarker

	Body         Statement   `json:"body"`
	ExceptionVar *Identifier `json:"exceptionVar"`
	Catch        Statement   `json:"catch"`
}

func NewTryStatement(body Statement, exVar *Identifier, catch Statement) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Body: body, ExceptionVar: exVar, Catch: catch}
}

// ImportStatement binds a module namespace (Alias) or selected names of it.
type ImportStatement struct {
	nodeImpl
	statementMarker

	Path  string   `json:"path"`
	Alias string   `json:"alias,omitempty"`
	Names []string `json:"names,omitempty"`
}

func NewImportStatement(path, alias string, names []string) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Path: path, Alias: alias, Names: names}
}

// Program is a parsed source file.
type Program struct {
	nodeImpl

	File string    `json:"file"`
	Body Statement `json:"body"`
}

func NewProgram(file string, body Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), File: file, Body: body}
}
