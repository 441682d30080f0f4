package main

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeProgram                  NodeKind = "Program"
	NodeIdentifier               NodeKind = "Identifier"
	NodeNumberLiteral            NodeKind = "NumberLiteral"
	NodeStringLiteral            NodeKind = "StringLiteral"
	NodeBooleanLiteral           NodeKind = "BooleanLiteral"
	NodeNilLiteral               NodeKind = "NilLiteral"
	NodeAssignmentExpression     NodeKind = "AssignmentExpression"
	NodeBinaryExpression         NodeKind = "BinaryExpression"
	NodeLogicalExpression        NodeKind = "LogicalExpression"
	NodeUnaryExpression          NodeKind = "UnaryExpression"
	NodeCallExpression           NodeKind = "CallExpression"
	NodeIfStatement              NodeKind = "IfStatement"
	NodeWhileStatement           NodeKind = "WhileStatement"
	NodeRepeatStatement          NodeKind = "RepeatStatement"
	NodeForStatement             NodeKind = "ForStatement"
	NodeFunctionDeclaration      NodeKind = "FunctionDeclaration"
	NodeLocalFunctionDeclaration NodeKind = "LocalFunctionDeclaration"
	NodeLocalVariableDeclaration NodeKind = "LocalVariableDeclaration"
	NodeReturnStatement          NodeKind = "ReturnStatement"
	NodeBreakStatement           NodeKind = "BreakStatement"
	NodeBlockStatement           NodeKind = "BlockStatement"
	NodeTableExpression          NodeKind = "TableExpression"
	NodeTableKey                 NodeKind = "TableKey"
	NodeTableValue               NodeKind = "TableValue"
	NodeTableAccessExpression    NodeKind = "TableAccessExpression"
	NodeTableCallExpression      NodeKind = "TableCallExpression"
)

// ASTNode represents a node in the Abstract Syntax Tree. Kind decides
// which of the fields below are meaningful; the rest stay zero.
type ASTNode struct {
	Kind NodeKind
	Pos  Position

	// NodeIdentifier:
	Name string
	// NodeNumberLiteral:
	Number float64
	// NodeStringLiteral:
	String string
	// NodeBooleanLiteral:
	Boolean bool

	// NodeAssignmentExpression, NodeBinaryExpression,
	// NodeLogicalExpression, NodeUnaryExpression:
	Op    string
	Left  *ASTNode
	Right *ASTNode

	// NodeUnaryExpression, NodeReturnStatement (nil for a bare return):
	Argument *ASTNode

	// NodeIfStatement, NodeWhileStatement, NodeRepeatStatement,
	// NodeForStatement, function declarations:
	Condition *ASTNode
	Body      *ASTNode
	Alternate *ASTNode

	// NodeForStatement (Step is nil unless built programmatically):
	Variable *ASTNode
	Start    *ASTNode
	End      *ASTNode
	Step     *ASTNode

	// Function and local declarations:
	Identifier *ASTNode
	Parameters []*ASTNode
	// NodeLocalVariableDeclaration (nil without initializer),
	// NodeTableKey, NodeTableValue:
	Value *ASTNode

	// NodeTableAccessExpression (Base, Key), NodeTableCallExpression
	// (Base), NodeTableKey (Key):
	Base *ASTNode
	Key  *ASTNode

	// NodeCallExpression (Callee), NodeTableCallExpression:
	Callee    *ASTNode
	Arguments []*ASTNode

	// NodeProgram, NodeBlockStatement:
	Statements []*ASTNode
	// NodeTableExpression:
	Entries []*ASTNode
}

// Children returns the node's non-nil child nodes in field order.
func (n *ASTNode) Children() []*ASTNode {
	var children []*ASTNode
	add := func(nodes ...*ASTNode) {
		for _, child := range nodes {
			if child != nil {
				children = append(children, child)
			}
		}
	}

	switch n.Kind {
	case NodeProgram, NodeBlockStatement:
		add(n.Statements...)
	case NodeAssignmentExpression, NodeBinaryExpression, NodeLogicalExpression:
		add(n.Left, n.Right)
	case NodeUnaryExpression, NodeReturnStatement:
		add(n.Argument)
	case NodeCallExpression:
		add(n.Callee)
		add(n.Arguments...)
	case NodeIfStatement:
		add(n.Condition, n.Body, n.Alternate)
	case NodeWhileStatement:
		add(n.Condition, n.Body)
	case NodeRepeatStatement:
		add(n.Body, n.Condition)
	case NodeForStatement:
		add(n.Variable, n.Start, n.End, n.Step, n.Body)
	case NodeFunctionDeclaration, NodeLocalFunctionDeclaration:
		add(n.Identifier)
		add(n.Parameters...)
		add(n.Body)
	case NodeLocalVariableDeclaration:
		add(n.Identifier, n.Value)
	case NodeTableExpression:
		add(n.Entries...)
	case NodeTableKey:
		add(n.Key, n.Value)
	case NodeTableValue:
		add(n.Value)
	case NodeTableAccessExpression:
		add(n.Base, n.Key)
	case NodeTableCallExpression:
		add(n.Base)
		add(n.Arguments...)
	}
	return children
}

// Walk visits node and its descendants depth-first, parents first.
// Children are skipped when visit returns false.
func Walk(node *ASTNode, visit func(*ASTNode) bool) {
	if node == nil || !visit(node) {
		return
	}
	for _, child := range node.Children() {
		Walk(child, visit)
	}
}
