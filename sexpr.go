package main

import (
	"sort"
	"strings"
)

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *ASTNode) string {
	if node == nil {
		return "nil"
	}
	switch node.Kind {
	case NodeProgram:
		return list("program", sexprs(node.Statements)...)
	case NodeIdentifier:
		return "(ident " + quote(node.Name) + ")"
	case NodeNumberLiteral:
		return "(number " + formatNumber(node.Number) + ")"
	case NodeStringLiteral:
		return "(string " + quote(node.String) + ")"
	case NodeBooleanLiteral:
		if node.Boolean {
			return "(boolean true)"
		}
		return "(boolean false)"
	case NodeNilLiteral:
		return "(nil)"
	case NodeAssignmentExpression:
		return list("assign", ToSExpr(node.Left), ToSExpr(node.Right))
	case NodeBinaryExpression:
		return list("binary", quote(node.Op), ToSExpr(node.Left), ToSExpr(node.Right))
	case NodeLogicalExpression:
		return list("logical", quote(node.Op), ToSExpr(node.Left), ToSExpr(node.Right))
	case NodeUnaryExpression:
		return list("unary", quote(node.Op), ToSExpr(node.Argument))
	case NodeCallExpression:
		return list("call", append([]string{ToSExpr(node.Callee)}, sexprs(node.Arguments)...)...)
	case NodeIfStatement:
		if node.Alternate == nil {
			return list("if", ToSExpr(node.Condition), ToSExpr(node.Body))
		}
		return list("if", ToSExpr(node.Condition), ToSExpr(node.Body), ToSExpr(node.Alternate))
	case NodeWhileStatement:
		return list("while", ToSExpr(node.Condition), ToSExpr(node.Body))
	case NodeRepeatStatement:
		return list("repeat", ToSExpr(node.Body), ToSExpr(node.Condition))
	case NodeForStatement:
		parts := []string{ToSExpr(node.Variable), ToSExpr(node.Start), ToSExpr(node.End)}
		if node.Step != nil {
			parts = append(parts, list("step", ToSExpr(node.Step)))
		}
		return list("for", append(parts, ToSExpr(node.Body))...)
	case NodeFunctionDeclaration:
		return functionSExpr("function", node)
	case NodeLocalFunctionDeclaration:
		return functionSExpr("local-function", node)
	case NodeLocalVariableDeclaration:
		if node.Value == nil {
			return list("local", ToSExpr(node.Identifier))
		}
		return list("local", ToSExpr(node.Identifier), ToSExpr(node.Value))
	case NodeReturnStatement:
		if node.Argument == nil {
			return "(return)"
		}
		return list("return", ToSExpr(node.Argument))
	case NodeBreakStatement:
		return "(break)"
	case NodeBlockStatement:
		return list("block", sexprs(node.Statements)...)
	case NodeTableExpression:
		return list("table", sexprs(node.Entries)...)
	case NodeTableKey:
		return list("key", ToSExpr(node.Key), ToSExpr(node.Value))
	case NodeTableValue:
		return list("value", ToSExpr(node.Value))
	case NodeTableAccessExpression:
		return list("index", ToSExpr(node.Base), ToSExpr(node.Key))
	case NodeTableCallExpression:
		return list("table-call", append([]string{ToSExpr(node.Base)}, sexprs(node.Arguments)...)...)
	default:
		return ""
	}
}

func functionSExpr(head string, node *ASTNode) string {
	params := list("params", sexprs(node.Parameters)...)
	return list(head, ToSExpr(node.Identifier), params, ToSExpr(node.Body))
}

// TokensToSExpr renders a token stream, e.g.
// (tokens (identifier "x") (operator "=") (number 5)).
func TokensToSExpr(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == NUMBER {
			parts = append(parts, list(string(tok.Type), formatNumber(tok.Number)))
		} else {
			parts = append(parts, list(string(tok.Type), quote(tok.Value)))
		}
	}
	return list("tokens", parts...)
}

// ValueToSExpr renders a runtime value. Table entries are sorted by
// their rendered key so that output is stable. A table that contains
// itself renders the repeat as (cycle).
func ValueToSExpr(v Value) string {
	return valueToSExpr(v, make(map[*Table]bool))
}

// path holds the tables currently being rendered.
func valueToSExpr(v Value, path map[*Table]bool) string {
	switch v := v.(type) {
	case Number:
		return formatNumber(float64(v))
	case String:
		return quote(string(v))
	case Boolean:
		if v {
			return "true"
		}
		return "false"
	case NilValue:
		return "nil"
	case *Table:
		if path[v] {
			return "(cycle)"
		}
		path[v] = true
		defer delete(path, v)

		entries := make([]string, 0, v.Len())
		for _, key := range v.Keys() {
			entries = append(entries, list("entry", valueToSExpr(key, path), valueToSExpr(v.Get(key), path)))
		}
		sort.Strings(entries)
		return list("table", entries...)
	case *Function:
		params := make([]string, len(v.Parameters))
		for i, p := range v.Parameters {
			params[i] = quote(p)
		}
		return list("function", quote(v.Name), list("params", params...))
	case *HostFunction:
		return list("host-function", quote(v.Name))
	}
	return "nil"
}

// GlobalsToSExpr renders the bindings of env as a map sorted by name,
// e.g. {i: 4, name: "x"}. Host functions are left out.
func GlobalsToSExpr(env *Environment) string {
	var parts []string
	for _, name := range env.Names() {
		v, _ := env.Get(name)
		if _, isHost := v.(*HostFunction); isHost {
			continue
		}
		parts = append(parts, name+": "+ValueToSExpr(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func list(head string, items ...string) string {
	if len(items) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(items, " ") + ")"
}

func sexprs(nodes []*ASTNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = ToSExpr(n)
	}
	return out
}

// quote escapes backslashes and double quotes only, matching the sexy
// reader.
func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}
