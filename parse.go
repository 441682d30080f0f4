package main

import "fmt"

var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "^": true,
	"==": true, "~=": true, "<=": true, ">=": true, "<": true, ">": true,
	"..": true,
}

// parser is a recursive-descent parser over a token slice. Operators are
// written before their operands (`+ a b`, `= x 5`), so there is no
// precedence handling.
type parser struct {
	tokens []Token
	pos    int
}

// Parse builds a Program node from tokens. It stops at the first syntax
// error and returns a *SyntaxError.
func Parse(tokens []Token) (*ASTNode, error) {
	p := &parser{tokens: tokens}
	program := &ASTNode{Kind: NodeProgram}
	if len(tokens) > 0 {
		program.Pos = tokens[0].Pos
	}
	for !p.atEnd() {
		stmt, err := p.walk()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

// ParseExpression parses exactly one construct in value position.
func ParseExpression(tokens []Token) (*ASTNode, error) {
	p := &parser{tokens: tokens}
	node, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.current(); ok {
		return nil, p.errorAt(tok, "unexpected %s after expression", describeToken(tok))
	}
	return node, nil
}

// ParseSource tokenizes and parses source in one step.
func ParseSource(source string) (*ASTNode, []Token, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, nil, err
	}
	program, err := Parse(tokens)
	if err != nil {
		return nil, tokens, err
	}
	return program, tokens, nil
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) current() (Token, bool) {
	return p.peek(0)
}

func (p *parser) peek(n int) (Token, bool) {
	if p.pos+n >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos+n], true
}

// check reports whether the current token has the given type and lexeme.
func (p *parser) check(typ TokenType, value string) bool {
	tok, ok := p.current()
	return ok && tok.Is(typ, value)
}

// skipOptional consumes the keyword if it is the current token.
func (p *parser) skipOptional(keyword string) {
	if p.check(KEYWORD, keyword) {
		p.pos++
	}
}

func (p *parser) errorAt(tok Token, format string, args ...any) error {
	return &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

// unexpectedEnd reports running out of tokens at the end of the last
// one. The error is marked incomplete so that interactive callers can ask
// for more input.
func (p *parser) unexpectedEnd(expected string) error {
	pos := Position{Line: 1, Col: 1}
	if len(p.tokens) > 0 {
		pos = p.tokens[len(p.tokens)-1].End
	}
	return &SyntaxError{Pos: pos, Msg: "unexpected end of input, expected " + expected, Incomplete: true}
}

func describeToken(tok Token) string {
	return fmt.Sprintf("%s %q", tok.Type, tok.Value)
}

// walk consumes one construct starting at the cursor.
func (p *parser) walk() (*ASTNode, error) {
	tok, ok := p.current()
	if !ok {
		return nil, p.unexpectedEnd("a statement or expression")
	}

	switch tok.Type {
	case IDENTIFIER:
		if next, ok := p.peek(1); ok && next.Is(SEPARATOR, "(") {
			return p.parseCall()
		}
		if next, ok := p.peek(1); ok && next.Is(SEPARATOR, ":") {
			return p.parseTableAccess()
		}
		p.pos++
		return &ASTNode{Kind: NodeIdentifier, Name: tok.Value, Pos: tok.Pos}, nil

	case NUMBER:
		p.pos++
		return &ASTNode{Kind: NodeNumberLiteral, Number: tok.Number, Pos: tok.Pos}, nil

	case STRING:
		p.pos++
		return &ASTNode{Kind: NodeStringLiteral, String: tok.Value, Pos: tok.Pos}, nil

	case OPERATOR:
		switch {
		case tok.Value == "=":
			return p.parseAssignment()
		case binaryOperators[tok.Value]:
			return p.parseOperands(NodeBinaryExpression)
		case tok.Value == "#":
			return p.parseUnary()
		case tok.Value == "...":
			return nil, p.errorAt(tok, "varargs are not supported")
		}

	case KEYWORD:
		switch tok.Value {
		case "and", "or":
			return p.parseOperands(NodeLogicalExpression)
		case "not":
			return p.parseUnary()
		case "true", "false":
			p.pos++
			return &ASTNode{Kind: NodeBooleanLiteral, Boolean: tok.Value == "true", Pos: tok.Pos}, nil
		case "nil":
			p.pos++
			return &ASTNode{Kind: NodeNilLiteral, Pos: tok.Pos}, nil
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "repeat":
			return p.parseRepeat()
		case "for":
			return p.parseFor()
		case "function":
			p.pos++
			return p.parseFunction(NodeFunctionDeclaration, tok.Pos)
		case "local":
			return p.parseLocal()
		case "return":
			return p.parseReturn()
		case "break":
			p.pos++
			return &ASTNode{Kind: NodeBreakStatement, Pos: tok.Pos}, nil
		}

	case SEPARATOR:
		if tok.Value == "{" {
			return p.parseBlock()
		}
	}

	return nil, p.errorAt(tok, "unrecognized token %s", describeToken(tok))
}

// walkValue is walk for positions that expect a value, where '{' opens
// a table constructor instead of a block.
func (p *parser) walkValue() (*ASTNode, error) {
	if p.check(SEPARATOR, "{") {
		return p.parseTable()
	}
	return p.walk()
}

func (p *parser) expectIdentifier(what string) (*ASTNode, error) {
	tok, ok := p.current()
	if !ok {
		return nil, p.unexpectedEnd(what)
	}
	if tok.Type != IDENTIFIER {
		return nil, p.errorAt(tok, "expected %s, got %s", what, describeToken(tok))
	}
	p.pos++
	return &ASTNode{Kind: NodeIdentifier, Name: tok.Value, Pos: tok.Pos}, nil
}

// parseUntilClose collects nodes produced by walkFn up to and including
// the closing ')' separator.
func (p *parser) parseUntilClose(walkFn func() (*ASTNode, error), what string) ([]*ASTNode, error) {
	var nodes []*ASTNode
	for {
		tok, ok := p.current()
		if !ok {
			return nil, p.unexpectedEnd("')' to close " + what)
		}
		if tok.Is(SEPARATOR, ")") {
			p.pos++
			return nodes, nil
		}
		node, err := walkFn()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

func (p *parser) parseAssignment() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	left, err := p.walk()
	if err != nil {
		return nil, err
	}
	right, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	return &ASTNode{Kind: NodeAssignmentExpression, Op: "=", Left: left, Right: right, Pos: tok.Pos}, nil
}

func (p *parser) parseOperands(kind NodeKind) (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	left, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	right, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	return &ASTNode{Kind: kind, Op: tok.Value, Left: left, Right: right, Pos: tok.Pos}, nil
}

func (p *parser) parseUnary() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	operand, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	return &ASTNode{Kind: NodeUnaryExpression, Op: tok.Value, Argument: operand, Pos: tok.Pos}, nil
}

func (p *parser) parseCall() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos += 2 // identifier and '('
	args, err := p.parseUntilClose(p.walkValue, "the argument list of "+tok.Value)
	if err != nil {
		return nil, err
	}
	return &ASTNode{
		Kind:      NodeCallExpression,
		Callee:    &ASTNode{Kind: NodeIdentifier, Name: tok.Value, Pos: tok.Pos},
		Arguments: args,
		Pos:       tok.Pos,
	}, nil
}

// parseTableAccess handles `t:k`, `t:k:j` and `t:k(args)`.
func (p *parser) parseTableAccess() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	node := &ASTNode{Kind: NodeIdentifier, Name: tok.Value, Pos: tok.Pos}

	for p.check(SEPARATOR, ":") {
		colon, _ := p.current()
		p.pos++
		key, err := p.parseTableKey()
		if err != nil {
			return nil, err
		}
		node = &ASTNode{Kind: NodeTableAccessExpression, Base: node, Key: key, Pos: colon.Pos}
	}

	if p.check(SEPARATOR, "(") {
		p.pos++
		args, err := p.parseUntilClose(p.walkValue, "a table call")
		if err != nil {
			return nil, err
		}
		return &ASTNode{Kind: NodeTableCallExpression, Base: node, Arguments: args, Pos: node.Pos}, nil
	}
	return node, nil
}

// parseTableKey reads one key: a bare name, a literal, or `( expr )`.
func (p *parser) parseTableKey() (*ASTNode, error) {
	tok, ok := p.current()
	if !ok {
		return nil, p.unexpectedEnd("a table key")
	}
	switch {
	case tok.Type == IDENTIFIER:
		p.pos++
		return &ASTNode{Kind: NodeIdentifier, Name: tok.Value, Pos: tok.Pos}, nil
	case tok.Type == NUMBER:
		p.pos++
		return &ASTNode{Kind: NodeNumberLiteral, Number: tok.Number, Pos: tok.Pos}, nil
	case tok.Type == STRING:
		p.pos++
		return &ASTNode{Kind: NodeStringLiteral, String: tok.Value, Pos: tok.Pos}, nil
	case tok.Is(KEYWORD, "true"), tok.Is(KEYWORD, "false"):
		p.pos++
		return &ASTNode{Kind: NodeBooleanLiteral, Boolean: tok.Value == "true", Pos: tok.Pos}, nil
	case tok.Is(SEPARATOR, "("):
		p.pos++
		key, err := p.walkValue()
		if err != nil {
			return nil, err
		}
		closing, ok := p.current()
		if !ok {
			return nil, p.unexpectedEnd("')' after table key")
		}
		if !closing.Is(SEPARATOR, ")") {
			return nil, p.errorAt(closing, "expected ')' after table key, got %s", describeToken(closing))
		}
		p.pos++
		return key, nil
	}
	return nil, p.errorAt(tok, "expected table key, got %s", describeToken(tok))
}

func (p *parser) parseTable() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++ // '{'
	table := &ASTNode{Kind: NodeTableExpression, Pos: tok.Pos}
	for {
		entryTok, ok := p.current()
		if !ok {
			return nil, p.unexpectedEnd("'}' to close table")
		}
		if entryTok.Is(SEPARATOR, "}") {
			p.pos++
			return table, nil
		}

		if entryTok.Is(OPERATOR, "=") {
			p.pos++
			key, err := p.parseTableKey()
			if err != nil {
				return nil, err
			}
			value, err := p.walkValue()
			if err != nil {
				return nil, err
			}
			table.Entries = append(table.Entries, &ASTNode{Kind: NodeTableKey, Key: key, Value: value, Pos: entryTok.Pos})
			continue
		}

		value, err := p.walkValue()
		if err != nil {
			return nil, err
		}
		table.Entries = append(table.Entries, &ASTNode{Kind: NodeTableValue, Value: value, Pos: entryTok.Pos})
	}
}

func (p *parser) parseBlock() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++ // '{'
	block := &ASTNode{Kind: NodeBlockStatement, Pos: tok.Pos}
	for {
		next, ok := p.current()
		if !ok {
			return nil, p.unexpectedEnd("'}' to close block")
		}
		if next.Is(SEPARATOR, "}") {
			p.pos++
			return block, nil
		}
		stmt, err := p.walk()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

func (p *parser) parseIf() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	cond, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	p.skipOptional("then")
	body, err := p.walk()
	if err != nil {
		return nil, err
	}
	node := &ASTNode{Kind: NodeIfStatement, Condition: cond, Body: body, Pos: tok.Pos}
	if p.check(KEYWORD, "else") {
		p.pos++
		node.Alternate, err = p.walk()
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *parser) parseWhile() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	cond, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	p.skipOptional("do")
	body, err := p.walk()
	if err != nil {
		return nil, err
	}
	return &ASTNode{Kind: NodeWhileStatement, Condition: cond, Body: body, Pos: tok.Pos}, nil
}

func (p *parser) parseRepeat() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	body, err := p.walk()
	if err != nil {
		return nil, err
	}
	p.skipOptional("until")
	cond, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	return &ASTNode{Kind: NodeRepeatStatement, Body: body, Condition: cond, Pos: tok.Pos}, nil
}

// parseFor reads `for var start end body`. A `do` after the body makes
// the following construct the body instead.
func (p *parser) parseFor() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	variable, err := p.expectIdentifier("loop variable")
	if err != nil {
		return nil, err
	}
	start, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	end, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	p.skipOptional("do")
	body, err := p.walk()
	if err != nil {
		return nil, err
	}
	if p.check(KEYWORD, "do") {
		p.pos++
		body, err = p.walk()
		if err != nil {
			return nil, err
		}
	}
	return &ASTNode{
		Kind:     NodeForStatement,
		Variable: variable,
		Start:    start,
		End:      end,
		Body:     body,
		Pos:      tok.Pos,
	}, nil
}

// parseFunction reads the name, optional parameter list and body after
// the `function` keyword.
func (p *parser) parseFunction(kind NodeKind, pos Position) (*ASTNode, error) {
	name, err := p.expectIdentifier("function name")
	if err != nil {
		return nil, err
	}
	node := &ASTNode{Kind: kind, Identifier: name, Pos: pos}
	if p.check(SEPARATOR, "(") {
		p.pos++
		param := func() (*ASTNode, error) { return p.expectIdentifier("parameter name") }
		node.Parameters, err = p.parseUntilClose(param, "the parameters of "+name.Name)
		if err != nil {
			return nil, err
		}
	}
	node.Body, err = p.walk()
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseLocal() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	if p.check(KEYWORD, "function") {
		p.pos++
		return p.parseFunction(NodeLocalFunctionDeclaration, tok.Pos)
	}

	name, err := p.expectIdentifier("local variable name")
	if err != nil {
		return nil, err
	}
	node := &ASTNode{Kind: NodeLocalVariableDeclaration, Identifier: name, Pos: tok.Pos}
	if p.check(OPERATOR, "=") {
		p.pos++
		node.Value, err = p.walkValue()
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// parseReturn reads `return expr`. A return directly before '}' has no
// argument.
func (p *parser) parseReturn() (*ASTNode, error) {
	tok, _ := p.current()
	p.pos++
	node := &ASTNode{Kind: NodeReturnStatement, Pos: tok.Pos}
	if p.check(SEPARATOR, "}") {
		return node, nil
	}
	arg, err := p.walkValue()
	if err != nil {
		return nil, err
	}
	node.Argument = arg
	return node, nil
}
