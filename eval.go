package main

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type completionKind int

const (
	completionNormal completionKind = iota
	completionReturn
	completionBreak
)

// completion is the outcome of executing a statement. A return or break
// stops every enclosing statement list until a call or loop consumes it.
type completion struct {
	kind  completionKind
	value Value
}

var normalCompletion = completion{kind: completionNormal}

// Interpreter executes programs. It is not safe for concurrent use.
type Interpreter struct {
	sink    ErrorSink
	logger  *slog.Logger
	globals []binding

	// Result holds the value of a top-level return, or Nil.
	Result Value
}

type binding struct {
	name  string
	value Value
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithErrorSink routes evaluation error messages to sink instead of the
// logger.
func WithErrorSink(sink ErrorSink) Option {
	return func(in *Interpreter) { in.sink = sink }
}

func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithHostFunction binds a Go function as a global in every run.
func WithHostFunction(name string, fn func(args []Value) (Value, error)) Option {
	return WithGlobal(name, &HostFunction{Name: name, Fn: fn})
}

// WithGlobal predefines a global in every run.
func WithGlobal(name string, value Value) Option {
	return func(in *Interpreter) {
		in.globals = append(in.globals, binding{name: name, value: value})
	}
}

func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{Result: Nil}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = slog.Default()
	}
	return in
}

// Run executes program against a fresh global environment and returns
// that environment.
func Run(program *ASTNode, opts ...Option) (*Environment, error) {
	return NewInterpreter(opts...).Run(program)
}

// RunSource lexes, parses and runs source.
func RunSource(source string, opts ...Option) (*Environment, error) {
	program, _, err := ParseSource(source)
	if err != nil {
		return nil, err
	}
	return Run(program, opts...)
}

func (in *Interpreter) Run(program *ASTNode) (*Environment, error) {
	env := in.NewGlobals()
	return env, in.Exec(program, env)
}

// NewGlobals returns a global environment holding the predefined
// globals and host functions.
func (in *Interpreter) NewGlobals() *Environment {
	env := NewEnvironment(nil)
	for _, b := range in.globals {
		env.Set(b.name, b.value)
	}
	return env
}

// Exec runs program's statements in env. A runtime error stops the run,
// is reported to the error sink and returned.
func (in *Interpreter) Exec(program *ASTNode, env *Environment) error {
	in.Result = Nil
	if program.Kind != NodeProgram {
		return in.fail(runtimeErrorf(UnknownNode, program, "expected Program, got %s", program.Kind))
	}
	c, err := in.execBlock(program.Statements, env)
	if err != nil {
		return in.fail(err)
	}
	switch c.kind {
	case completionReturn:
		in.Result = c.value
	case completionBreak:
		return in.fail(runtimeErrorf(InvalidControlFlow, program, "break outside a loop"))
	}
	return nil
}

func (in *Interpreter) fail(err error) error {
	message := "runtime error: " + err.Error()
	if in.sink != nil {
		in.sink.ReportError(message)
	} else {
		in.logger.Error(message)
	}
	return err
}

func (in *Interpreter) execBlock(stmts []*ASTNode, env *Environment) (completion, error) {
	for _, stmt := range stmts {
		c, err := in.execute(stmt, env)
		if err != nil || c.kind != completionNormal {
			return c, err
		}
	}
	return normalCompletion, nil
}

// execute runs one statement. Expression nodes are evaluated and their
// value dropped.
func (in *Interpreter) execute(node *ASTNode, env *Environment) (completion, error) {
	switch node.Kind {
	case NodeBlockStatement:
		return in.execBlock(node.Statements, env)

	case NodeIfStatement:
		cond, err := in.evaluate(node.Condition, env)
		if err != nil {
			return completion{}, err
		}
		if IsTruthy(cond) {
			return in.execute(node.Body, env)
		}
		if node.Alternate != nil {
			return in.execute(node.Alternate, env)
		}
		return normalCompletion, nil

	case NodeWhileStatement:
		for {
			cond, err := in.evaluate(node.Condition, env)
			if err != nil {
				return completion{}, err
			}
			if !IsTruthy(cond) {
				return normalCompletion, nil
			}
			c, err := in.execute(node.Body, env)
			if stop, c, err := loopExit(c, err); stop {
				return c, err
			}
		}

	case NodeRepeatStatement:
		for {
			c, err := in.execute(node.Body, env)
			if stop, c, err := loopExit(c, err); stop {
				return c, err
			}
			cond, err := in.evaluate(node.Condition, env)
			if err != nil {
				return completion{}, err
			}
			if IsTruthy(cond) {
				return normalCompletion, nil
			}
		}

	case NodeForStatement:
		return in.execFor(node, env)

	case NodeFunctionDeclaration, NodeLocalFunctionDeclaration:
		env.Set(node.Identifier.Name, newFunction(node))
		return normalCompletion, nil

	case NodeLocalVariableDeclaration:
		value := Nil
		if node.Value != nil {
			v, err := in.evaluate(node.Value, env)
			if err != nil {
				return completion{}, err
			}
			value = v
		}
		env.Set(node.Identifier.Name, value)
		return normalCompletion, nil

	case NodeReturnStatement:
		value := Nil
		if node.Argument != nil {
			v, err := in.evaluate(node.Argument, env)
			if err != nil {
				return completion{}, err
			}
			value = v
		}
		return completion{kind: completionReturn, value: value}, nil

	case NodeBreakStatement:
		return completion{kind: completionBreak}, nil

	default:
		_, err := in.evaluate(node, env)
		return normalCompletion, err
	}
}

// loopExit decides whether a loop stops after one iteration. A break is
// consumed here; a return keeps propagating.
func loopExit(c completion, err error) (bool, completion, error) {
	if err != nil {
		return true, completion{}, err
	}
	switch c.kind {
	case completionBreak:
		return true, normalCompletion, nil
	case completionReturn:
		return true, c, nil
	}
	return false, normalCompletion, nil
}

// execFor runs a numeric loop in a child environment. The bounds are
// evaluated once; the step defaults to 1.
func (in *Interpreter) execFor(node *ASTNode, env *Environment) (completion, error) {
	bound := func(expr *ASTNode, what string) (float64, error) {
		v, err := in.evaluate(expr, env)
		if err != nil {
			return 0, err
		}
		f, ok := toNumber(v)
		if !ok {
			return 0, runtimeErrorf(TypeMismatch, expr, "'for' %s must be a number, got %s", what, v.TypeName())
		}
		return f, nil
	}

	start, err := bound(node.Start, "initial value")
	if err != nil {
		return completion{}, err
	}
	end, err := bound(node.End, "limit")
	if err != nil {
		return completion{}, err
	}
	step := 1.0
	if node.Step != nil {
		step, err = bound(node.Step, "step")
		if err != nil {
			return completion{}, err
		}
		if step == 0 {
			return completion{}, runtimeErrorf(TypeMismatch, node.Step, "'for' step is zero")
		}
	}

	loopEnv := NewEnvironment(env)
	for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
		loopEnv.Set(node.Variable.Name, Number(i))
		c, err := in.execute(node.Body, loopEnv)
		if stop, c, err := loopExit(c, err); stop {
			return c, err
		}
	}
	return normalCompletion, nil
}

// evaluate computes the value of an expression node.
func (in *Interpreter) evaluate(node *ASTNode, env *Environment) (Value, error) {
	switch node.Kind {
	case NodeIdentifier:
		if v, ok := env.Get(node.Name); ok {
			return v, nil
		}
		return nil, unresolvedName(node, env)

	case NodeNumberLiteral:
		return Number(node.Number), nil
	case NodeStringLiteral:
		return String(node.String), nil
	case NodeBooleanLiteral:
		return Boolean(node.Boolean), nil
	case NodeNilLiteral:
		return Nil, nil

	case NodeAssignmentExpression:
		return in.assign(node, env)

	case NodeBinaryExpression:
		left, err := in.evaluate(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := in.evaluate(node.Right, env)
		if err != nil {
			return nil, err
		}
		return applyBinary(node, left, right)

	case NodeLogicalExpression:
		left, err := in.evaluate(node.Left, env)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case "and":
			if !IsTruthy(left) {
				return left, nil
			}
		case "or":
			if IsTruthy(left) {
				return left, nil
			}
		default:
			return nil, runtimeErrorf(UnknownOperator, node, "unrecognized logical operator %q", node.Op)
		}
		return in.evaluate(node.Right, env)

	case NodeUnaryExpression:
		operand, err := in.evaluate(node.Argument, env)
		if err != nil {
			return nil, err
		}
		return applyUnary(node, operand)

	case NodeCallExpression:
		callee, err := in.evaluate(node.Callee, env)
		if err != nil {
			return nil, err
		}
		return in.callWith(node, callee, node.Callee.Name, env)

	case NodeTableCallExpression:
		callee, err := in.evaluate(node.Base, env)
		if err != nil {
			return nil, err
		}
		return in.callWith(node, callee, describeTarget(node.Base), env)

	case NodeTableExpression:
		return in.buildTable(node, env)

	case NodeTableAccessExpression:
		table, key, err := in.resolveTableAccess(node, env)
		if err != nil {
			return nil, err
		}
		return table.Get(key), nil
	}

	return nil, runtimeErrorf(UnknownNode, node, "%s cannot be used as a value", node.Kind)
}

func unresolvedName(node *ASTNode, env *Environment) error {
	msg := fmt.Sprintf("unresolved name '%s'", node.Name)
	if suggestion := suggestName(node.Name, env.VisibleNames()); suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
	}
	return runtimeErrorf(UnresolvedName, node, "%s", msg)
}

// suggestName picks the visible name closest to a misspelt one.
func suggestName(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Sort(ranks)
	if len(ranks) > 0 && ranks[0].Distance <= max(2, len(name)) {
		return ranks[0].Target
	}

	best, bestDistance := "", max(1, len(name)/3)+1
	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(candidate)); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// assign evaluates the right side, then binds it in the current scope
// or stores it into a table.
func (in *Interpreter) assign(node *ASTNode, env *Environment) (Value, error) {
	value, err := in.evaluate(node.Right, env)
	if err != nil {
		return nil, err
	}
	switch node.Left.Kind {
	case NodeIdentifier:
		env.Set(node.Left.Name, value)
	case NodeTableAccessExpression:
		table, key, err := in.resolveTableAccess(node.Left, env)
		if err != nil {
			return nil, err
		}
		if err := table.Set(key, value); err != nil {
			return nil, runtimeErrorf(TypeMismatch, node.Left, "%v", err)
		}
	default:
		return nil, runtimeErrorf(UnknownNode, node.Left, "cannot assign to %s", node.Left.Kind)
	}
	return value, nil
}

// callWith evaluates the call's arguments left to right and invokes
// callee. Declared functions run in a child of the caller's environment.
func (in *Interpreter) callWith(node *ASTNode, callee Value, name string, env *Environment) (Value, error) {
	args := make([]Value, 0, len(node.Arguments))
	for _, argNode := range node.Arguments {
		arg, err := in.evaluate(argNode, env)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	switch fn := callee.(type) {
	case *HostFunction:
		result, err := fn.Fn(args)
		if err != nil {
			return nil, &RuntimeError{Kind: HostFailure, Msg: fmt.Sprintf("%s: %v", fn.Name, err), Pos: node.Pos, Cause: err}
		}
		if result == nil {
			result = Nil
		}
		return result, nil

	case *Function:
		if len(args) != len(fn.Parameters) {
			return nil, runtimeErrorf(ArityMismatch, node, "function '%s' expects %d argument(s) (%s), got %d",
				fn.Name, len(fn.Parameters), strings.Join(fn.Parameters, ", "), len(args))
		}
		frame := NewEnvironment(env)
		for i, param := range fn.Parameters {
			frame.Set(param, args[i])
		}

		in.logger.Debug("push call frame",
			slog.String("function", fn.Name),
			slog.Int("argument-count", len(args)))
		c, err := in.execBlock(fn.Body, frame)
		in.logger.Debug("pop call frame",
			slog.String("function", fn.Name),
			slog.Bool("returned", c.kind == completionReturn))
		if err != nil {
			return nil, err
		}
		switch c.kind {
		case completionReturn:
			return c.value, nil
		case completionBreak:
			return nil, runtimeErrorf(InvalidControlFlow, node, "break outside a loop in function '%s'", fn.Name)
		}
		return Nil, nil
	}

	return nil, runtimeErrorf(TypeMismatch, node, "attempt to call a %s value (%s)", callee.TypeName(), name)
}

func (in *Interpreter) buildTable(node *ASTNode, env *Environment) (*Table, error) {
	table := NewTable()
	for _, entry := range node.Entries {
		var key, value Value
		var err error
		switch entry.Kind {
		case NodeTableKey:
			key, err = in.tableKey(entry.Key, env)
			if err != nil {
				return nil, err
			}
			value, err = in.evaluate(entry.Value, env)
			if err != nil {
				return nil, err
			}
		case NodeTableValue:
			// A positional entry is its own key.
			value, err = in.evaluate(entry.Value, env)
			if err != nil {
				return nil, err
			}
			key = value
		default:
			return nil, runtimeErrorf(UnknownNode, entry, "invalid table entry %s", entry.Kind)
		}
		if err := table.Set(key, value); err != nil {
			return nil, runtimeErrorf(TypeMismatch, entry, "%v", err)
		}
	}
	return table, nil
}

// tableKey resolves a key node. A bare name is the key itself, not a
// variable lookup.
func (in *Interpreter) tableKey(key *ASTNode, env *Environment) (Value, error) {
	if key.Kind == NodeIdentifier {
		return String(key.Name), nil
	}
	return in.evaluate(key, env)
}

func (in *Interpreter) resolveTableAccess(node *ASTNode, env *Environment) (*Table, Value, error) {
	base, err := in.evaluate(node.Base, env)
	if err != nil {
		return nil, nil, err
	}
	table, ok := base.(*Table)
	if !ok {
		return nil, nil, runtimeErrorf(TypeMismatch, node, "attempt to index a %s value (%s)", base.TypeName(), describeTarget(node.Base))
	}
	key, err := in.tableKey(node.Key, env)
	if err != nil {
		return nil, nil, err
	}
	return table, key, nil
}

// describeTarget names an access path for error messages, e.g. "t:k".
func describeTarget(node *ASTNode) string {
	switch node.Kind {
	case NodeIdentifier:
		return node.Name
	case NodeTableAccessExpression:
		key := "(...)"
		switch node.Key.Kind {
		case NodeIdentifier:
			key = node.Key.Name
		case NodeNumberLiteral:
			key = formatNumber(node.Key.Number)
		case NodeStringLiteral:
			key = fmt.Sprintf("%q", node.Key.String)
		}
		return describeTarget(node.Base) + ":" + key
	}
	return strings.ToLower(string(node.Kind))
}

func applyBinary(node *ASTNode, left, right Value) (Value, error) {
	switch node.Op {
	case "+", "-", "*", "/", "%", "^":
		a, okA := toNumber(left)
		b, okB := toNumber(right)
		if !okA || !okB {
			culprit := left
			if okA {
				culprit = right
			}
			return nil, runtimeErrorf(TypeMismatch, node, "attempt to perform arithmetic on a %s value", culprit.TypeName())
		}
		switch node.Op {
		case "+":
			return Number(a + b), nil
		case "-":
			return Number(a - b), nil
		case "*":
			return Number(a * b), nil
		case "/":
			return Number(a / b), nil
		case "%":
			return Number(a - math.Floor(a/b)*b), nil
		default:
			return Number(math.Pow(a, b)), nil
		}

	case "==":
		return Boolean(ValuesEqual(left, right)), nil
	case "~=":
		return Boolean(!ValuesEqual(left, right)), nil

	case "<", "<=", ">", ">=":
		cmp, err := compareValues(node, left, right)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case "<":
			return Boolean(cmp < 0), nil
		case "<=":
			return Boolean(cmp <= 0), nil
		case ">":
			return Boolean(cmp > 0), nil
		default:
			return Boolean(cmp >= 0), nil
		}

	case "..":
		if a, ok := left.(Number); ok {
			if b, ok := right.(Number); ok {
				return a + b, nil
			}
		}
		a, err := concatText(node, left)
		if err != nil {
			return nil, err
		}
		b, err := concatText(node, right)
		if err != nil {
			return nil, err
		}
		return String(a + b), nil
	}

	return nil, runtimeErrorf(UnknownOperator, node, "unrecognized operator %q", node.Op)
}

// compareValues orders two numbers or two strings. NaN compares false
// against everything.
func compareValues(node *ASTNode, left, right Value) (int, error) {
	switch a := left.(type) {
	case Number:
		if b, ok := right.(Number); ok {
			switch {
			case a < b:
				return -1, nil
			case a > b:
				return 1, nil
			case a == b:
				return 0, nil
			}
			// NaN: pick a result that fails the requested comparison.
			if node.Op == "<" || node.Op == "<=" {
				return 1, nil
			}
			return -1, nil
		}
	case String:
		if b, ok := right.(String); ok {
			return strings.Compare(string(a), string(b)), nil
		}
	}
	return 0, runtimeErrorf(TypeMismatch, node, "attempt to compare %s with %s", left.TypeName(), right.TypeName())
}

func concatText(node *ASTNode, v Value) (string, error) {
	switch v.(type) {
	case Number, String, Boolean, NilValue:
		return FormatValue(v), nil
	}
	return "", runtimeErrorf(TypeMismatch, node, "attempt to concatenate a %s value", v.TypeName())
}

func applyUnary(node *ASTNode, operand Value) (Value, error) {
	switch node.Op {
	case "not":
		return Boolean(!IsTruthy(operand)), nil
	case "#":
		switch v := operand.(type) {
		case String:
			return Number(len(v)), nil
		case *Table:
			return Number(v.Len()), nil
		}
		return nil, runtimeErrorf(TypeMismatch, node, "attempt to get length of a %s value", operand.TypeName())
	}
	return nil, runtimeErrorf(UnknownOperator, node, "unrecognized unary operator %q", node.Op)
}
