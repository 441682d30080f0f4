package main

import (
	"errors"
	"fmt"
	"strings"
)

// LexError reports a character the lexer does not recognize.
type LexError struct {
	Pos  Position
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: unrecognized character %q", e.Pos, e.Char)
}

// SyntaxError reports an unrecognized token or premature end of input.
type SyntaxError struct {
	Pos Position
	Msg string
	// Incomplete is set when the parser ran out of tokens.
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// IsIncomplete reports whether err is a syntax error caused by input
// ending too early.
func IsIncomplete(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.Incomplete
}

// RuntimeErrorKind classifies evaluation failures.
type RuntimeErrorKind int

const (
	UnresolvedName RuntimeErrorKind = iota
	ArityMismatch
	UnknownNode
	UnknownOperator
	TypeMismatch
	InvalidControlFlow
	HostFailure
)

// Sentinels matched by errors.Is against a *RuntimeError.
var (
	ErrUnresolvedName  = errors.New("unresolved name")
	ErrArity           = errors.New("arity mismatch")
	ErrUnknownNode     = errors.New("unrecognized node")
	ErrUnknownOperator = errors.New("unrecognized operator")
	ErrType            = errors.New("type error")
	ErrControlFlow     = errors.New("invalid control flow")
	ErrHostFunction    = errors.New("host function failed")
)

var runtimeSentinels = map[RuntimeErrorKind]error{
	UnresolvedName:     ErrUnresolvedName,
	ArityMismatch:      ErrArity,
	UnknownNode:        ErrUnknownNode,
	UnknownOperator:    ErrUnknownOperator,
	TypeMismatch:       ErrType,
	InvalidControlFlow: ErrControlFlow,
	HostFailure:        ErrHostFunction,
}

// RuntimeError is a fatal evaluation error.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Msg  string
	Pos  Position
	// Cause is set for HostFailure.
	Cause error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *RuntimeError) Unwrap() []error {
	errs := []error{runtimeSentinels[e.Kind]}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func runtimeErrorf(kind RuntimeErrorKind, node *ASTNode, format string, args ...any) *RuntimeError {
	err := &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
	if node != nil {
		err.Pos = node.Pos
	}
	return err
}

// ErrorSink displays evaluation errors to the user.
type ErrorSink interface {
	ReportError(message string)
}

// ErrorSinkFunc adapts a function to ErrorSink.
type ErrorSinkFunc func(message string)

func (f ErrorSinkFunc) ReportError(message string) {
	f(message)
}

// WrapErrorWithSource returns err with a numbered source snippet and a
// caret under the offending column. Errors without a position are
// returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	var (
		pos   Position
		label string
		msg   string
	)

	var lexErr *LexError
	var syntaxErr *SyntaxError
	var runtimeErr *RuntimeError
	switch {
	case errors.As(err, &lexErr):
		pos, label, msg = lexErr.Pos, "LEXICAL ERROR", fmt.Sprintf("unrecognized character %q", lexErr.Char)
	case errors.As(err, &syntaxErr):
		pos, label, msg = syntaxErr.Pos, "SYNTAX ERROR", syntaxErr.Msg
	case errors.As(err, &runtimeErr):
		pos, label, msg = runtimeErr.Pos, "RUNTIME ERROR", runtimeErr.Msg
	default:
		return err
	}
	if pos.Line == 0 {
		return err
	}
	return &sourceError{err: err, text: renderSnippet(src, pos, label, msg)}
}

type sourceError struct {
	err  error
	text string
}

func (e *sourceError) Error() string { return e.text }
func (e *sourceError) Unwrap() error { return e.err }

// renderSnippet prints the error line with one line of context on each
// side.
func renderSnippet(src string, pos Position, label, msg string) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	line := min(max(pos.Line, 1), len(lines))
	col := max(pos.Col, 1)

	first := max(line-1, 1)
	last := min(line+1, len(lines))
	width := len(fmt.Sprint(last))

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", label, pos.Line, pos.Col, msg)
	for n := first; n <= last; n++ {
		fmt.Fprintf(&b, "  %*d | %s\n", width, n, lines[n-1])
		if n == line {
			fmt.Fprintf(&b, "  %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", col-1))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
