package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestWrapErrorWithSource(t *testing.T) {
	src := "local x = 1\nprint(y)\nlocal z = 2"
	_, err := RunSource(src, WithLogger(quietLogger), WithErrorSink(ErrorSinkFunc(func(string) {})))
	be.Err(t, err, ErrUnresolvedName)

	wrapped := WrapErrorWithSource(err, src)
	expected := "RUNTIME ERROR at 2:7: unresolved name 'y' (did you mean 'x'?)\n" +
		"\n" +
		"  1 | local x = 1\n" +
		"  2 | print(y)\n" +
		"    |       ^\n" +
		"  3 | local z = 2"
	be.Equal(t, wrapped.Error(), expected)
	be.Err(t, wrapped, ErrUnresolvedName)
}

func TestWrapErrorWithSourceFirstLine(t *testing.T) {
	src := "local x = @"
	_, _, err := ParseSource(src)

	wrapped := WrapErrorWithSource(err, src)
	expected := "LEXICAL ERROR at 1:11: unrecognized character '@'\n" +
		"\n" +
		"  1 | local x = @\n" +
		"    |           ^"
	be.Equal(t, wrapped.Error(), expected)

	var lexErr *LexError
	be.True(t, errors.As(wrapped, &lexErr))
}

func TestWrapErrorWithSourceSyntax(t *testing.T) {
	src := "local x\nlocal 5\n"
	_, _, err := ParseSource(src)

	wrapped := WrapErrorWithSource(err, src)
	expected := "SYNTAX ERROR at 2:7: expected local variable name, got number \"5\"\n" +
		"\n" +
		"  1 | local x\n" +
		"  2 | local 5\n" +
		"    |       ^\n" +
		"  3 | "
	be.Equal(t, wrapped.Error(), expected)
}

func TestWrapErrorWithoutPosition(t *testing.T) {
	plain := errors.New("plain")
	be.Equal(t, WrapErrorWithSource(plain, "x"), plain)

	unplaced := &RuntimeError{Kind: UnknownNode, Msg: "no position"}
	be.Equal(t, WrapErrorWithSource(unplaced, "x"), error(unplaced))
}

func TestIsIncomplete(t *testing.T) {
	_, _, err := ParseSource("while true")
	be.True(t, IsIncomplete(err))

	_, _, err = ParseSource("}")
	be.True(t, !IsIncomplete(err))

	be.True(t, !IsIncomplete(nil))
	be.True(t, !IsIncomplete(errors.New("other")))
}

func TestRuntimeErrorUnwrapsToSentinel(t *testing.T) {
	tests := []struct {
		kind     RuntimeErrorKind
		sentinel error
	}{
		{UnresolvedName, ErrUnresolvedName},
		{ArityMismatch, ErrArity},
		{UnknownNode, ErrUnknownNode},
		{UnknownOperator, ErrUnknownOperator},
		{TypeMismatch, ErrType},
		{InvalidControlFlow, ErrControlFlow},
		{HostFailure, ErrHostFunction},
	}

	for _, test := range tests {
		err := &RuntimeError{Kind: test.kind, Msg: "m", Pos: Position{Line: 3, Col: 4}}
		be.Err(t, err, test.sentinel)
		be.Equal(t, err.Error(), "3:4: m")
	}
}
