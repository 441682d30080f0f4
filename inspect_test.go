package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestInspect(t *testing.T) {
	program, tokens, err := ParseSource("local x = + 1 2 while > x 0 do { = x - x 1 } local y")
	be.Err(t, err, nil)

	inspection := Inspect(program, tokens)
	be.Equal(t, inspection.NodeKinds, []NodeKind{
		NodeProgram,
		NodeLocalVariableDeclaration,
		NodeIdentifier,
		NodeBinaryExpression,
		NodeNumberLiteral,
		NodeWhileStatement,
		NodeBlockStatement,
		NodeAssignmentExpression,
	})
	be.Equal(t, inspection.Keywords, []string{"local", "while", "do"})

	be.Equal(t, inspection.String(), `expressions:
  Program
  LocalVariableDeclaration
  Identifier
  BinaryExpression
  NumberLiteral
  WhileStatement
  BlockStatement
  AssignmentExpression
keywords:
  local
  while
  do
`)
}

func TestInspectEmptyProgram(t *testing.T) {
	program, tokens, err := ParseSource("-- nothing")
	be.Err(t, err, nil)

	inspection := Inspect(program, tokens)
	be.Equal(t, inspection.NodeKinds, []NodeKind{NodeProgram})
	be.Equal(t, len(inspection.Keywords), 0)
	be.Equal(t, inspection.String(), "expressions:\n  Program\nkeywords:\n")
}
