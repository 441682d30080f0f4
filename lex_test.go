package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func lexSingle(t *testing.T, input string) Token {
	t.Helper()
	tokens, err := Tokenize(input)
	be.Err(t, err, nil)
	be.Equal(t, len(tokens), 1)
	return tokens[0]
}

func TestNumberLiteral(t *testing.T) {
	tests := []struct {
		input string
		value float64
	}{
		{"12345", 12345},
		{"3.25", 3.25},
		{".5", 0.5},
		{"1.2.3", 1.2},
		{"0x1", 0},
		{"0b101", 0},
	}

	for _, tt := range tests {
		tok := lexSingle(t, tt.input)
		be.Equal(t, tok.Type, NUMBER)
		be.Equal(t, tok.Value, tt.input)
		be.Equal(t, tok.Number, tt.value)
	}
}

func TestIdentifierAndKeyword(t *testing.T) {
	tok := lexSingle(t, "foobar")
	be.Equal(t, tok.Type, IDENTIFIER)
	be.Equal(t, tok.Value, "foobar")

	for kw := range keywords {
		tok := lexSingle(t, kw)
		be.Equal(t, tok.Type, KEYWORD)
		be.Equal(t, tok.Value, kw)
	}
}

func TestStringDelimiters(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`[hello]`, "hello"},
		{`"a\nb"`, `a\nb`},
		{`"unterminated`, "unterminated"},
		{`""`, ""},
	}

	for _, tt := range tests {
		tok := lexSingle(t, tt.input)
		be.Equal(t, tok.Type, STRING)
		be.Equal(t, tok.Value, tt.expected)
	}
}

func TestOperatorsAndSeparators(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"+", OPERATOR},
		{"-", OPERATOR},
		{"#", OPERATOR},
		{"==", OPERATOR},
		{"~=", OPERATOR},
		{"..", OPERATOR},
		{"...", OPERATOR},
		{"(", SEPARATOR},
		{"}", SEPARATOR},
		{";", SEPARATOR},
		{",", SEPARATOR},
		{":", SEPARATOR},
	}

	for _, tt := range tests {
		tok := lexSingle(t, tt.input)
		be.Equal(t, tok.Type, tt.typ)
		be.Equal(t, tok.Value, tt.input)
	}
}

func TestAssignmentTokens(t *testing.T) {
	tokens, err := Tokenize("x = 5")
	be.Err(t, err, nil)
	be.Equal(t, tokens, []Token{
		{Type: IDENTIFIER, Value: "x", Pos: Position{Offset: 0, Line: 1, Col: 1}, End: Position{Offset: 1, Line: 1, Col: 2}},
		{Type: OPERATOR, Value: "=", Pos: Position{Offset: 2, Line: 1, Col: 3}, End: Position{Offset: 3, Line: 1, Col: 4}},
		{Type: NUMBER, Value: "5", Number: 5, Pos: Position{Offset: 4, Line: 1, Col: 5}, End: Position{Offset: 5, Line: 1, Col: 6}},
	})
}

func TestWhitespaceAndCommentsOnly(t *testing.T) {
	inputs := []string{
		"",
		"   \t\n\r\n",
		"-- a comment",
		"-- one\n  -- two\n",
	}

	for _, input := range inputs {
		tokens, err := Tokenize(input)
		be.Err(t, err, nil)
		be.True(t, tokens != nil)
		be.Equal(t, len(tokens), 0)
	}
}

func TestSingleMinusIsNotAComment(t *testing.T) {
	tokens, err := Tokenize("- 1 2")
	be.Err(t, err, nil)
	be.Equal(t, len(tokens), 3)
	be.Equal(t, tokens[0].Value, "-")
}

func TestPositionsAcrossLines(t *testing.T) {
	tokens, err := Tokenize("local x\n  -- note\n  print(x)")
	be.Err(t, err, nil)
	be.Equal(t, len(tokens), 6)
	be.Equal(t, tokens[2].Value, "print")
	be.Equal(t, tokens[2].Pos.Line, 3)
	be.Equal(t, tokens[2].Pos.Col, 3)
	be.Equal(t, tokens[2].Pos.String(), "3:3")
}

func TestTokenEndIncludesDelimiters(t *testing.T) {
	tokens, err := Tokenize("s = 'ab'\n[x\ny]")
	be.Err(t, err, nil)
	be.Equal(t, tokens[2].End, Position{Offset: 8, Line: 1, Col: 9})
	be.Equal(t, tokens[3].Value, "x\ny")
	be.Equal(t, tokens[3].End, Position{Offset: 14, Line: 3, Col: 3})
}

func TestUnrecognizedCharacter(t *testing.T) {
	tokens, err := Tokenize("local x = @")
	be.True(t, tokens == nil)

	var lexErr *LexError
	be.True(t, errors.As(err, &lexErr))
	be.Equal(t, lexErr.Char, '@')
	be.Equal(t, lexErr.Pos, Position{Offset: 10, Line: 1, Col: 11})
	be.Equal(t, err.Error(), "1:11: unrecognized character '@'")
}

func TestNonASCIILetterIsUnrecognized(t *testing.T) {
	_, err := Tokenize("é")
	be.Equal(t, err.Error(), "1:1: unrecognized character 'é'")
}

func TestTokenIs(t *testing.T) {
	tok := Token{Type: KEYWORD, Value: "do"}
	be.True(t, tok.Is(KEYWORD, "do"))
	be.True(t, !tok.Is(IDENTIFIER, "do"))
	be.True(t, !tok.Is(KEYWORD, "end"))
}
