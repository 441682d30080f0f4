package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ident", "ident"},
		{"local-function", "local-function"},
		{"_count", "_count"},
		{"x2", "x2"},
		{"true", "true"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeSymbol)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"print"`, "print", `"print"`},
		{`"hello world"`, "hello world", `"hello world"`},
		{`""`, "", `""`},
		{`"say \"hi\""`, `say "hi"`, `"say \"hi\""`},
		{`"a\\b"`, `a\b`, `"a\\b"`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeString)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []string{"42", "0", "-123", "+7", "0.5", "-2.25", "1e+20", "3E-4"}

	for _, input := range tests {
		result, err := Parse(input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeNumber)
		be.Equal(t, result.Text, input)
		be.Equal(t, result.String(), input)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"()", "()"},
		{"(nil)", "(nil)"},
		{"(number 1.5)", "(number 1.5)"},
		{`(binary "+" (ident "i") (number 1))`, `(binary "+" (ident "i") (number 1))`},
		{"(  spaced\n\t(out ) )", "(spaced (out))"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeList)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseMap(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"{}", "{}"},
		{"{i: 4}", "{i: 4}"},
		{`{i: 4, name: "x"}`, `{i: 4, name: "x"}`},
		{"{_hidden: true,}", "{_hidden: true}"},
		{`{t: (table (entry "a" 1))}`, `{t: (table (entry "a" 1))}`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeMap)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseNestedProgram(t *testing.T) {
	input := `(program
 (local (ident "i") (number 1))
 (while (binary "<=" (ident "i") (number 3))
  (block (assign (ident "i") (binary "+" (ident "i") (number 1))))))`

	result, err := Parse(input)
	be.Err(t, err, nil)
	be.Equal(t, result.Head(), "program")
	be.Equal(t, len(result.Items), 3)
	be.Equal(t, result.Items[2].Head(), "while")
	be.Equal(t, result.String(),
		`(program (local (ident "i") (number 1)) (while (binary "<=" (ident "i") (number 3)) (block (assign (ident "i") (binary "+" (ident "i") (number 1))))))`)
}

func TestRoundTripParsing(t *testing.T) {
	tests := []string{
		"ident",
		`"world"`,
		"-3",
		"()",
		"(return)",
		"{}",
		"{i: 4}",
		`(tokens (keyword "local") (identifier "x") (operator "=") (number 5))`,
		`(function (ident "f") (params (ident "a")) (block (return (ident "a"))))`,
	}

	for _, test := range tests {
		t.Run(test, func(t *testing.T) {
			result1, err := Parse(test)
			be.Err(t, err, nil)

			output := result1.String()
			result2, err := Parse(output)
			be.Err(t, err, nil)
			be.Equal(t, result2.String(), output)
		})
	}
}

func TestParseComments(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"; comment\nnil", "nil"},
		{"(nil) ; trailing comment", "(nil)"},
		{"(block ; empty body\n)", "(block)"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"unterminated string`, "unterminated string"},
		{`"invalid \escape"`, `invalid escape sequence: \e`},
		{".", "unexpected character '.'"},
		{"@", "unexpected character '@'"},
		{"(1 2 [3])", "unexpected character '['"},
		{"(a #b)", "unexpected character '#'"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.True(t, err != nil)
		be.Equal(t, err.Error(), test.expected)
		be.True(t, result == nil)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []string{
		"(",
		"{",
		"(ident",
		"{i 4}",
		`{"i": 4}`,
		"{i: 4 j: 5}",
		"ident extra",
		"(nil) (nil)",
		")",
	}

	for _, test := range tests {
		_, err := Parse(test)
		be.True(t, err != nil)
	}
}

func TestNodeHelpers(t *testing.T) {
	be.True(t, NewSymbol("nil").IsAtom())
	be.True(t, NewString("x").IsAtom())
	be.True(t, NewNumber("1").IsAtom())
	be.True(t, !NewList(nil).IsAtom())
	be.True(t, !NewMap(nil, nil).IsAtom())

	be.Equal(t, NewList([]*Node{NewSymbol("call"), NewString("f")}).Head(), "call")
	be.Equal(t, NewList([]*Node{NewString("call")}).Head(), "")
	be.Equal(t, NewList(nil).Head(), "")
	be.Equal(t, NewSymbol("call").Head(), "")
}
