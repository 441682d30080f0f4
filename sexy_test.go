package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/lunar/sexy"
)

func TestSexyAllTests(t *testing.T) {
	testFiles, err := filepath.Glob("test/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		testName := strings.TrimSuffix(filepath.Base(testFile), ".md")

		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					runSexyTestCase(t, tc)
				})
			}
		})
	}
}

// sexyOutcome is everything a test case can assert on.
type sexyOutcome struct {
	tokens []Token
	ast    *ASTNode
	env    *Environment
	output string
	err    error
}

func runSexyTestCase(t *testing.T, tc sexy.TestCase) {
	t.Helper()
	outcome := evaluateSexyInput(t, tc)

	for i, assertion := range tc.Assertions {
		t.Run("assertion_"+string(rune('a'+i)), func(t *testing.T) {
			switch assertion.Type {
			case sexy.AssertionTypeError:
				if outcome.err == nil {
					t.Fatalf("line %d: expected error %q, got none", tc.Line, assertion.Content)
				}
				be.Equal(t, outcome.err.Error(), assertion.Content)
				return
			case sexy.AssertionTypeTokens:
				// Token dumps only need the lexer to succeed.
				if outcome.tokens == nil {
					t.Fatalf("line %d: lexing failed: %v", tc.Line, outcome.err)
				}
				be.Equal(t, TokensToSExpr(outcome.tokens), assertion.ParsedSexy.String())
				return
			}

			if outcome.err != nil {
				t.Fatalf("line %d: unexpected error: %v", tc.Line, outcome.err)
			}
			switch assertion.Type {
			case sexy.AssertionTypeAST:
				be.Equal(t, ToSExpr(outcome.ast), assertion.ParsedSexy.String())
			case sexy.AssertionTypeGlobals:
				be.Equal(t, GlobalsToSExpr(outcome.env), assertion.ParsedSexy.String())
			case sexy.AssertionTypeExecute:
				be.Equal(t, strings.TrimRight(outcome.output, "\n"), assertion.Content)
			default:
				t.Fatalf("unsupported assertion type %s", assertion.Type)
			}
		})
	}
}

// evaluateSexyInput lexes, parses and, when the test asserts on
// execution, runs the input. The first error stops the pipeline.
func evaluateSexyInput(t *testing.T, tc sexy.TestCase) sexyOutcome {
	t.Helper()
	var outcome sexyOutcome

	cfg := DefaultConfig()
	if tc.Config != "" {
		var err error
		cfg, err = ParseConfig(strings.NewReader(tc.Config))
		be.Err(t, err, nil)
	}

	outcome.tokens, outcome.err = Tokenize(tc.Input)
	if outcome.err != nil {
		return outcome
	}

	switch tc.InputType {
	case sexy.InputTypeLunarExpr:
		outcome.ast, outcome.err = ParseExpression(outcome.tokens)
	case sexy.InputTypeLunarProgram:
		outcome.ast, outcome.err = Parse(outcome.tokens)
	default:
		t.Fatalf("unknown input type: %s", tc.InputType)
	}
	if outcome.err != nil || !needsExecution(tc) {
		return outcome
	}

	program := outcome.ast
	if program.Kind != NodeProgram {
		program = &ASTNode{Kind: NodeProgram, Statements: []*ASTNode{program}}
	}

	var out bytes.Buffer
	opts := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithErrorSink(ErrorSinkFunc(func(string) {})),
	}
	opts = append(opts, HostOptions(&out, cfg.HostFunctions)...)
	opts = append(opts, cfg.Options()...)
	outcome.env, outcome.err = Run(program, opts...)
	outcome.output = out.String()
	return outcome
}

func needsExecution(tc sexy.TestCase) bool {
	for _, assertion := range tc.Assertions {
		switch assertion.Type {
		case sexy.AssertionTypeExecute, sexy.AssertionTypeGlobals, sexy.AssertionTypeError:
			return true
		}
	}
	return false
}
