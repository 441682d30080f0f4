package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType is the language of a test's input code fence.
type InputType string

const (
	InputTypeLunarExpr    InputType = "lunar-expr"
	InputTypeLunarProgram InputType = "lunar-program"
)

// AssertionType is the language of an assertion code fence.
type AssertionType string

const (
	AssertionTypeAST     AssertionType = "ast"
	AssertionTypeTokens  AssertionType = "tokens"
	AssertionTypeGlobals AssertionType = "globals"
	AssertionTypeExecute AssertionType = "execute"
	AssertionTypeError   AssertionType = "error"
)

// configFence holds YAML configuration for the test's interpreter.
const configFence = "config"

// Assertion is one expectation of a test case.
type Assertion struct {
	Type    AssertionType
	Content string
	// Set for the s-expression assertions: ast, tokens and globals.
	ParsedSexy *Node
}

// TestCase is one "Test: " section of a Markdown document.
type TestCase struct {
	Name       string
	Input      string
	InputType  InputType
	Config     string // YAML from a config fence, if any
	Line       int    // line of the input fence
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and extracts its test cases.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)
	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validateTestCase(current); err != nil {
					return ast.WalkStop, err
				}
				testCases = append(testCases, *current)
			}
			current = &TestCase{
				Name:       strings.TrimPrefix(headingText, "Test: "),
				Assertions: []Assertion{},
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := extractCodeBlockContent(n, source)
			lineNum := getLineNumber(n, source)

			if current == nil {
				if language == "" {
					return ast.WalkContinue, nil
				}
				if isKnownFence(language) {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
				}
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", lineNum, language)
			}

			switch {
			case language == "":
				// Plain code blocks are commentary.
			case isInputFence(language):
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, current.Name)
				}
				current.Input = strings.TrimRight(content, "\n")
				current.InputType = InputType(language)
				current.Line = lineNum
			case language == configFence:
				if current.Config != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple config fences found in test '%s'", lineNum, current.Name)
				}
				current.Config = content
			case isAssertionFence(language):
				assertion := Assertion{
					Type:    AssertionType(language),
					Content: strings.TrimRight(content, "\n"),
				}
				if isSexyAssertion(assertion.Type) {
					parsed, parseErr := Parse(assertion.Content)
					if parseErr != nil {
						return ast.WalkStop, fmt.Errorf("line %d: failed to parse Sexy assertion in test '%s': %w", lineNum, current.Name, parseErr)
					}
					assertion.ParsedSexy = parsed
				}
				current.Assertions = append(current.Assertions, assertion)
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if current != nil {
		if err := validateTestCase(current); err != nil {
			return nil, err
		}
		testCases = append(testCases, *current)
	}
	return testCases, nil
}

func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func isInputFence(language string) bool {
	return language == string(InputTypeLunarExpr) || language == string(InputTypeLunarProgram)
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeAST, AssertionTypeTokens, AssertionTypeGlobals, AssertionTypeExecute, AssertionTypeError:
		return true
	}
	return false
}

func isKnownFence(language string) bool {
	return isInputFence(language) || isAssertionFence(language) || language == configFence
}

// isSexyAssertion reports whether the fence body is an s-expression.
// execute and error fences hold plain text.
func isSexyAssertion(t AssertionType) bool {
	return t == AssertionTypeAST || t == AssertionTypeTokens || t == AssertionTypeGlobals
}

func validateTestCase(testCase *TestCase) error {
	if testCase.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", testCase.Name)
	}
	if len(testCase.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", testCase.Name)
	}
	return nil
}

// getLineNumber returns the 1-based line of the node's first content line.
func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	startPos := node.Lines().At(0).Start
	return bytes.Count(source[:min(startPos, len(source))], []byte("\n")) + 1
}
