package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType is the class of a token.
type TokenType string

// Definition of token types
const (
	KEYWORD    TokenType = "keyword"
	IDENTIFIER TokenType = "identifier"
	NUMBER     TokenType = "number"
	STRING     TokenType = "string"
	OPERATOR   TokenType = "operator"
	SEPARATOR  TokenType = "separator"
)

// Position locates a token or node in the source text.
// Line and Col are 1-based; Offset is a byte offset.
type Position struct {
	Offset int
	Line   int
	Col    int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is one classified lexeme.
type Token struct {
	Type TokenType
	// Raw lexeme. For STRING tokens, the text between the delimiters.
	Value string
	// Only meaningful when Type == NUMBER.
	Number float64
	Pos    Position
	// End is the position just past the lexeme, closing delimiter included.
	End Position
}

// Is reports whether the token has the given type and lexeme.
func (t Token) Is(typ TokenType, value string) bool {
	return t.Type == typ && t.Value == value
}

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

var twoCharOperators = map[string]bool{
	"==": true, "~=": true, "<=": true, ">=": true, "..": true,
}

const (
	singleCharOperators = "+-*/%^#<>="
	separatorChars      = "(){}[];,:"
)

type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// Tokenize splits source into tokens. It stops at the first unrecognized
// character and returns a *LexError.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{input: source, line: 1, col: 1}
	tokens := []Token{}
	for {
		tok, ok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tok.End = l.position()
		tokens = append(tokens, tok)
	}
}

func (l *lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Col: l.col}
}

// current returns the rune at the cursor, or 0 at end of input.
func (l *lexer) current() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// peekByte returns the byte n positions past the cursor, or 0.
func (l *lexer) peekByte(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) nextToken() (Token, bool, error) {
	for {
		if l.pos >= len(l.input) {
			return Token{}, false, nil
		}

		start := l.position()
		c := l.current()

		switch {
		case unicode.IsSpace(c):
			l.advance()

		case c == '-' && l.peekByte(1) == '-':
			l.skipLineComment()

		case isLetter(c):
			lit := l.readWhile(isIdentChar)
			typ := IDENTIFIER
			if keywords[lit] {
				typ = KEYWORD
			}
			return Token{Type: typ, Value: lit, Pos: start}, true, nil

		case isDigit(c) || (c == '.' && isDigit(rune(l.peekByte(1)))):
			lit := l.readWhile(isNumberChar)
			return Token{Type: NUMBER, Value: lit, Number: parseNumberPrefix(lit), Pos: start}, true, nil

		case c == '"' || c == '\'' || c == '[':
			return Token{Type: STRING, Value: l.readString(c), Pos: start}, true, nil

		default:
			if op := l.matchOperator(); op != "" {
				for range op {
					l.advance()
				}
				return Token{Type: OPERATOR, Value: op, Pos: start}, true, nil
			}
			if c < utf8.RuneSelf && strings.IndexByte(separatorChars, byte(c)) >= 0 {
				l.advance()
				return Token{Type: SEPARATOR, Value: string(c), Pos: start}, true, nil
			}
			return Token{}, false, &LexError{Pos: start, Char: c}
		}
	}
}

// skipLineComment skips up to, but not including, the next newline.
func (l *lexer) skipLineComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
}

func (l *lexer) readWhile(pred func(rune) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.current()) {
		l.advance()
	}
	return l.input[start:l.pos]
}

// readString reads a string opened by quote. Brackets close with ']'.
// There are no escape sequences; an unterminated string runs to the end
// of the input.
func (l *lexer) readString(quote rune) string {
	end := byte(quote)
	if quote == '[' {
		end = ']'
	}
	l.advance() // opening delimiter
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != end {
		l.advance()
	}
	lit := l.input[start:l.pos]
	l.advance() // closing delimiter
	return lit
}

func (l *lexer) matchOperator() string {
	if l.pos+3 <= len(l.input) && l.input[l.pos:l.pos+3] == "..." {
		return "..."
	}
	if l.pos+2 <= len(l.input) && twoCharOperators[l.input[l.pos:l.pos+2]] {
		return l.input[l.pos : l.pos+2]
	}
	if strings.IndexByte(singleCharOperators, l.input[l.pos]) >= 0 {
		return l.input[l.pos : l.pos+1]
	}
	return ""
}

func isLetter(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isIdentChar(c rune) bool {
	return isLetter(c) || isDigit(c)
}

// Hex and binary markers are accepted by the scanner but not interpreted.
func isNumberChar(c rune) bool {
	return isDigit(c) || c == '.' || c == 'x' || c == 'b'
}

// parseNumberPrefix returns the value of the longest prefix of lit that
// reads as a decimal number, so "0x1F" is 0 and "1.2.3" is 1.2.
func parseNumberPrefix(lit string) float64 {
	end := 0
	for end < len(lit) && isDigit(rune(lit[end])) {
		end++
	}
	if end < len(lit) && lit[end] == '.' {
		end++
		for end < len(lit) && isDigit(rune(lit[end])) {
			end++
		}
	}
	val, err := strconv.ParseFloat(lit[:end], 64)
	if err != nil {
		return 0
	}
	return val
}
