package main

import "strings"

// Inspection summarises which constructs a program uses.
type Inspection struct {
	// Distinct node kinds, in the order a depth-first walk meets them.
	NodeKinds []NodeKind
	// Distinct keywords, in source order.
	Keywords []string
}

// Inspect collects the node kinds of program and the keywords among
// tokens.
func Inspect(program *ASTNode, tokens []Token) Inspection {
	var result Inspection
	seenKinds := make(map[NodeKind]bool)
	Walk(program, func(n *ASTNode) bool {
		if !seenKinds[n.Kind] {
			seenKinds[n.Kind] = true
			result.NodeKinds = append(result.NodeKinds, n.Kind)
		}
		return true
	})

	seenKeywords := make(map[string]bool)
	for _, tok := range tokens {
		if tok.Type == KEYWORD && !seenKeywords[tok.Value] {
			seenKeywords[tok.Value] = true
			result.Keywords = append(result.Keywords, tok.Value)
		}
	}
	return result
}

func (i Inspection) String() string {
	var b strings.Builder
	b.WriteString("expressions:\n")
	for _, kind := range i.NodeKinds {
		b.WriteString("  " + string(kind) + "\n")
	}
	b.WriteString("keywords:\n")
	for _, kw := range i.Keywords {
		b.WriteString("  " + kw + "\n")
	}
	return b.String()
}
