// Package token defines TokenPattern and Token, the lexical vocabulary
// shared by the Tokenizer (defined in this package) and the Parser.
package token

// Kind distinguishes how a TokenPattern recognizes input.
type Kind int

const (
	KindString Kind = iota
	KindRegex
)

// Pattern describes one lexical token the Tokenizer may produce. Ids are
// chosen by the grammar author and used as indices throughout the
// look-ahead machinery, so they must be stable across a grammar's
// lifetime.
type Pattern struct {
	ID      int
	Name    string
	Kind    Kind
	Image   string // literal text (KindString) or regex source (KindRegex)
	Ignored bool   // consumed but never surfaced to the parser
	IsError bool   // surfaces as a synthetic parse error instead of a token
	ErrMsg  string // message used when IsError is set
}

// Description returns the parser-facing description of this pattern: the
// quoted literal image for a string pattern, or <name> for a regex
// pattern, per spec.md §4.3 getPatternDescription.
func (p *Pattern) Description() string {
	if p.Kind == KindString {
		return "\"" + p.Image + "\""
	}
	return "<" + p.Name + ">"
}

// Token is a parse-tree leaf: one lexeme recognized by the Tokenizer.
type Token struct {
	PatternID   int
	Name        string
	Image       string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int

	// prev/next chain every token (including ignored and error tokens)
	// when the Tokenizer is configured with KeepTokenList.
	prev, next *Token
}

// Prev returns the token produced immediately before this one, or nil.
func (t *Token) Prev() *Token { return t.prev }

// Next returns the token produced immediately after this one, or nil.
func (t *Token) Next() *Token { return t.next }

// link appends t after prior in the doubly-linked token list.
func link(prior, t *Token) {
	if prior == nil {
		return
	}
	prior.next = t
	t.prev = prior
}
