package token

import (
	"fmt"
	"io"

	"github.com/standardbeagle/mibble-go/internal/charbuf"
	mibberrors "github.com/standardbeagle/mibble-go/internal/errors"
	"github.com/standardbeagle/mibble-go/internal/regex"
)

// Tokenizer repeatedly produces the longest-match token at the current
// buffer position from a set of registered patterns (literal strings and
// regexes), per spec.md §4.3.
type Tokenizer struct {
	file     string
	buf      *charbuf.Buffer
	patterns []*Pattern
	compiled map[int]*regex.Regexp
	ci       bool
	keepList bool
	log      *mibberrors.Log

	head, tail *Token
}

// New creates an empty Tokenizer. Diagnostics (LexError, and synthesized
// errors from patterns marked IsError) are appended to log as they occur.
func New(file string, log *mibberrors.Log) *Tokenizer {
	return &Tokenizer{
		file:     file,
		compiled: make(map[int]*regex.Regexp),
		log:      log,
	}
}

// SetCaseInsensitive controls case folding for regex patterns added after
// this call.
func (t *Tokenizer) SetCaseInsensitive(ci bool) { t.ci = ci }

// SetKeepTokenList enables the doubly-linked history of every token
// produced, including ignored and error tokens.
func (t *Tokenizer) SetKeepTokenList(keep bool) { t.keepList = keep }

// FirstToken returns the head of the retained token list, or nil if
// SetKeepTokenList was never enabled.
func (t *Tokenizer) FirstToken() *Token { return t.head }

// AddPattern registers p. Regex patterns are compiled immediately so a
// GrammarError-equivalent compile failure surfaces at grammar construction
// time, not mid-parse.
func (t *Tokenizer) AddPattern(p *Pattern) error {
	if p.Kind == KindRegex {
		re, err := regex.Compile(p.Image, t.ci)
		if err != nil {
			return err
		}
		t.compiled[p.ID] = re
	}
	t.patterns = append(t.patterns, p)
	return nil
}

// Reset rebinds the tokenizer to a fresh reader, discarding any buffered
// state and the retained token list.
func (t *Tokenizer) Reset(r io.Reader) {
	t.buf = charbuf.New(t.file, r)
	t.head, t.tail = nil, nil
}

// GetPatternDescription returns the parser-facing description of the
// pattern with the given id, or "?" if unknown.
func (t *Tokenizer) GetPatternDescription(id int) string {
	for _, p := range t.patterns {
		if p.ID == id {
			return p.Description()
		}
	}
	return "?"
}

// bestMatch finds the longest match among all registered patterns at the
// buffer's current position, preferring the earliest-added pattern on a
// tie in length.
func (t *Tokenizer) bestMatch() (*Pattern, int) {
	var best *Pattern
	bestLen := -1
	for _, p := range t.patterns {
		var l int
		switch p.Kind {
		case KindString:
			l = matchLiteral(t.buf, p.Image)
		case KindRegex:
			l = t.compiled[p.ID].Match(t.buf, 0, 0)
		}
		if l > bestLen {
			bestLen = l
			best = p
		}
	}
	return best, bestLen
}

func matchLiteral(buf *charbuf.Buffer, image string) int {
	runes := []rune(image)
	for i, want := range runes {
		if buf.Peek(i) != want {
			return -1
		}
	}
	return len(runes)
}

// consume reads n runes from the buffer and builds a Token for pattern p
// (p may be nil for the synthetic lex-error recovery token).
func (t *Tokenizer) consume(p *Pattern, n int) *Token {
	startLine, startCol := t.buf.Line(), t.buf.Column()
	image, _ := t.buf.Read(n)
	tok := &Token{
		Image:       image,
		StartLine:   startLine,
		StartColumn: startCol,
		EndLine:     t.buf.Line(),
		EndColumn:   t.buf.Column(),
	}
	if p != nil {
		tok.PatternID = p.ID
		tok.Name = p.Name
	}
	return tok
}

func (t *Tokenizer) appendHistory(tok *Token) {
	if !t.keepList {
		return
	}
	if t.head == nil {
		t.head = tok
	} else {
		link(t.tail, tok)
	}
	t.tail = tok
}

// Next returns the next non-ignored, non-error token, or (nil, nil) at
// end of input. Lexical errors (no pattern matches, or a pattern flagged
// IsError) are appended to the log; when nothing matches, the tokenizer
// recovers by advancing one rune, and an IsError match is consumed whole,
// per spec.md §4.3.
func (t *Tokenizer) Next() (*Token, error) {
	for {
		if t.buf.AtEOF() {
			if err := t.buf.Err(); err != nil {
				return nil, err
			}
			return nil, nil
		}
		p, n := t.bestMatch()
		if n <= 0 {
			line, col := t.buf.Line(), t.buf.Column()
			bad := t.buf.Peek(0)
			t.log.Add(&mibberrors.LexError{
				Location: mibberrors.Location{File: t.file, Line: line, Column: col},
				Char:     bad,
			})
			t.buf.Read(1)
			continue
		}
		tok := t.consume(p, n)
		t.appendHistory(tok)
		if p.IsError {
			msg := p.ErrMsg
			if msg == "" {
				msg = fmt.Sprintf("invalid token %q", tok.Image)
			}
			t.log.Add(&mibberrors.LexError{
				Location: mibberrors.Location{File: t.file, Line: tok.StartLine, Column: tok.StartColumn},
				Message:  msg,
			})
			continue
		}
		if p.Ignored {
			continue
		}
		return tok, nil
	}
}
