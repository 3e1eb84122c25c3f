package parse

import (
	"github.com/standardbeagle/mibble-go/internal/grammar"
	mibberrors "github.com/standardbeagle/mibble-go/internal/errors"
	"github.com/standardbeagle/mibble-go/internal/token"
)

// recoveryLength is how many consumed-and-accepted tokens it takes to
// leave recovery mode after an error, per spec.md §4.5.
const recoveryLength = 3

// Parser is an LL(k) recursive-descent parser driven by a grammar.Grammar
// and fed tokens from a token.Tokenizer.
type Parser struct {
	file     string
	g        *grammar.Grammar
	tz       *token.Tokenizer
	analyzer Analyzer
	log      *mibberrors.Log
	maxK     int

	queue    []*token.Token
	queueEOF bool
	recovery int // countdown; 0 means not recovering
}

// New builds a Parser over g, reading tokens from tz, and driving a.
// Diagnostics are appended to log; Parse returns log.Throw() if it is
// non-empty when parsing finishes.
func New(file string, g *grammar.Grammar, tz *token.Tokenizer, a Analyzer, log *mibberrors.Log) *Parser {
	return &Parser{file: file, g: g, tz: tz, analyzer: a, log: log}
}

// Prepare runs grammar.Grammar.Prepare and records maxK as the number of
// upcoming tokens the parser peeks at when choosing an alternative.
func (p *Parser) Prepare(maxK int) error {
	p.maxK = maxK
	return p.g.Prepare(maxK)
}

// Parse consumes the entire token stream and returns the root parse-tree
// node, or the accumulated error log if any diagnostics were recorded.
func (p *Parser) Parse() (*Node, error) {
	root, err := p.parseProduction(p.g.StartID)
	if err != nil {
		p.log.Add(err)
	}
	if !p.log.Empty() {
		return root, p.log.Throw()
	}
	return root, nil
}

// fill ensures the peek queue holds at least n+1 tokens (or hits EOF).
func (p *Parser) fill(n int) error {
	for len(p.queue) <= n && !p.queueEOF {
		tok, err := p.tz.Next()
		if err != nil {
			return err
		}
		if tok == nil {
			p.queueEOF = true
			break
		}
		p.queue = append(p.queue, tok)
	}
	return nil
}

// peek returns the pattern id of the i-th buffered upcoming token, or -1
// past end of input.
func (p *Parser) peek(i int) int {
	if err := p.fill(i); err != nil {
		return -1
	}
	if i >= len(p.queue) {
		return -1
	}
	return p.queue[i].PatternID
}

func (p *Parser) here() mibberrors.Location {
	if len(p.queue) > 0 {
		t := p.queue[0]
		return mibberrors.Location{File: p.file, Line: t.StartLine, Column: t.StartColumn}
	}
	return mibberrors.Location{File: p.file, Line: 0, Column: 0}
}

// inRecovery reports whether analyzer callbacks are currently suppressed.
func (p *Parser) inRecovery() bool { return p.recovery > 0 }

// beginRecovery enters (or refreshes) the post-error recovery window.
func (p *Parser) beginRecovery() { p.recovery = recoveryLength }

// dequeue removes and returns the next buffered token, decrementing the
// recovery countdown if one is active.
func (p *Parser) dequeue() *token.Token {
	tok := p.queue[0]
	p.queue = p.queue[1:]
	if p.recovery > 0 {
		p.recovery--
	}
	return tok
}

// nextToken consumes one token. If expectedID >= 0 and the upcoming token
// doesn't match, it logs a SyntaxError (or UnexpectedEOFError at end of
// input) and discards tokens until one matches, entering recovery mode.
func (p *Parser) nextToken(expectedID int) (*Node, error) {
	if err := p.fill(0); err != nil {
		return nil, err
	}
	if expectedID < 0 {
		if len(p.queue) == 0 {
			return nil, &mibberrors.UnexpectedEOFError{Location: p.here()}
		}
		return Leaf(p.dequeue()), nil
	}
	for {
		if len(p.queue) == 0 {
			return nil, &mibberrors.UnexpectedEOFError{
				Location: p.here(),
				Expected: []string{p.tz.GetPatternDescription(expectedID)},
			}
		}
		if p.queue[0].PatternID == expectedID {
			return Leaf(p.dequeue()), nil
		}
		p.log.Add(&mibberrors.SyntaxError{
			Location: p.here(),
			Expected: []string{p.tz.GetPatternDescription(expectedID)},
			Found:    p.queue[0].Image,
		})
		p.dequeue() // discard the offending token and retry
		p.beginRecovery()
		if err := p.fill(0); err != nil {
			return nil, err
		}
	}
}

// selectAlternative returns the index of the first alternative whose
// look-ahead set matches the upcoming tokens, or -1 if none do.
func (p *Parser) selectAlternative(alts []*grammar.Alternative) int {
	for i, alt := range alts {
		if alt.LookAhead.IsNext(p.peek, p.maxK) {
			return i
		}
	}
	return -1
}

func (p *Parser) expectedDescriptions(alts []*grammar.Alternative) []string {
	seen := map[string]bool{}
	var out []string
	for _, alt := range alts {
		for _, seq := range alt.LookAhead.Sequences() {
			if len(seq.Tokens) == 0 {
				continue
			}
			d := p.tz.GetPatternDescription(seq.Tokens[0])
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// parseProduction parses one instance of production id, selecting an
// alternative by look-ahead, parsing its elements, and invoking analyzer
// callbacks (unless id's production is Hidden, or the parser is currently
// in post-error recovery).
func (p *Parser) parseProduction(id int) (*Node, error) {
	prod := p.g.Productions[id]
	alts := prod.Alternatives

	idx := p.selectAlternative(alts)
	for idx < 0 {
		if err := p.fill(0); err != nil {
			return nil, err
		}
		if len(p.queue) == 0 {
			return nil, &mibberrors.UnexpectedEOFError{
				Location: p.here(),
				Expected: p.expectedDescriptions(alts),
			}
		}
		p.log.Add(&mibberrors.SyntaxError{
			Location: p.here(),
			Expected: p.expectedDescriptions(alts),
			Found:    p.queue[0].Image,
		})
		p.dequeue()
		p.beginRecovery()
		idx = p.selectAlternative(alts)
	}

	node := &Node{Kind: NodeProduction, ProductionID: prod.ID, Name: prod.Name}
	suppressed := prod.Hidden || p.inRecovery()
	if !suppressed {
		if err := p.callEnter(node); err != nil {
			p.log.Add(err)
		}
	}

	for _, e := range alts[idx].Elements {
		var child *Node
		var err error
		switch e.Kind {
		case grammar.ElementToken:
			child, err = p.nextToken(e.RefID)
		default:
			child, err = p.parseProduction(e.RefID)
		}
		if err != nil {
			return node, err
		}
		if child == nil {
			continue
		}
		p.attach(node, child, prod.Hidden)
	}

	if suppressed {
		return node, nil
	}
	return p.callExit(node)
}

// attach appends child to parent, splicing child's own children straight
// into parent (without a Child callback for child itself) when child was
// produced by a hidden production.
func (p *Parser) attach(parent, child *Node, parentHidden bool) {
	if child.Kind == NodeProduction && p.g.Productions[child.ProductionID] != nil && p.g.Productions[child.ProductionID].Hidden {
		for _, grandchild := range child.Children {
			p.attach(parent, grandchild, parentHidden)
		}
		return
	}
	parent.addChild(child)
	if parentHidden || p.inRecovery() {
		return
	}
	if err := p.analyzer.Child(parent, child); err != nil {
		p.log.Add(&mibberrors.AnalyzerError{Location: p.here(), Underlying: err})
	}
}

func (p *Parser) callEnter(n *Node) error {
	if err := p.analyzer.Enter(n); err != nil {
		return &mibberrors.AnalyzerError{Location: p.here(), Underlying: err}
	}
	return nil
}

func (p *Parser) callExit(n *Node) (*Node, error) {
	out, err := p.analyzer.Exit(n)
	if err != nil {
		p.log.Add(&mibberrors.AnalyzerError{Location: p.here(), Underlying: err})
		return n, nil
	}
	return out, nil
}
