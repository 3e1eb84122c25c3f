// Package grammar holds the static grammar description (token patterns
// and production patterns) a Parser is constructed from, and the
// LookAheadAnalyzer that computes each alternative's LookAheadSet, per
// spec.md §3/§4.4.
package grammar

import (
	"fmt"

	mibberrors "github.com/standardbeagle/mibble-go/internal/errors"
	"github.com/standardbeagle/mibble-go/internal/lookahead"
	"github.com/standardbeagle/mibble-go/internal/token"
)

// ElementKind distinguishes a reference to a token pattern from a
// reference to another production.
type ElementKind int

const (
	ElementToken ElementKind = iota
	ElementProduction
)

// Element is one member of an Alternative: a reference to a token or
// production, repeated Min..Max times (Max < 0 means unbounded).
type Element struct {
	Kind  ElementKind
	RefID int
	Min   int
	Max   int // -1 = unbounded
}

// Alternative is an ordered list of Elements; LookAhead is computed by
// Grammar.Prepare.
type Alternative struct {
	Elements  []Element
	LookAhead *lookahead.Set
}

// Production is a named, possibly-synthetic nonterminal: an ordered list
// of Alternatives. Synthetic productions are auto-generated helpers that
// implement a repeated Element (spec.md §3) and whose parse-tree nodes
// are spliced into the grandparent (the "hidden" behavior of spec.md
// §4.5) rather than surfaced to the Analyzer.
type Production struct {
	ID           int
	Name         string
	Synthetic    bool
	Hidden       bool
	Alternatives []*Alternative
}

// Grammar is the full static description: every token pattern and
// production pattern the Parser will use, plus the start production (the
// first one added).
type Grammar struct {
	StartID     int
	started     bool
	Tokens      map[int]*token.Pattern
	Productions map[int]*Production
	order       []int
	nextSynth   int
}

// New returns an empty Grammar.
func New() *Grammar {
	return &Grammar{
		Tokens:      make(map[int]*token.Pattern),
		Productions: make(map[int]*Production),
		nextSynth:   1 << 20, // synthetic ids live in a disjoint range
	}
}

// AddToken registers a token pattern.
func (g *Grammar) AddToken(p *token.Pattern) {
	g.Tokens[p.ID] = p
}

// AddProduction registers a production; the first one added becomes the
// start production.
func (g *Grammar) AddProduction(p *Production) {
	g.Productions[p.ID] = p
	g.order = append(g.order, p.ID)
	if !g.started {
		g.StartID = p.ID
		g.started = true
	}
}

func (g *Grammar) newSyntheticID() int {
	id := g.nextSynth
	g.nextSynth++
	return id
}

// Prepare validates reachability, normalizes repeated elements into
// synthetic helper productions, and computes look-ahead sets, growing k
// from 1 up to maxK until every production's alternatives are pairwise
// disjoint (or reporting a GrammarError if maxK is reached without
// disjointness). It must be called once before Parse.
func (g *Grammar) Prepare(maxK int) error {
	log := &mibberrors.Log{}
	g.normalizeRepetition()
	if err := g.checkReachability(); err != nil {
		log.Add(err)
		return log.Throw()
	}
	for k := 1; k <= maxK; k++ {
		g.computeFirstSets(k)
		unresolved := g.conflictingProductions()
		if len(unresolved) == 0 {
			return nil
		}
		if k == maxK {
			for _, id := range unresolved {
				log.Add(&mibberrors.GrammarError{
					Pattern:    g.Productions[id].Name,
					Underlying: fmt.Errorf("ambiguous alternatives at look-ahead depth %d", maxK),
				})
			}
		}
	}
	return log.Throw()
}

func (g *Grammar) checkReachability() error {
	for _, id := range g.order {
		p := g.Productions[id]
		if len(p.Alternatives) == 0 {
			return &mibberrors.GrammarError{Pattern: p.Name, Underlying: fmt.Errorf("empty alternative list")}
		}
		for _, alt := range p.Alternatives {
			for _, e := range alt.Elements {
				switch e.Kind {
				case ElementToken:
					if _, ok := g.Tokens[e.RefID]; !ok {
						return &mibberrors.GrammarError{Pattern: p.Name, Underlying: fmt.Errorf("references unknown token id %d", e.RefID)}
					}
				case ElementProduction:
					if _, ok := g.Productions[e.RefID]; !ok {
						return &mibberrors.GrammarError{Pattern: p.Name, Underlying: fmt.Errorf("references unknown production id %d", e.RefID)}
					}
				}
			}
		}
	}
	return nil
}

// normalizeRepetition rewrites any Element with (Min,Max) != (1,1) into a
// reference to a freshly synthesized helper Production, so the look-ahead
// computation only ever has to reason about plain concatenation. This
// mirrors how the grammar-compiler generation step in spec.md §1 would
// desugar EBNF repetition for an LL(k) engine.
func (g *Grammar) normalizeRepetition() {
	for _, id := range append([]int(nil), g.order...) {
		p := g.Productions[id]
		for _, alt := range p.Alternatives {
			for i, e := range alt.Elements {
				if e.Min == 1 && e.Max == 1 {
					continue
				}
				alt.Elements[i] = Element{Kind: ElementProduction, RefID: g.synthesizeRepetition(e), Min: 1, Max: 1}
			}
		}
	}
}

// synthesizeRepetition builds (if not already built) a helper production
// implementing e's repetition count and returns its id.
func (g *Grammar) synthesizeRepetition(e Element) int {
	once := Element{Kind: e.Kind, RefID: e.RefID, Min: 1, Max: 1}
	id := g.newSyntheticID()
	p := &Production{ID: id, Synthetic: true, Hidden: true, Name: fmt.Sprintf("$rep%d", id)}
	switch {
	case e.Min == 0 && e.Max == 1: // optional
		p.Alternatives = []*Alternative{
			{Elements: []Element{once}},
			{Elements: nil},
		}
	case e.Max < 0: // star/plus: right-recursive helper, `once` first so FIRST sees it
		tailAlt := &Alternative{Elements: []Element{once, {Kind: ElementProduction, RefID: id, Min: 1, Max: 1}}}
		epsAlt := &Alternative{Elements: nil}
		if e.Min >= 1 {
			p.Alternatives = []*Alternative{tailAlt}
			// Require at least Min-1 further copies by chaining another helper.
			if e.Min > 1 {
				rest := Element{Kind: e.Kind, RefID: e.RefID, Min: e.Min - 1, Max: -1}
				restID := g.synthesizeRepetition(rest)
				p.Alternatives[0].Elements = []Element{once, {Kind: ElementProduction, RefID: restID, Min: 1, Max: 1}}
			} else {
				p.Alternatives = []*Alternative{tailAlt, {Elements: []Element{once}}}
			}
		} else {
			p.Alternatives = []*Alternative{tailAlt, epsAlt}
		}
	default: // bounded {min,max}: unroll into min..max chained optionals
		if e.Min == 0 && e.Max > 1 {
			// {0,max}: one optional copy followed by a {0,max-1} helper.
			restID := g.synthesizeRepetition(Element{Kind: e.Kind, RefID: e.RefID, Min: 0, Max: e.Max - 1})
			p.Alternatives = []*Alternative{
				{Elements: []Element{once, {Kind: ElementProduction, RefID: restID, Min: 1, Max: 1}}},
				{Elements: nil},
			}
			break
		}
		elems := make([]Element, 0, e.Max)
		for i := 0; i < e.Min; i++ {
			elems = append(elems, once)
		}
		if e.Max > e.Min {
			optID := g.synthesizeRepetition(Element{Kind: e.Kind, RefID: e.RefID, Min: 0, Max: e.Max - e.Min})
			elems = append(elems, Element{Kind: ElementProduction, RefID: optID, Min: 1, Max: 1})
		}
		p.Alternatives = []*Alternative{{Elements: elems}}
	}
	g.AddProduction(p)
	return id
}

// conflictingProductions returns the ids of productions whose alternatives
// are not pairwise look-ahead-disjoint at the currently computed k.
func (g *Grammar) conflictingProductions() []int {
	var bad []int
	for _, id := range g.order {
		p := g.Productions[id]
		conflict := false
		for i := 0; i < len(p.Alternatives) && !conflict; i++ {
			for j := i + 1; j < len(p.Alternatives); j++ {
				if p.Alternatives[i].LookAhead.NonRepetitiveOverlap(p.Alternatives[j].LookAhead) {
					conflict = true
					break
				}
			}
		}
		if conflict {
			bad = append(bad, id)
		}
	}
	return bad
}
