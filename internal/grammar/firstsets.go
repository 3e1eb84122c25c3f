package grammar

import (
	"github.com/standardbeagle/mibble-go/internal/lookahead"
)

const maxFixpointIterations = 64

// computeFirstSets runs the classical FIRST_k fixed-point iteration over
// every production (after normalizeRepetition, so every Element has
// Min=Max=1) and assigns the result to each Alternative.LookAhead.
func (g *Grammar) computeFirstSets(k int) {
	first := make(map[int]*lookahead.Set, len(g.order))
	for _, id := range g.order {
		first[id] = lookahead.New()
	}
	for iter := 0; iter < maxFixpointIterations; iter++ {
		changed := false
		for _, id := range g.order {
			p := g.Productions[id]
			combined := lookahead.New()
			for _, alt := range p.Alternatives {
				combined = combined.Union(g.altFirst(alt.Elements, k, first), k)
			}
			if !combined.Equal(first[id]) {
				first[id] = combined
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for _, id := range g.order {
		p := g.Productions[id]
		for _, alt := range p.Alternatives {
			alt.LookAhead = g.altFirst(alt.Elements, k, first)
		}
	}
}

// altFirst computes FIRST_k of a (fully normalized) element sequence,
// reading production FIRST sets from the current fixed-point
// approximation in first.
func (g *Grammar) altFirst(elems []Element, k int, first map[int]*lookahead.Set) *lookahead.Set {
	if len(elems) == 0 {
		return lookahead.Epsilon()
	}
	head := elems[0]
	var headSet *lookahead.Set
	switch head.Kind {
	case ElementToken:
		headSet = lookahead.Single(head.RefID, false)
	default:
		headSet = first[head.RefID]
		if headSet == nil {
			headSet = lookahead.New()
		}
	}
	rest := g.altFirst(elems[1:], k, first)
	return headSet.CreateCombination(rest, k)
}
