package regex

// runeRange is an inclusive [lo, hi] range, as used by a bracket expression
// like [a-z].
type runeRange struct {
	lo, hi rune
}

// CharSet matches a single input rune against an explicit rune list, a set
// of ranges, and/or nested subsets (used to compose predicates like \W as
// "not \w"), optionally inverted.
type CharSet struct {
	Inverted bool
	Chars    []rune
	Ranges   []runeRange
	Subsets  []*CharSet
}

func (c *CharSet) contains(r rune) bool {
	for _, ch := range c.Chars {
		if ch == r {
			return true
		}
	}
	for _, rg := range c.Ranges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}
	for _, s := range c.Subsets {
		if s.Matches(r) {
			return true
		}
	}
	return false
}

// Matches reports whether r is accepted by the set, honoring Inverted.
func (c *CharSet) Matches(r rune) bool {
	if r < 0 {
		return false
	}
	m := c.contains(r)
	if c.Inverted {
		return !m
	}
	return m
}

func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r - 'A' + 'a'
	}
	return r
}

// foldedCopy returns a copy of c with literal chars/ranges lower-cased for
// case-insensitive matching. Subsets (predefined predicate sets) are
// already case-neutral and are shared, not copied. Per SPEC_FULL.md's
// resolution of the case-folding open question, folding is ASCII-only.
func (c *CharSet) foldedCopy() *CharSet {
	out := &CharSet{Inverted: c.Inverted, Subsets: c.Subsets}
	for _, ch := range c.Chars {
		out.Chars = append(out.Chars, asciiLower(ch))
	}
	for _, rg := range c.Ranges {
		out.Ranges = append(out.Ranges, runeRange{asciiLower(rg.lo), asciiLower(rg.hi)})
	}
	return out
}

// Predefined character-set singletons referenced directly by the compiler
// for \d \D \s \S \w \W and '.'.
var (
	DOT = &CharSet{Inverted: true, Chars: []rune{'\n'}}

	DIGIT    = &CharSet{Ranges: []runeRange{{'0', '9'}}}
	NONDIGIT = &CharSet{Inverted: true, Ranges: []runeRange{{'0', '9'}}}

	WHITESPACE    = &CharSet{Chars: []rune{' ', '\t', '\n', '\r', '\f', '\v'}}
	NONWHITESPACE = &CharSet{Inverted: true, Chars: []rune{' ', '\t', '\n', '\r', '\f', '\v'}}

	// WORD is [A-Za-z0-9_]; this fixes the "InWordSet" off-by-comparator
	// bug noted in spec.md §9 rather than reproducing it.
	WORD = &CharSet{
		Ranges: []runeRange{{'A', 'Z'}, {'a', 'z'}, {'0', '9'}},
		Chars:  []rune{'_'},
	}
	NONWORD = &CharSet{
		Inverted: true,
		Ranges:   []runeRange{{'A', 'Z'}, {'a', 'z'}, {'0', '9'}},
		Chars:    []rune{'_'},
	}
)
