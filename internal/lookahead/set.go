// Package lookahead implements LookAheadSet: a set of short token-id
// sequences used by the LL(k) parser to pick the right production
// alternative without backtracking, per spec.md §3/§4.4.
package lookahead

// Sequence is one token-id sequence in a LookAheadSet. Repetitive marks a
// sequence that may recur without bound — relevant only for conflict
// detection, where a repetitive/repetitive overlap is infinite-loop-safe
// and not reported as an ambiguity.
type Sequence struct {
	Tokens     []int
	Repetitive bool
}

func (s Sequence) equalTokens(o Sequence) bool {
	if len(s.Tokens) != len(o.Tokens) {
		return false
	}
	for i := range s.Tokens {
		if s.Tokens[i] != o.Tokens[i] {
			return false
		}
	}
	return true
}

func cloneTokens(t []int) []int {
	out := make([]int, len(t))
	copy(out, t)
	return out
}

// Set is a de-duplicated collection of Sequences, each truncated to at
// most a configured maximum length k.
type Set struct {
	seqs []Sequence
}

// New returns an empty LookAheadSet.
func New() *Set { return &Set{} }

// Epsilon returns a set containing only the empty sequence.
func Epsilon() *Set {
	return &Set{seqs: []Sequence{{}}}
}

// Single returns a set containing only the one-token sequence [id]. repeat
// honors the caller's repetitive flag (spec.md §9 fixes the original's bug
// of always storing repeat=false for single-token sequences).
func Single(id int, repeat bool) *Set {
	return &Set{seqs: []Sequence{{Tokens: []int{id}, Repetitive: repeat}}}
}

// Sequences returns the set's sequences; callers must not mutate it.
func (s *Set) Sequences() []Sequence { return s.seqs }

// Len reports how many distinct sequences the set holds.
func (s *Set) Len() int { return len(s.seqs) }

// Add inserts seq, de-duping by token content and truncating to maxLen.
func (s *Set) Add(seq Sequence, maxLen int) {
	if maxLen >= 0 && len(seq.Tokens) > maxLen {
		truncated := make([]int, maxLen)
		copy(truncated, seq.Tokens)
		seq = Sequence{Tokens: truncated, Repetitive: seq.Repetitive || len(seq.Tokens) > maxLen}
	}
	for i, existing := range s.seqs {
		if existing.equalTokens(seq) {
			// Union semantics: repetitive becomes true if either occurrence is.
			s.seqs[i].Repetitive = existing.Repetitive || seq.Repetitive
			return
		}
	}
	s.seqs = append(s.seqs, Sequence{Tokens: cloneTokens(seq.Tokens), Repetitive: seq.Repetitive})
}

// Union returns a new set containing every sequence of s and other.
func (s *Set) Union(other *Set, maxLen int) *Set {
	out := New()
	for _, seq := range s.seqs {
		out.Add(seq, maxLen)
	}
	for _, seq := range other.seqs {
		out.Add(seq, maxLen)
	}
	return out
}

// CreateCombination returns the Cartesian concatenation of s and other,
// truncated to maxLen: for every sequence a in s and b in other, the
// result contains a++b truncated to maxLen. A sequence already at maxLen
// passes through unchanged (nothing more can follow it within budget); an
// empty sequence in s is replaced outright by other's sequences.
func (s *Set) CreateCombination(other *Set, maxLen int) *Set {
	out := New()
	if len(s.seqs) == 0 {
		return other.clone()
	}
	for _, a := range s.seqs {
		if maxLen >= 0 && len(a.Tokens) >= maxLen {
			out.Add(a, maxLen)
			continue
		}
		if len(a.Tokens) == 0 {
			for _, b := range other.seqs {
				out.Add(b, maxLen)
			}
			continue
		}
		for _, b := range other.seqs {
			combined := append(cloneTokens(a.Tokens), b.Tokens...)
			out.Add(Sequence{Tokens: combined, Repetitive: a.Repetitive || b.Repetitive}, maxLen)
		}
		if len(other.seqs) == 0 {
			out.Add(a, maxLen)
		}
	}
	return out
}

func (s *Set) clone() *Set {
	out := New()
	for _, seq := range s.seqs {
		out.Add(seq, -1)
	}
	return out
}

// CreateNextSet drops sequences that don't start with token, and shifts
// the survivors left by one — used to advance a look-ahead set after
// consuming a token.
func (s *Set) CreateNextSet(tok int) *Set {
	out := New()
	for _, seq := range s.seqs {
		if len(seq.Tokens) == 0 || seq.Tokens[0] != tok {
			continue
		}
		out.Add(Sequence{Tokens: seq.Tokens[1:], Repetitive: seq.Repetitive}, -1)
	}
	return out
}

// CreateIntersection returns only the sequences present (by token content)
// in both sets; Repetitive is ANDed.
func (s *Set) CreateIntersection(other *Set) *Set {
	out := New()
	for _, a := range s.seqs {
		for _, b := range other.seqs {
			if a.equalTokens(b) {
				out.Add(Sequence{Tokens: a.Tokens, Repetitive: a.Repetitive && b.Repetitive}, -1)
				break
			}
		}
	}
	return out
}

// CreateFilter left-trims sequences in s by removing any prefix they share
// with a sequence in other.
func (s *Set) CreateFilter(other *Set) *Set {
	out := New()
	for _, a := range s.seqs {
		trimmed := a
		for _, b := range other.seqs {
			n := commonPrefixLen(a.Tokens, b.Tokens)
			if n > 0 {
				trimmed = Sequence{Tokens: a.Tokens[n:], Repetitive: a.Repetitive}
			}
		}
		out.Add(trimmed, -1)
	}
	return out
}

// CreateOverlaps returns sequences of s that are a prefix of some sequence
// in other, or vice versa.
func (s *Set) CreateOverlaps(other *Set) *Set {
	out := New()
	for _, a := range s.seqs {
		for _, b := range other.seqs {
			n := commonPrefixLen(a.Tokens, b.Tokens)
			if n == len(a.Tokens) || n == len(b.Tokens) {
				out.Add(a, -1)
				break
			}
		}
	}
	return out
}

// CreateRepetitive returns a clone of s with every sequence's Repetitive
// flag forced true.
func (s *Set) CreateRepetitive() *Set {
	out := New()
	for _, seq := range s.seqs {
		out.Add(Sequence{Tokens: seq.Tokens, Repetitive: true}, -1)
	}
	return out
}

func commonPrefixLen(a, b []int) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// IsNext reports whether peek(0)..peek(n-1) matches any sequence in s
// (sequences shorter than n are compared up to their own length; an empty
// sequence always matches since it imposes no constraint).
func (s *Set) IsNext(peek func(i int) int, n int) bool {
	for _, seq := range s.seqs {
		m := len(seq.Tokens)
		if m > n {
			m = n
		}
		ok := true
		for i := 0; i < m; i++ {
			if peek(i) != seq.Tokens[i] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Equal reports whether s and other contain the same sequences (token
// content and Repetitive flag), used to detect fixed-point convergence
// during look-ahead computation.
func (s *Set) Equal(other *Set) bool {
	if len(s.seqs) != len(other.seqs) {
		return false
	}
	for _, a := range s.seqs {
		found := false
		for _, b := range other.seqs {
			if a.equalTokens(b) && a.Repetitive == b.Repetitive {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NonRepetitiveOverlap reports whether s and other share at least one
// sequence where the AND-ed intersection is not repetitive — the
// infinite-loop-safe conflict test from spec.md §4.4.
func (s *Set) NonRepetitiveOverlap(other *Set) bool {
	inter := s.CreateIntersection(other)
	for _, seq := range inter.seqs {
		if !seq.Repetitive {
			return true
		}
	}
	return false
}
