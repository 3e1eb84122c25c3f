package regex

// Matcher binds an immutable Regexp to a RuneSource. Unlike Regexp,
// Matcher is stateful (it remembers the source and offers a convenience
// method over repeated skip values) and must not be shared across
// goroutines, per spec.md §5.
type Matcher struct {
	re  *Regexp
	src RuneSource
}

// NewMatcher returns a Matcher for re bound to src.
func NewMatcher(re *Regexp, src RuneSource) *Matcher {
	return &Matcher{re: re, src: src}
}

// Match returns the length of the skip-th longest match at start, or -1.
func (m *Matcher) Match(start, skip int) int {
	return m.re.Match(m.src, start, skip)
}

// Longest is shorthand for Match(start, 0).
func (m *Matcher) Longest(start int) int {
	return m.Match(start, 0)
}
