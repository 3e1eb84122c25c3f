package parse

// Analyzer receives callbacks as the Parser walks the parse tree, per
// spec.md §4.5. A production flagged grammar.Production.Hidden bypasses
// these callbacks entirely; its children are spliced into the
// grandparent instead.
type Analyzer interface {
	// Enter is called when a (non-hidden) production is entered, before
	// any of its elements are parsed.
	Enter(n *Node) error

	// Exit is called when a (non-hidden) production's elements have all
	// been parsed. Returning a non-nil Node replaces n in the parent
	// (normally n itself); returning nil discards the subtree.
	Exit(n *Node) (*Node, error)

	// Child is called once for every child attached to a (non-hidden)
	// parent, in order, after that child's own Exit (if it is itself a
	// production) has run.
	Child(parent, child *Node) error
}

// NoopAnalyzer implements Analyzer by building the parse tree with no
// side effects, useful for tests that only care about parser mechanics.
type NoopAnalyzer struct{}

func (NoopAnalyzer) Enter(n *Node) error             { return nil }
func (NoopAnalyzer) Exit(n *Node) (*Node, error)     { return n, nil }
func (NoopAnalyzer) Child(parent, child *Node) error { return nil }
