// Package parse implements the LL(k) recursive-descent Parser described in
// spec.md §4.5: it consumes tokens from a Tokenizer according to a
// grammar.Grammar's look-ahead sets, builds a parse tree, and drives an
// Analyzer via enter/exit/child callbacks.
package parse

import "github.com/standardbeagle/mibble-go/internal/token"

// NodeKind distinguishes a parse-tree leaf (a Token) from an interior node
// (a matched Production).
type NodeKind int

const (
	NodeToken NodeKind = iota
	NodeProduction
)

// Node is one parse-tree node: either a Token leaf or a Production
// interior node with an ordered list of children.
type Node struct {
	Kind         NodeKind
	ProductionID int
	Name         string
	Token        *token.Token
	Children     []*Node

	// Value is free-form storage an Analyzer may attach to a node (e.g.
	// the MibType/MibValue it synthesized) so later Exit/Child callbacks
	// up the tree can retrieve it without a side table.
	Value any
}

// Leaf wraps tok as a Token node.
func Leaf(tok *token.Token) *Node {
	return &Node{Kind: NodeToken, Name: tok.Name, Token: tok}
}

// addChild appends child to n's children list.
func (n *Node) addChild(child *Node) {
	n.Children = append(n.Children, child)
}
