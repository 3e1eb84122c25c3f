package mib

import (
	"strconv"
	"strings"
	"sync"
)

// OidID is an index into an OidArena. OidNone is the zero value, meaning
// "no node".
type OidID int

const OidNone OidID = 0

// OidNode is one node of the shared object-identifier forest. Children
// are kept sorted ascending by SubID so lookup and longest-prefix search
// can walk them in order. Nodes reference each other purely by OidID, not
// by Go pointer, so that Mib.Clear can release a subtree's entries from
// the arena's backing map without fighting the garbage collector over a
// reference cycle (spec.md §9's "OID tree must tolerate partial
// teardown" design note).
type OidNode struct {
	ID       OidID
	Name     string
	SubID    int
	Parent   OidID
	Children []OidID

	// SymbolMib/SymbolName identify the symbol that first declared this
	// exact OID path, if any; multiple MIBs may share a node (a common
	// SNMP pattern: every MIB re-declares "internet" without owning it).
	SymbolMib  string
	SymbolName string
}

// OidArena owns every OidNode shared across every Mib loaded by one
// Loader, per spec.md §4.7: a single global forest, not one tree per Mib.
type OidArena struct {
	mu    sync.RWMutex
	nodes map[OidID]*OidNode
	next  OidID
}

// NewOidArena returns an empty arena. It holds no root node: top-level
// nodes such as "iso" have OidNone as their parent.
func NewOidArena() *OidArena {
	a := &OidArena{nodes: make(map[OidID]*OidNode), next: 1}
	return a
}

func (a *OidArena) alloc(name string, subID int, parent OidID) OidID {
	id := a.next
	a.next++
	a.nodes[id] = &OidNode{ID: id, Name: name, SubID: subID, Parent: parent}
	return id
}

// Node returns the node for id, or nil if it has been released or never
// existed.
func (a *OidArena) Node(id OidID) *OidNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nodes[id]
}

// InsertChild finds (or creates) the child of parent with the given
// subID, attaching name to it. If a child with that subID already exists
// its Name is left unchanged (the first declaration wins, matching
// real-world MIBs where every importer re-states "internet(1)" under a
// different spelling of the same path).
func (a *OidArena) InsertChild(parent OidID, name string, subID int) OidID {
	a.mu.Lock()
	defer a.mu.Unlock()
	var siblings []OidID
	if parent != OidNone {
		siblings = a.nodes[parent].Children
	} else {
		for id, n := range a.nodes {
			if n.Parent == OidNone && n.SubID == subID {
				return id
			}
		}
	}
	lo, hi := 0, len(siblings)
	for lo < hi {
		mid := (lo + hi) / 2
		if a.nodes[siblings[mid]].SubID < subID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(siblings) && a.nodes[siblings[lo]].SubID == subID {
		return siblings[lo]
	}
	id := a.alloc(name, subID, parent)
	siblings = append(siblings, OidNone)
	copy(siblings[lo+1:], siblings[lo:])
	siblings[lo] = id
	if parent != OidNone {
		a.nodes[parent].Children = siblings
	}
	return id
}

// Claim records that symbol sym in mib mibName is the canonical owner of
// id, if no owner has claimed it yet.
func (a *OidArena) Claim(id OidID, mibName, sym string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n, ok := a.nodes[id]; ok && n.SymbolName == "" {
		n.SymbolMib = mibName
		n.SymbolName = sym
	}
}

// Release removes id from the arena if it has no remaining children,
// walking up to prune now-childless ancestors that belong to the same
// vacated subtree. It is intentionally conservative: a node still
// referenced as another node's parent (i.e. it has children) is kept.
func (a *OidArena) Release(id OidID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id != OidNone {
		n, ok := a.nodes[id]
		if !ok || len(n.Children) > 0 {
			return
		}
		parent := n.Parent
		delete(a.nodes, id)
		if parent != OidNone {
			if pn, ok := a.nodes[parent]; ok {
				pn.Children = removeOidID(pn.Children, id)
			}
		}
		id = parent
	}
}

func removeOidID(s []OidID, target OidID) []OidID {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

// Path returns the dotted-decimal subID path from the forest root to id.
func (a *OidArena) Path(id OidID) []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var rev []int
	for id != OidNone {
		n, ok := a.nodes[id]
		if !ok {
			break
		}
		rev = append(rev, n.SubID)
		id = n.Parent
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}

// DottedString renders id as a "1.3.6.1" style string.
func (a *OidArena) DottedString(id OidID) string {
	path := a.Path(id)
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Resolve finds the node reachable from root by following subIDs in path
// in order, creating no new nodes. It returns OidNone if any step is
// missing.
func (a *OidArena) Resolve(root OidID, path []int) OidID {
	cur := root
	for _, sub := range path {
		a.mu.RLock()
		n, ok := a.nodes[cur]
		a.mu.RUnlock()
		if !ok {
			return OidNone
		}
		next := OidNone
		for _, c := range n.Children {
			a.mu.RLock()
			cn, ok := a.nodes[c]
			a.mu.RUnlock()
			if ok && cn.SubID == sub {
				next = c
				break
			}
		}
		if next == OidNone {
			return OidNone
		}
		cur = next
	}
	return cur
}

// FindLongestPrefixNode parses a dotted-decimal string and walks the
// forest from its top-level roots, returning the nearest named ancestor
// (one claimed by a symbol via Claim) of the deepest node reached along
// any matching root-to-leaf path, per spec.md §8 scenario S5's
// longest-prefix match.
func (a *OidArena) FindLongestPrefixNode(oidStr string) (*OidNode, bool) {
	parts := strings.Split(strings.Trim(oidStr, "."), ".")
	if len(parts) == 0 {
		return nil, false
	}
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	var bestNode *OidNode
	bestDepth := -1
	for _, root := range a.topLevelRoots() {
		if root.SubID != nums[0] {
			continue
		}
		node := root
		matched := 1
		for matched < len(nums) {
			var next *OidNode
			for _, c := range node.Children {
				if cn, ok := a.nodes[c]; ok && cn.SubID == nums[matched] {
					next = cn
					break
				}
			}
			if next == nil {
				break
			}
			node = next
			matched++
		}
		if named := a.nearestNamedAncestorLocked(node); named != nil && matched > bestDepth {
			bestNode = named
			bestDepth = matched
		}
	}
	if bestNode == nil {
		return nil, false
	}
	return bestNode, true
}

func (a *OidArena) nearestNamedAncestorLocked(n *OidNode) *OidNode {
	for n != nil {
		if n.SymbolName != "" {
			return n
		}
		parent, ok := a.nodes[n.Parent]
		if !ok {
			return nil
		}
		n = parent
	}
	return nil
}

func (a *OidArena) topLevelRoots() []*OidNode {
	var roots []*OidNode
	for _, n := range a.nodes {
		if n.Parent == OidNone {
			roots = append(roots, n)
		}
	}
	return roots
}
