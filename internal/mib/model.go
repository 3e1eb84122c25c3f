// Package mib implements the domain front-end: the in-memory Mib/Symbol
// model, the shared object-identifier tree, the multi-pass MibLoader, and
// the ASN.1-subset MibAnalyzer that bridges a parse.Node tree into this
// model. This is C6/C7/C8 of spec.md §2.
package mib

import mibberrors "github.com/standardbeagle/mibble-go/internal/errors"

// SymbolKind distinguishes the three MibSymbol variants of spec.md §3.
type SymbolKind int

const (
	SymbolValue SymbolKind = iota
	SymbolType
	SymbolMacro
)

// Symbol is a named definition owned by exactly one Mib: a value
// assignment, a type assignment, or a macro assignment.
type Symbol struct {
	Kind     SymbolKind
	Name     string
	Mib      *Mib
	Location mibberrors.Location

	Type  *MibType  // non-nil for SymbolType, and for SymbolValue's declared syntax
	Value *MibValue // non-nil for SymbolValue

	// Comment carries a DESCRIPTION clause, when present.
	Comment string
}

// MibType is a (possibly still-unresolved) type reference.
type MibType struct {
	Name     string // the type's own name, if this is a TypeSymbol
	BaseRef  string // name of the type this is defined in terms of, e.g. "OCTET STRING"
	resolved bool
	flatBase string // after Validate: the root primitive type name

	// SyntaxRef is the type name from an OBJECT-TYPE value symbol's SYNTAX
	// clause, captured by the analyzer so Validate's isCompatible check has
	// something to flatten and test against the known primitives.
	SyntaxRef string
}

// ValueKind distinguishes the shapes MibValue.Value can take.
type ValueKind int

const (
	ValueOID ValueKind = iota
	ValueInteger
	ValueString
)

// OidPathComponent is one as-yet-possibly-unresolved element of an OID
// value assignment's braced component list, e.g. `iso(1)` or a bare `2`.
type OidPathComponent struct {
	Name     string // empty for a bare number
	SubID    int
	HasSubID bool
}

// MibValue is a symbol's right-hand side. For ValueOID it additionally
// carries the raw, as-parsed component list (Path) until MibLoader
// resolves it to an OidID in the shared arena (OID field).
type MibValue struct {
	Kind ValueKind
	Path []OidPathComponent // ValueOID, pre-resolution
	OID  OidID              // ValueOID, post-resolution; OidNone until then
	Int  int64               // ValueInteger
	Str  string              // ValueString
}

// Import records one `FROM` clause of a MIB's IMPORTS section.
type Import struct {
	ModuleName string
	Symbols    []string
	Resolved   *Mib
}

// Mib is one loaded ASN.1/SMI module.
type Mib struct {
	Name       string
	File       string
	SmiVersion int
	Imports    []*Import

	Symbols []*Symbol
	byName  map[string]*Symbol

	byValueString map[string]*Symbol // populated by Validate

	Header, Footer string

	loader           *Loader
	LoadedExplicitly bool
	ContentHash      uint64
}

func newMib(name, file string, loader *Loader) *Mib {
	return &Mib{
		Name:       name,
		File:       file,
		SmiVersion: 1, // bumped to 2 by the analyzer on the first SMIv2-only macro use
		loader:     loader,
		byName:     make(map[string]*Symbol),
	}
}

// AddSymbol registers s under this Mib, indexing it by name. A duplicate
// name is a SemanticError, not a silent overwrite.
func (m *Mib) AddSymbol(s *Symbol) error {
	if _, dup := m.byName[s.Name]; dup {
		return &mibberrors.SemanticError{
			Location: s.Location,
			Symbol:   s.Name,
			Underlying: errAlreadyDefined,
		}
	}
	s.Mib = m
	m.Symbols = append(m.Symbols, s)
	m.byName[s.Name] = s
	return nil
}

// alias registers an imported symbol under a (possibly different) local
// name without changing the symbol's owning Mib, per spec.md §4.7 "the
// exporter's symbol is aliased into the importer's name map".
func (m *Mib) alias(localName string, s *Symbol) {
	m.byName[localName] = s
}

// GetSymbol looks up a symbol by name, including aliased imports.
func (m *Mib) GetSymbol(name string) (*Symbol, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// GetSymbolByValue looks up a value symbol by its canonical value string
// (populated during Validate).
func (m *Mib) GetSymbolByValue(valueString string) (*Symbol, bool) {
	s, ok := m.byValueString[valueString]
	return s, ok
}

// GetSymbolByOid strips trailing dotted components from oidStr until a
// registered OID node is found, returning its symbol (spec.md §4.7 /
// scenario S5's longest-prefix match).
func (m *Mib) GetSymbolByOid(oidStr string) (*Symbol, bool) {
	if m.loader == nil {
		return nil, false
	}
	return m.loader.symbolForOid(oidStr)
}

// GetRootSymbol walks up a value symbol's OID parent chain as long as the
// parent node belongs to the same Mib, returning the highest such symbol.
func (m *Mib) GetRootSymbol(s *Symbol) *Symbol {
	if s == nil || s.Value == nil || s.Value.Kind != ValueOID || m.loader == nil {
		return s
	}
	cur := s
	id := s.Value.OID
	for {
		node := m.loader.arena.Node(id)
		if node == nil || node.Parent == OidNone {
			return cur
		}
		parent := m.loader.arena.Node(node.Parent)
		if parent == nil || parent.SymbolMib != m.Name {
			return cur
		}
		if parentSym, ok := m.GetSymbol(parent.SymbolName); ok {
			cur = parentSym
			id = node.Parent
			continue
		}
		return cur
	}
}

// Clear detaches this Mib's back-pointers and releases the OID nodes it
// uniquely owns, per spec.md §4.7's cycle-safety note. It must only be
// called after every Mib that imports from this one has itself been
// cleared.
func (m *Mib) Clear() {
	if m.loader != nil {
		for _, s := range m.Symbols {
			if s.Value != nil && s.Value.Kind == ValueOID && s.Value.OID != OidNone {
				if node := m.loader.arena.Node(s.Value.OID); node != nil && node.SymbolMib == m.Name {
					m.loader.arena.Release(s.Value.OID)
				}
			}
		}
	}
	m.Symbols = nil
	m.byName = nil
	m.byValueString = nil
	m.loader = nil
	for _, imp := range m.Imports {
		imp.Resolved = nil
	}
}
