package mib

import (
	"strconv"
	"strings"

	mibberrors "github.com/standardbeagle/mibble-go/internal/errors"
	"github.com/standardbeagle/mibble-go/internal/fuzzy"
	"github.com/standardbeagle/mibble-go/internal/parse"
	"github.com/standardbeagle/mibble-go/internal/token"
)

// mibAnalyzer is C8 of spec.md §2: a parse.Analyzer that synthesizes
// MibType/MibValue/MibSymbol values from the ASN.1-subset parse tree and
// attaches them to the Mib being loaded. Everything happens on Exit,
// bottom-up, since by the time a production's Exit runs every one of its
// children has already run its own Exit.
type mibAnalyzer struct {
	mib   *Mib
	arena *OidArena
	log   *mibberrors.Log
	fuzzy *fuzzy.Matcher
}

func newMibAnalyzer(mib *Mib, arena *OidArena, log *mibberrors.Log, fz *fuzzy.Matcher) *mibAnalyzer {
	return &mibAnalyzer{mib: mib, arena: arena, log: log, fuzzy: fz}
}

func (a *mibAnalyzer) Enter(n *parse.Node) error             { return nil }
func (a *mibAnalyzer) Child(parent, child *parse.Node) error { return nil }

func (a *mibAnalyzer) Exit(n *parse.Node) (*parse.Node, error) {
	switch n.ProductionID {
	case pOidComponent:
		n.Value = a.buildOidComponent(n)
	case pObjectIdValue:
		n.Value = a.collectOidPath(n)
	case pClause:
		if info, ok := a.clauseInfo(n); ok {
			n.Value = info
		}
	case pImportGroup:
		a.recordImport(n)
	case pAssignment:
		a.recordAssignment(n)
	}
	return n, nil
}

func (a *mibAnalyzer) loc(tok *token.Token) mibberrors.Location {
	if tok == nil {
		return mibberrors.Location{File: a.mib.File}
	}
	return mibberrors.Location{File: a.mib.File, Line: tok.StartLine, Column: tok.StartColumn}
}

// buildOidComponent reads a pOidComponent node: either `ident(number)`,
// bare `ident`, or bare `number`.
func (a *mibAnalyzer) buildOidComponent(n *parse.Node) OidPathComponent {
	if len(n.Children) == 0 || n.Children[0].Token == nil {
		return OidPathComponent{}
	}
	first := n.Children[0].Token
	if first.PatternID == tNUMBER {
		v, _ := strconv.Atoi(first.Image)
		return OidPathComponent{SubID: v, HasSubID: true}
	}
	comp := OidPathComponent{Name: first.Image}
	if len(n.Children) > 1 && n.Children[1].ProductionID == pNumQualifier && len(n.Children[1].Children) >= 2 {
		if numTok := n.Children[1].Children[1].Token; numTok != nil {
			v, _ := strconv.Atoi(numTok.Image)
			comp.SubID = v
			comp.HasSubID = true
		}
	}
	return comp
}

// collectOidPath gathers the pOidComponent children spliced into a
// pObjectIdValue node (the repeated element's own helper production is
// Hidden, so its matches already appear directly as n's children).
func (a *mibAnalyzer) collectOidPath(n *parse.Node) []OidPathComponent {
	var comps []OidPathComponent
	for _, c := range n.Children {
		if c.Kind == parse.NodeProduction && c.ProductionID == pOidComponent {
			if comp, ok := c.Value.(OidPathComponent); ok {
				comps = append(comps, comp)
			}
		}
	}
	return comps
}

// clauseKind distinguishes the two clause shapes recordAssignment reads
// back out of a pClause node's Value; every other clause (ACCESS, STATUS,
// INDEX, DEFVAL, REFERENCE) parses but is intentionally not captured.
type clauseKind int

const (
	clauseDescription clauseKind = iota
	clauseSyntax
)

// clauseInfo is the Value attached to a pClause node once Exit recognizes
// its keyword.
type clauseInfo struct {
	kind clauseKind
	text string
}

// clauseInfo recognizes a `DESCRIPTION "..."` or `SYNTAX <type> ...`
// clause and extracts the text recordAssignment needs from it.
func (a *mibAnalyzer) clauseInfo(n *parse.Node) (clauseInfo, bool) {
	if len(n.Children) < 1 || n.Children[0].Token == nil {
		return clauseInfo{}, false
	}
	switch n.Children[0].Token.PatternID {
	case tDESCRIPTION:
		if len(n.Children) < 2 || n.Children[1].Token == nil || n.Children[1].Token.PatternID != tSTRING {
			return clauseInfo{}, false
		}
		return clauseInfo{kind: clauseDescription, text: strings.Trim(n.Children[1].Token.Image, `"`)}, true
	case tSYNTAX:
		if name, ok := a.syntaxTypeName(n); ok {
			return clauseInfo{kind: clauseSyntax, text: name}, true
		}
		return clauseInfo{}, false
	default:
		return clauseInfo{}, false
	}
}

// syntaxTypeName reads the leading run of type-name tokens out of a SYNTAX
// clause (e.g. "INTEGER", "OCTET STRING", "OBJECT IDENTIFIER",
// "DisplayString"), stopping at the first token that isn't part of a bare
// type name: a size/range constraint's "(", an enumeration's braced
// group, or anything else. Constraints and enumerations are parsed (so
// they don't error) but their content isn't modeled.
func (a *mibAnalyzer) syntaxTypeName(n *parse.Node) (string, bool) {
	var words []string
	for _, c := range n.Children[1:] {
		if c.Token == nil {
			break
		}
		id := c.Token.PatternID
		if id != tTYPEREF && id != tOBJECT && id != tIDENTIFIER {
			break
		}
		words = append(words, c.Token.Image)
	}
	if len(words) == 0 {
		return "", false
	}
	return strings.Join(words, " "), true
}

// recordImport reads a pImportGroup node: one or more pSymbolName
// children followed by the FROM module name token, and appends an
// *Import to the Mib being built.
func (a *mibAnalyzer) recordImport(n *parse.Node) {
	if len(n.Children) == 0 {
		return
	}
	moduleTok := n.Children[len(n.Children)-1].Token
	if moduleTok == nil {
		return
	}
	var names []string
	for _, c := range n.Children[:len(n.Children)-1] {
		if c.Kind == parse.NodeProduction && c.ProductionID == pSymbolName && len(c.Children) > 0 && c.Children[0].Token != nil {
			names = append(names, c.Children[0].Token.Image)
		}
	}
	a.mib.Imports = append(a.mib.Imports, &Import{ModuleName: moduleTok.Image, Symbols: names})
}

// recordAssignment reads a pAssignment node and builds either a value or
// a type Symbol, registering it on the Mib being built.
func (a *mibAnalyzer) recordAssignment(n *parse.Node) {
	if len(n.Children) < 2 || n.Children[0].Token == nil {
		return
	}
	nameTok := n.Children[0].Token
	tail := n.Children[1]
	var sym *Symbol
	if nameTok.PatternID == tIDENT {
		sym = a.buildValueSymbol(nameTok, tail)
	} else {
		sym = a.buildTypeSymbol(nameTok, tail)
	}
	if sym == nil {
		return
	}
	if err := a.mib.AddSymbol(sym); err != nil {
		a.log.Add(err)
	}
}

func (a *mibAnalyzer) buildValueSymbol(nameTok *token.Token, tail *parse.Node) *Symbol {
	sym := &Symbol{Kind: SymbolValue, Name: nameTok.Image, Location: a.loc(nameTok)}

	var oidNode *parse.Node
	var syntaxRef string
	for _, c := range tail.Children {
		if c.Kind != parse.NodeProduction {
			continue
		}
		switch c.ProductionID {
		case pObjectIdValue:
			oidNode = c
		case pClause:
			if info, ok := c.Value.(clauseInfo); ok {
				switch info.kind {
				case clauseDescription:
					sym.Comment = info.text
				case clauseSyntax:
					syntaxRef = info.text
				}
			}
		}
	}
	if oidNode == nil {
		return nil // a syntax error already got logged while parsing this assignment
	}
	comps, _ := oidNode.Value.([]OidPathComponent)
	sym.Value = &MibValue{Kind: ValueOID, Path: comps}

	switch tail.Children[0].Token.PatternID {
	case tOBJECT:
		sym.Type = &MibType{BaseRef: "OBJECT IDENTIFIER"}
	case tOBJECTTYPE:
		sym.Type = &MibType{BaseRef: "OBJECT-TYPE"}
	default:
		// one of the seven macro-invocation keywords (MODULE-IDENTITY,
		// NOTIFICATION-TYPE, OBJECT-IDENTITY, OBJECT-GROUP,
		// NOTIFICATION-GROUP, MODULE-COMPLIANCE, AGENT-CAPABILITIES):
		// still a value assignment, just one whose syntax is a macro use
		// rather than a MACRO definition. None of these existed before
		// RFC 1902, so seeing one marks the module as SMIv2.
		sym.Type = &MibType{BaseRef: tail.Children[0].Token.Image}
		a.mib.SmiVersion = 2
	}
	sym.Type.SyntaxRef = syntaxRef
	return sym
}

func (a *mibAnalyzer) buildTypeSymbol(nameTok *token.Token, tail *parse.Node) *Symbol {
	var words []string
	for _, c := range tail.Children {
		if c.Token != nil && c.Token.PatternID == tTYPEREF {
			words = append(words, c.Token.Image)
		}
	}
	return &Symbol{
		Kind:     SymbolType,
		Name:     nameTok.Image,
		Location: a.loc(nameTok),
		Type:     &MibType{Name: nameTok.Image, BaseRef: strings.Join(words, " ")},
	}
}
