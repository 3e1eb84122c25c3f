package mib

import (
	"github.com/standardbeagle/mibble-go/internal/grammar"
	"github.com/standardbeagle/mibble-go/internal/token"
)

// Token ids for the ASN.1/SMI subset grammar built by NewAsnGrammar. Every
// literal keyword gets its own id so it tokenizes distinctly from the
// generic identifier patterns even though both could otherwise match the
// same text at the same length (the Tokenizer's earliest-registration
// tie-break, spec.md §4.3, is what makes that distinction stick).
const (
	tDEFINITIONS = iota + 1
	tBEGIN
	tEND
	tIMPORTS
	tFROM
	tOBJECT
	tIDENTIFIER
	tOBJECTTYPE
	tMODULEIDENTITY
	tNOTIFICATIONTYPE
	tOBJECTIDENTITY
	tOBJECTGROUP
	tNOTIFICATIONGROUP
	tMODULECOMPLIANCE
	tAGENTCAPABILITIES
	tSYNTAX
	tACCESS
	tMAXACCESS
	tSTATUS
	tDESCRIPTION
	tINDEX
	tDEFVAL
	tREFERENCE
	tLBRACE
	tRBRACE
	tLPAREN
	tRPAREN
	tCOMMA
	tSEMI
	tASSIGN
	tNUMBER
	tSTRING
	tTYPEREF
	tIDENT
	tWS
	tCOMMENT
)

// Production ids for the same grammar.
const (
	pModule = iota + 1
	pImportsSection
	pImportGroup
	pCommaSymbol
	pSymbolName
	pAssignment
	pValueAssignmentTail
	pMacroKeyword
	pClause
	pClauseKeyword
	pAnyAtom
	pBracedGroup
	pObjectIdValue
	pOidComponent
	pNumQualifier
	pTypeAssignmentTail
)

// NewAsnGrammar builds the default embedded ASN.1/SMI-subset grammar: the
// macro keywords of RFC 1212/2578 (OBJECT-TYPE, MODULE-IDENTITY,
// NOTIFICATION-TYPE, OBJECT-IDENTITY, OBJECT-GROUP, NOTIFICATION-GROUP,
// MODULE-COMPLIANCE, AGENT-CAPABILITIES), IMPORTS, and both value and
// type assignments, with SYNTAX/ACCESS/STATUS/etc. clause bodies and
// nested type constraints captured generically rather than deeply
// modeled (see DESIGN.md). An operator-supplied table loaded via
// grammar.LoadTOML can replace this default for a custom dialect.
func NewAsnGrammar() (*grammar.Grammar, []*token.Pattern) {
	tokens := []*token.Pattern{
		{ID: tDEFINITIONS, Name: "DEFINITIONS", Kind: token.KindString, Image: "DEFINITIONS"},
		{ID: tBEGIN, Name: "BEGIN", Kind: token.KindString, Image: "BEGIN"},
		{ID: tEND, Name: "END", Kind: token.KindString, Image: "END"},
		{ID: tIMPORTS, Name: "IMPORTS", Kind: token.KindString, Image: "IMPORTS"},
		{ID: tFROM, Name: "FROM", Kind: token.KindString, Image: "FROM"},
		{ID: tOBJECT, Name: "OBJECT", Kind: token.KindString, Image: "OBJECT"},
		{ID: tIDENTIFIER, Name: "IDENTIFIER", Kind: token.KindString, Image: "IDENTIFIER"},
		{ID: tOBJECTTYPE, Name: "OBJECT-TYPE", Kind: token.KindString, Image: "OBJECT-TYPE"},
		{ID: tMODULEIDENTITY, Name: "MODULE-IDENTITY", Kind: token.KindString, Image: "MODULE-IDENTITY"},
		{ID: tNOTIFICATIONTYPE, Name: "NOTIFICATION-TYPE", Kind: token.KindString, Image: "NOTIFICATION-TYPE"},
		{ID: tOBJECTIDENTITY, Name: "OBJECT-IDENTITY", Kind: token.KindString, Image: "OBJECT-IDENTITY"},
		{ID: tOBJECTGROUP, Name: "OBJECT-GROUP", Kind: token.KindString, Image: "OBJECT-GROUP"},
		{ID: tNOTIFICATIONGROUP, Name: "NOTIFICATION-GROUP", Kind: token.KindString, Image: "NOTIFICATION-GROUP"},
		{ID: tMODULECOMPLIANCE, Name: "MODULE-COMPLIANCE", Kind: token.KindString, Image: "MODULE-COMPLIANCE"},
		{ID: tAGENTCAPABILITIES, Name: "AGENT-CAPABILITIES", Kind: token.KindString, Image: "AGENT-CAPABILITIES"},
		{ID: tSYNTAX, Name: "SYNTAX", Kind: token.KindString, Image: "SYNTAX"},
		{ID: tACCESS, Name: "ACCESS", Kind: token.KindString, Image: "ACCESS"},
		{ID: tMAXACCESS, Name: "MAX-ACCESS", Kind: token.KindString, Image: "MAX-ACCESS"},
		{ID: tSTATUS, Name: "STATUS", Kind: token.KindString, Image: "STATUS"},
		{ID: tDESCRIPTION, Name: "DESCRIPTION", Kind: token.KindString, Image: "DESCRIPTION"},
		{ID: tINDEX, Name: "INDEX", Kind: token.KindString, Image: "INDEX"},
		{ID: tDEFVAL, Name: "DEFVAL", Kind: token.KindString, Image: "DEFVAL"},
		{ID: tREFERENCE, Name: "REFERENCE", Kind: token.KindString, Image: "REFERENCE"},
		{ID: tLBRACE, Name: "{", Kind: token.KindString, Image: "{"},
		{ID: tRBRACE, Name: "}", Kind: token.KindString, Image: "}"},
		{ID: tLPAREN, Name: "(", Kind: token.KindString, Image: "("},
		{ID: tRPAREN, Name: ")", Kind: token.KindString, Image: ")"},
		{ID: tCOMMA, Name: ",", Kind: token.KindString, Image: ","},
		{ID: tSEMI, Name: ";", Kind: token.KindString, Image: ";"},
		{ID: tASSIGN, Name: "::=", Kind: token.KindString, Image: "::="},
		{ID: tNUMBER, Name: "NUMBER", Kind: token.KindRegex, Image: `[0-9]+`},
		{ID: tSTRING, Name: "STRING", Kind: token.KindRegex, Image: `"[^"]*"`},
		{ID: tTYPEREF, Name: "TYPEREF", Kind: token.KindRegex, Image: `[A-Z][A-Za-z0-9-]*`},
		{ID: tIDENT, Name: "IDENT", Kind: token.KindRegex, Image: `[a-z][A-Za-z0-9-]*`},
		{ID: tWS, Name: "WS", Kind: token.KindRegex, Image: `[ \t\r\n]+`, Ignored: true},
		{ID: tCOMMENT, Name: "COMMENT", Kind: token.KindRegex, Image: `--[^\n]*`, Ignored: true},
	}

	g := grammar.New()
	for _, p := range tokens {
		g.AddToken(p)
	}

	tok := func(id, min, max int) grammar.Element {
		return grammar.Element{Kind: grammar.ElementToken, RefID: id, Min: min, Max: max}
	}
	prod := func(id, min, max int) grammar.Element {
		return grammar.Element{Kind: grammar.ElementProduction, RefID: id, Min: min, Max: max}
	}
	alt := func(elems ...grammar.Element) *grammar.Alternative {
		return &grammar.Alternative{Elements: elems}
	}

	g.AddProduction(&grammar.Production{ID: pModule, Name: "Module", Alternatives: []*grammar.Alternative{
		alt(tok(tTYPEREF, 1, 1), tok(tDEFINITIONS, 1, 1), tok(tASSIGN, 1, 1), tok(tBEGIN, 1, 1),
			prod(pImportsSection, 0, 1), prod(pAssignment, 0, -1), tok(tEND, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pImportsSection, Name: "ImportsSection", Alternatives: []*grammar.Alternative{
		alt(tok(tIMPORTS, 1, 1), prod(pImportGroup, 1, -1), tok(tSEMI, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pImportGroup, Name: "ImportGroup", Alternatives: []*grammar.Alternative{
		alt(prod(pSymbolName, 1, 1), prod(pCommaSymbol, 0, -1), tok(tFROM, 1, 1), tok(tTYPEREF, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pCommaSymbol, Name: "CommaSymbol", Hidden: true, Alternatives: []*grammar.Alternative{
		alt(tok(tCOMMA, 1, 1), prod(pSymbolName, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pSymbolName, Name: "SymbolName", Alternatives: []*grammar.Alternative{
		alt(tok(tIDENT, 1, 1)),
		alt(tok(tTYPEREF, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pAssignment, Name: "Assignment", Alternatives: []*grammar.Alternative{
		alt(tok(tIDENT, 1, 1), prod(pValueAssignmentTail, 1, 1)),
		alt(tok(tTYPEREF, 1, 1), prod(pTypeAssignmentTail, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pValueAssignmentTail, Name: "ValueAssignmentTail", Alternatives: []*grammar.Alternative{
		alt(tok(tOBJECT, 1, 1), tok(tIDENTIFIER, 1, 1), tok(tASSIGN, 1, 1), prod(pObjectIdValue, 1, 1)),
		alt(tok(tOBJECTTYPE, 1, 1), prod(pClause, 0, -1), tok(tASSIGN, 1, 1), prod(pObjectIdValue, 1, 1)),
		alt(prod(pMacroKeyword, 1, 1), prod(pClause, 0, -1), tok(tASSIGN, 1, 1), prod(pObjectIdValue, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pMacroKeyword, Name: "MacroKeyword", Hidden: true, Alternatives: []*grammar.Alternative{
		alt(tok(tMODULEIDENTITY, 1, 1)),
		alt(tok(tNOTIFICATIONTYPE, 1, 1)),
		alt(tok(tOBJECTIDENTITY, 1, 1)),
		alt(tok(tOBJECTGROUP, 1, 1)),
		alt(tok(tNOTIFICATIONGROUP, 1, 1)),
		alt(tok(tMODULECOMPLIANCE, 1, 1)),
		alt(tok(tAGENTCAPABILITIES, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pClause, Name: "Clause", Alternatives: []*grammar.Alternative{
		alt(prod(pClauseKeyword, 1, 1), prod(pAnyAtom, 0, -1)),
	}})

	g.AddProduction(&grammar.Production{ID: pClauseKeyword, Name: "ClauseKeyword", Hidden: true, Alternatives: []*grammar.Alternative{
		alt(tok(tSYNTAX, 1, 1)),
		alt(tok(tACCESS, 1, 1)),
		alt(tok(tMAXACCESS, 1, 1)),
		alt(tok(tSTATUS, 1, 1)),
		alt(tok(tDESCRIPTION, 1, 1)),
		alt(tok(tINDEX, 1, 1)),
		alt(tok(tDEFVAL, 1, 1)),
		alt(tok(tREFERENCE, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pAnyAtom, Name: "AnyAtom", Hidden: true, Alternatives: []*grammar.Alternative{
		alt(tok(tIDENT, 1, 1)),
		alt(tok(tTYPEREF, 1, 1)),
		alt(tok(tNUMBER, 1, 1)),
		alt(tok(tSTRING, 1, 1)),
		alt(tok(tCOMMA, 1, 1)),
		alt(tok(tLPAREN, 1, 1)),
		alt(tok(tRPAREN, 1, 1)),
		// OBJECT and IDENTIFIER are their own token ids (not tTYPEREF), so a
		// clause body that names the type "OBJECT IDENTIFIER" (e.g. `SYNTAX
		// OBJECT IDENTIFIER`) needs them admitted here explicitly.
		alt(tok(tOBJECT, 1, 1)),
		alt(tok(tIDENTIFIER, 1, 1)),
		alt(prod(pBracedGroup, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pBracedGroup, Name: "BracedGroup", Alternatives: []*grammar.Alternative{
		alt(tok(tLBRACE, 1, 1), prod(pAnyAtom, 0, -1), tok(tRBRACE, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pObjectIdValue, Name: "ObjectIdValue", Alternatives: []*grammar.Alternative{
		alt(tok(tLBRACE, 1, 1), prod(pOidComponent, 1, -1), tok(tRBRACE, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pOidComponent, Name: "OidComponent", Alternatives: []*grammar.Alternative{
		alt(tok(tIDENT, 1, 1), prod(pNumQualifier, 0, 1)),
		alt(tok(tNUMBER, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pNumQualifier, Name: "NumQualifier", Alternatives: []*grammar.Alternative{
		alt(tok(tLPAREN, 1, 1), tok(tNUMBER, 1, 1), tok(tRPAREN, 1, 1)),
	}})

	g.AddProduction(&grammar.Production{ID: pTypeAssignmentTail, Name: "TypeAssignmentTail", Alternatives: []*grammar.Alternative{
		alt(tok(tASSIGN, 1, 1), tok(tTYPEREF, 1, 1), tok(tTYPEREF, 0, 1), prod(pBracedGroup, 0, 1)),
	}})

	return g, tokens
}
