package grammar

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/mibble-go/internal/token"
)

// tomlTable is the on-disk shape of a grammar table, per SPEC_FULL.md's
// "grammar tables as configuration" domain-stack item: the static ASN.1
// pattern table is data the Parser loads, not code baked into the binary.
type tomlTable struct {
	Tokens      []tomlToken      `toml:"tokens"`
	Productions []tomlProduction `toml:"productions"`
	Start       int              `toml:"start"`
}

type tomlToken struct {
	ID      int    `toml:"id"`
	Name    string `toml:"name"`
	Kind    string `toml:"kind"` // "string" or "regex"
	Image   string `toml:"image"`
	Ignored bool   `toml:"ignored"`
	IsError bool   `toml:"is_error"`
	ErrMsg  string `toml:"error_message"`
}

type tomlProduction struct {
	ID           int                `toml:"id"`
	Name         string             `toml:"name"`
	Alternatives []tomlAlternative  `toml:"alternatives"`
}

type tomlAlternative struct {
	Elements []tomlElement `toml:"elements"`
}

type tomlElement struct {
	Kind string `toml:"kind"` // "token" or "production"
	Ref  int    `toml:"ref"`
	Min  int    `toml:"min"`
	Max  int    `toml:"max"` // -1 means unbounded
}

// LoadTOML parses a grammar table (per SPEC_FULL.md DOMAIN STACK item 2)
// into a Grammar. The first production listed becomes the start
// production unless Start overrides it.
func LoadTOML(data []byte) (*Grammar, error) {
	g, _, err := LoadTOMLWithTokens(data)
	return g, err
}

// LoadTOMLWithTokens is LoadTOML plus the token patterns in table order, for
// callers (internal/config.LoadGrammarTable) that must hand the same
// ordering to a Tokenizer: pattern registration order is the tie-break for
// two patterns matching the same longest lexeme, so it must survive the
// round trip through a table file exactly as written.
func LoadTOMLWithTokens(data []byte) (*Grammar, []*token.Pattern, error) {
	var table tomlTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, nil, fmt.Errorf("parsing grammar table: %w", err)
	}
	g := New()
	tokens := make([]*token.Pattern, 0, len(table.Tokens))
	for _, t := range table.Tokens {
		kind := token.KindRegex
		if t.Kind == "string" {
			kind = token.KindString
		}
		p := &token.Pattern{
			ID: t.ID, Name: t.Name, Kind: kind, Image: t.Image,
			Ignored: t.Ignored, IsError: t.IsError, ErrMsg: t.ErrMsg,
		}
		g.AddToken(p)
		tokens = append(tokens, p)
	}
	for _, tp := range table.Productions {
		p := &Production{ID: tp.ID, Name: tp.Name}
		for _, ta := range tp.Alternatives {
			alt := &Alternative{}
			for _, te := range ta.Elements {
				kind := ElementToken
				if te.Kind == "production" {
					kind = ElementProduction
				}
				min, max := te.Min, te.Max
				if min == 0 && max == 0 {
					min, max = 1, 1 // default: exactly once
				}
				alt.Elements = append(alt.Elements, Element{Kind: kind, RefID: te.Ref, Min: min, Max: max})
			}
			p.Alternatives = append(p.Alternatives, alt)
		}
		g.AddProduction(p)
	}
	if table.Start != 0 {
		g.StartID = table.Start
	}
	return g, tokens, nil
}
