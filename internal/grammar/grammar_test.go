package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mibble-go/internal/token"
)

const (
	tokID    = 1
	tokComma = 2
	prodList = 100
	prodItem = 101
)

// Grammar accepting comma-separated identifiers, per spec.md S3.
func listGrammar() *Grammar {
	g := New()
	g.AddToken(&token.Pattern{ID: tokID, Name: "ID", Kind: token.KindRegex, Image: "[A-Za-z]+"})
	g.AddToken(&token.Pattern{ID: tokComma, Name: "COMMA", Kind: token.KindString, Image: ","})

	tail := Element{Kind: ElementProduction, RefID: prodItem, Min: 0, Max: -1}
	g.AddProduction(&Production{
		ID:   prodList,
		Name: "List",
		Alternatives: []*Alternative{
			{Elements: []Element{{Kind: ElementToken, RefID: tokID, Min: 1, Max: 1}, tail}},
		},
	})
	g.AddProduction(&Production{
		ID:   prodItem,
		Name: "Item",
		Alternatives: []*Alternative{
			{Elements: []Element{
				{Kind: ElementToken, RefID: tokComma, Min: 1, Max: 1},
				{Kind: ElementToken, RefID: tokID, Min: 1, Max: 1},
			}},
		},
	})
	return g
}

func TestPrepare_NoConflicts(t *testing.T) {
	g := listGrammar()
	require.NoError(t, g.Prepare(3))
	assert.Equal(t, prodList, g.StartID)
}

func TestLoadTOML(t *testing.T) {
	src := `
start = 100

[[tokens]]
id = 1
name = "ID"
kind = "regex"
image = "[A-Za-z]+"

[[productions]]
id = 100
name = "List"

  [[productions.alternatives]]
    [[productions.alternatives.elements]]
    kind = "token"
    ref = 1
    min = 1
    max = 1
`
	g, err := LoadTOML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 100, g.StartID)
	assert.Contains(t, g.Productions, 100)
	assert.Equal(t, "ID", g.Tokens[1].Name)
}
