package config

import (
	"os"

	"github.com/standardbeagle/mibble-go/internal/grammar"
	"github.com/standardbeagle/mibble-go/internal/token"
)

// LoadGrammarTable reads GrammarConfig.TableFile as a TOML grammar table
// (SPEC_FULL.md "grammar tables as configuration"), returning the
// token patterns in the file's own order since that order is the
// Tokenizer's longest-match tie-break.
func LoadGrammarTable(path string) (*grammar.Grammar, []*token.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return grammar.LoadTOMLWithTokens(data)
}
