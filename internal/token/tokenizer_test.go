package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mibberrors "github.com/standardbeagle/mibble-go/internal/errors"
)

const (
	idTok  = 1
	intTok = 2
	wsTok  = 3
)

func newTestTokenizer(t *testing.T, input string) (*Tokenizer, *mibberrors.Log) {
	t.Helper()
	log := &mibberrors.Log{}
	tz := New("t", log)
	require.NoError(t, tz.AddPattern(&Pattern{ID: wsTok, Name: "WS", Kind: KindRegex, Image: `[ \t\n]+`, Ignored: true}))
	require.NoError(t, tz.AddPattern(&Pattern{ID: intTok, Name: "INT", Kind: KindRegex, Image: `[0-9]+`}))
	require.NoError(t, tz.AddPattern(&Pattern{ID: idTok, Name: "ID", Kind: KindRegex, Image: `[A-Za-z_][A-Za-z0-9_]*`}))
	tz.Reset(strings.NewReader(input))
	return tz, log
}

func TestTokenizer_LongestMatchAndIgnored(t *testing.T) {
	tz, _ := newTestTokenizer(t, "foo 42\nbar")
	var got []string
	for {
		tok, err := tz.Next()
		require.NoError(t, err)
		if tok == nil {
			break
		}
		got = append(got, tok.Image)
	}
	assert.Equal(t, []string{"foo", "42", "bar"}, got)
}

func TestTokenizer_ZeroLengthRecovery(t *testing.T) {
	log := &mibberrors.Log{}
	tz := New("t", log)
	require.NoError(t, tz.AddPattern(&Pattern{ID: idTok, Name: "ID", Kind: KindRegex, Image: `[A-Za-z]+`}))
	tz.Reset(strings.NewReader("foo!bar"))

	tok1, err := tz.Next()
	require.NoError(t, err)
	assert.Equal(t, "foo", tok1.Image)

	tok2, err := tz.Next()
	require.NoError(t, err)
	assert.Equal(t, "bar", tok2.Image)
	assert.Equal(t, 1, log.Len(), "the '!' should be recorded as one LexError")
}

func TestTokenizer_IsErrorPatternUsesStoredMessage(t *testing.T) {
	const errTok = 4
	log := &mibberrors.Log{}
	tz := New("t", log)
	require.NoError(t, tz.AddPattern(&Pattern{ID: errTok, Name: "TAB", Kind: KindString, Image: "\t", IsError: true, ErrMsg: "tabs are not permitted"}))
	require.NoError(t, tz.AddPattern(&Pattern{ID: idTok, Name: "ID", Kind: KindRegex, Image: `[A-Za-z]+`}))
	tz.Reset(strings.NewReader("foo\tbar"))

	tok1, err := tz.Next()
	require.NoError(t, err)
	assert.Equal(t, "foo", tok1.Image)

	tok2, err := tz.Next()
	require.NoError(t, err)
	assert.Equal(t, "bar", tok2.Image)

	require.Equal(t, 1, log.Len())
	lexErr, ok := log.Entries()[0].(*mibberrors.LexError)
	require.True(t, ok)
	assert.Equal(t, "tabs are not permitted", lexErr.Message)
	assert.Contains(t, lexErr.Error(), "tabs are not permitted")
}

func TestTokenizer_KeepTokenList(t *testing.T) {
	tz, _ := newTestTokenizer(t, "a 1")
	tz.SetKeepTokenList(true)
	for {
		tok, _ := tz.Next()
		if tok == nil {
			break
		}
	}
	first := tz.FirstToken()
	require.NotNil(t, first)
	// Even the ignored whitespace token should be present in the list.
	assert.Equal(t, "a", first.Image)
	assert.NotNil(t, first.Next())
}
