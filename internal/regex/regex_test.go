package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stringSource adapts a plain string to RuneSource for tests that don't
// need a full charbuf.Buffer.
type stringSource []rune

func (s stringSource) Peek(offset int) int32 {
	if offset < 0 || offset >= len(s) {
		return -1
	}
	return s[offset]
}

func src(s string) stringSource { return stringSource(s) }

func TestCompile_Literal(t *testing.T) {
	re, err := Compile("abc", false)
	require.NoError(t, err)
	assert.Equal(t, 3, re.Match(src("abcd"), 0, 0))
	assert.Equal(t, -1, re.Match(src("abx"), 0, 0))
}

func TestCompile_CharClassAndRepeat(t *testing.T) {
	re, err := Compile("[0-9]+", false)
	require.NoError(t, err)
	assert.Equal(t, 3, re.Match(src("123abc"), 0, 0))
	assert.Equal(t, -1, re.Match(src("abc"), 0, 0))
}

func TestCompile_IdentifierPattern(t *testing.T) {
	re, err := Compile("[A-Za-z_][A-Za-z0-9_]*", false)
	require.NoError(t, err)
	assert.Equal(t, 3, re.Match(src("foo bar"), 0, 0))
}

// S2 from spec.md §8: a(bc|b)c backtracking.
func TestCompile_AlternationBacktrack(t *testing.T) {
	re, err := Compile("a(bc|b)c", false)
	require.NoError(t, err)
	assert.Equal(t, 4, re.Match(src("abcc"), 0, 0), "abcc should match length 4")
	assert.Equal(t, 3, re.Match(src("abc"), 0, 0), "abc should match length 3 via the b alternative")
	assert.Equal(t, -1, re.Match(src("ab"), 0, 0), "ab should not match")
}

func TestCompile_Skip(t *testing.T) {
	re, err := Compile("a(bc|b)c", false)
	require.NoError(t, err)
	// Property 2: for k < alternatives, match(k) is strictly shorter than
	// match(k-1), or -1.
	last := re.Match(src("abcc"), 0, 0)
	for k := 1; k < 5; k++ {
		cur := re.Match(src("abcc"), 0, k)
		if cur == -1 {
			break
		}
		assert.Less(t, cur, last)
		last = cur
	}
}

func TestCompile_RejectsAnchors(t *testing.T) {
	_, err := Compile("^abc$", false)
	require.Error(t, err)
}

func TestCompile_CaseInsensitive(t *testing.T) {
	re, err := Compile("ABC", true)
	require.NoError(t, err)
	assert.Equal(t, 3, re.Match(src("abc"), 0, 0))
}

func TestCompile_ReluctantVsGreedy(t *testing.T) {
	greedy, err := Compile("a.*b", false)
	require.NoError(t, err)
	assert.Equal(t, 7, greedy.Match(src("axxbxxbyy"), 0, 0))

	reluctant, err := Compile("a.*?b", false)
	require.NoError(t, err)
	assert.Equal(t, 4, reluctant.Match(src("axxbxxbyy"), 0, 0))
}

func TestCompile_EscapesAndPredefinedSets(t *testing.T) {
	re, err := Compile(`\d+\s\w+`, false)
	require.NoError(t, err)
	assert.Equal(t, 6, re.Match(src("42 foo!"), 0, 0))
}

func TestCompile_InvalidRepeatCount(t *testing.T) {
	_, err := Compile("a{3,1}", false)
	require.Error(t, err)
}

func TestCompile_UnterminatedPattern(t *testing.T) {
	_, err := Compile("(abc", false)
	require.Error(t, err)
}
