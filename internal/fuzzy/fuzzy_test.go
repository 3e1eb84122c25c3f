package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest_ClosestNameWins(t *testing.T) {
	m := New()
	best, ok := m.Suggest("sysDescr", []string{"sysDescrr", "ifIndex", "sysUpTime"})
	assert.True(t, ok)
	assert.Equal(t, "sysDescrr", best)
}

func TestSuggest_NothingCloseEnough(t *testing.T) {
	m := New()
	_, ok := m.Suggest("zzzzzzzz", []string{"ifIndex", "sysUpTime"})
	assert.False(t, ok)
}

func TestSuggest_EmptyCandidates(t *testing.T) {
	m := New()
	_, ok := m.Suggest("sysDescr", nil)
	assert.False(t, ok)
}
