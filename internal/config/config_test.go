package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"."}, cfg.Loader.SearchDirs)
	assert.True(t, cfg.Loader.AllowCycles)
	assert.Equal(t, 2, cfg.Grammar.MaxLookAhead)
	assert.False(t, cfg.Watch.Enabled)
}

func TestLoad_MissingFile_ReturnsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseKDL_OverridesDefaults(t *testing.T) {
	src := `
loader {
    search_dirs "/opt/mibs" "/usr/share/snmp/mibs"
    resource_dir "/opt/mibs/extra"
    allow_cycles false
}
grammar {
    max_lookahead 3
}
watch {
    enabled true
    debounce_ms 500
}
`
	cfg, err := parseKDL([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/mibs", "/usr/share/snmp/mibs"}, cfg.Loader.SearchDirs)
	assert.Equal(t, "/opt/mibs/extra", cfg.Loader.ResourceDir)
	assert.False(t, cfg.Loader.AllowCycles)
	assert.Equal(t, 3, cfg.Grammar.MaxLookAhead)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Loader:  LoaderConfig{},
		Grammar: GrammarConfig{MaxLookAhead: 0},
		Watch:   WatchConfig{Enabled: true, DebounceMs: -1},
	}
	log := cfg.Validate()
	assert.False(t, log.Empty())
	assert.Equal(t, 3, log.Len())
}

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	log := Default().Validate()
	assert.True(t, log.Empty())
}
