// Package config loads mibble-go's runtime configuration: where to look for
// MIB source files, which grammar table to parse them with, and whether to
// watch those directories for changes. Grounded on the teacher's
// internal/config/config.go: a plain struct tree with documented defaults,
// loaded from an on-disk file when present and otherwise left at those
// defaults.
package config

import "time"

// Config is the root of mibble-go's configuration tree.
type Config struct {
	Loader  LoaderConfig
	Grammar GrammarConfig
	Watch   WatchConfig
}

// LoaderConfig configures internal/locate and internal/mib.Loader.
type LoaderConfig struct {
	// SearchDirs are the directories internal/locate globs for
	// *.mib/*.txt/*.my files, in priority order.
	SearchDirs []string
	// ResourceDir, if set, is consulted after SearchDirs for a module name
	// that didn't match a glob, the way the teacher falls back to a
	// bundled resource set for well-known files.
	ResourceDir string
	// AllowCycles is read from the config file and validated, but no
	// component consults it: MibLoader tolerates cyclic imports (the S6
	// scenario of spec.md §8) whatever its value, and reports no warning
	// for them.
	AllowCycles bool
}

// GrammarConfig selects and bounds the ASN.1-subset grammar.
type GrammarConfig struct {
	// TableFile, if set, overrides the embedded grammar with a TOML table
	// loaded via LoadGrammarTable (SPEC_FULL.md "grammar tables as
	// configuration").
	TableFile string
	// MaxLookAhead bounds LookAheadAnalyzer's k, per spec.md §4.4.
	MaxLookAhead int
}

// WatchConfig configures internal/watch.
type WatchConfig struct {
	Enabled    bool
	DebounceMs int
}

// DebounceMsDuration converts DebounceMs to a time.Duration for
// internal/watch.New.
func (w WatchConfig) DebounceMsDuration() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// Default returns mibble-go's built-in configuration: the current
// directory as the only search path, the embedded grammar, watching off.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			SearchDirs:  []string{"."},
			AllowCycles: true,
		},
		Grammar: GrammarConfig{
			MaxLookAhead: 2,
		},
		Watch: WatchConfig{
			Enabled:    false,
			DebounceMs: 300,
		},
	}
}

// Load reads ".mibble.kdl" from dir, falling back to Default() when the
// file doesn't exist, the way the teacher's config.Load falls back to a
// hard-coded default rather than erroring on a missing config file.
func Load(dir string) (*Config, error) {
	cfg, err := LoadKDL(dir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
	}
	return cfg, nil
}
