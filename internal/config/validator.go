package config

import (
	"fmt"

	mibberrors "github.com/standardbeagle/mibble-go/internal/errors"
)

// Validate checks cfg for problems, collecting every one found rather than
// returning on the first, per the teacher's internal/config/validator.go
// shape (ValidateAndSetDefaults accumulates per-section errors). Callers
// that want a single error can call Throw() on the result.
func (c *Config) Validate() *mibberrors.Log {
	log := &mibberrors.Log{}

	if len(c.Loader.SearchDirs) == 0 && c.Loader.ResourceDir == "" {
		log.Add(fmt.Errorf("loader: at least one of search_dirs or resource_dir must be set"))
	}
	for _, d := range c.Loader.SearchDirs {
		if d == "" {
			log.Add(fmt.Errorf("loader: search_dirs entries must not be empty"))
		}
	}

	if c.Grammar.MaxLookAhead < 1 {
		log.Add(fmt.Errorf("grammar: max_lookahead must be at least 1, got %d", c.Grammar.MaxLookAhead))
	}

	if c.Watch.Enabled && c.Watch.DebounceMs < 0 {
		log.Add(fmt.Errorf("watch: debounce_ms must not be negative, got %d", c.Watch.DebounceMs))
	}

	return log
}
