// Package locate implements the ResourceLocator spec.md names as an
// out-of-scope external collaborator: given a bare module name
// ("RFC1213-MIB"), find the source file that defines it. Grounded on the
// teacher's doublestar-based glob matching in internal/indexing/watcher.go
// and the absolute/relative path handling of pkg/pathutil.
package locate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// globPatterns are the file extensions a MIB module is conventionally
// stored under.
var globPatterns = []string{"**/*.mib", "**/*.txt", "**/*.my"}

// Locator is internal/mib.ResourceLocator's default, filesystem-backed
// implementation.
type Locator struct {
	searchDirs  []string
	resourceDir string
	bundled     map[string]string
}

// New builds a Locator over searchDirs (consulted concurrently, in the
// given priority order) and an optional resourceDir consulted afterward.
func New(searchDirs []string, resourceDir string) *Locator {
	return &Locator{
		searchDirs:  searchDirs,
		resourceDir: resourceDir,
		bundled:     bundledResources,
	}
}

// Locate resolves name to its source text, per spec.md's resolution
// order: (1) name itself, if it names an existing file on disk; (2) each
// configured search directory, globbed concurrently (SPEC_FULL.md
// domain-stack item 6); (3) resourceDir; (4) the bundled well-known-MIB
// table.
func (l *Locator) Locate(name string) (io.ReadCloser, string, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		f, err := os.Open(name)
		if err != nil {
			return nil, "", fmt.Errorf("opening %s: %w", name, err)
		}
		return f, name, nil
	}

	if path, ok := l.findInSearchDirs(name); ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("opening %s: %w", path, err)
		}
		return f, path, nil
	}

	if l.resourceDir != "" {
		if path, ok := findByExactName(l.resourceDir, name); ok {
			f, err := os.Open(path)
			if err != nil {
				return nil, "", fmt.Errorf("opening %s: %w", path, err)
			}
			return f, path, nil
		}
	}

	if src, ok := l.bundled[name]; ok {
		return io.NopCloser(strings.NewReader(src)), "bundled:" + name, nil
	}

	return nil, "", fmt.Errorf("module not found: %s", name)
}

// findInSearchDirs fans the search directories out with errgroup (each
// directory's glob is independent I/O), then picks the first match in the
// caller's own priority order rather than whichever goroutine finishes
// first, so the result stays deterministic.
func (l *Locator) findInSearchDirs(name string) (string, bool) {
	found := make([]string, len(l.searchDirs))

	var g errgroup.Group
	for i, dir := range l.searchDirs {
		i, dir := i, dir
		g.Go(func() error {
			if path, ok := findByExactName(dir, name); ok {
				found[i] = path
			}
			return nil
		})
	}
	_ = g.Wait() // findByExactName never returns an error; nothing to propagate

	for _, path := range found {
		if path != "" {
			return path, true
		}
	}
	return "", false
}

// findByExactName globs dir for the configured MIB extensions and returns
// the first file whose base name (extension stripped) matches name,
// case-insensitively, which is how real MIB repositories name files
// (rfc1213-mib.txt for module RFC1213-MIB).
func findByExactName(dir, name string) (string, bool) {
	fsys := os.DirFS(dir)
	for _, pattern := range globPatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			base := filepath.Base(m)
			base = strings.TrimSuffix(base, filepath.Ext(base))
			if strings.EqualFold(base, name) {
				return filepath.Join(dir, m), true
			}
		}
	}
	return "", false
}
