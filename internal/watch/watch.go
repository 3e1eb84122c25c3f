// Package watch implements SPEC_FULL.md's live MIB directory watching: a
// debounced fsnotify loop that reloads changed modules through a
// mib.Loader. Grounded on the teacher's internal/indexing FileWatcher and
// its eventDebouncer.
package watch

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/mibble-go/internal/mib"
)

// watchedExts mirrors internal/locate's glob patterns: the file
// extensions a MIB module is conventionally stored under.
var watchedExts = map[string]bool{".mib": true, ".txt": true, ".my": true}

// Watcher watches a set of directories and reloads, via loader, any
// module whose source file changes, debounced so a burst of writes from
// an editor's save collapses into one reparse.
type Watcher struct {
	fsw      *fsnotify.Watcher
	loader   *mib.Loader
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// OnReload, if set, is called after each debounced reload attempt
	// instead of the default log.Printf-on-error behavior.
	OnReload func(module string, reparsed bool, err error)
}

// New builds a Watcher over loader. Call Add to register directories and
// Start to begin processing events.
func New(loader *mib.Loader, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		fsw:      fsw,
		loader:   loader,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Add registers directories with the underlying fsnotify watcher.
func (w *Watcher) Add(dirs ...string) error {
	for _, d := range dirs {
		if err := w.fsw.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// Start launches the event-processing goroutine. Close stops it.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isMibFile(ev.Name) {
				continue
			}
			w.schedule(moduleName(ev.Name))
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// schedule records name as needing a reload and (re)arms the debounce
// timer, the same latest-event-wins design as the teacher's eventDebouncer.
func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	names := make([]string, 0, len(w.pending))
	for n := range w.pending {
		names = append(names, n)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	for _, n := range names {
		_, reparsed, err := w.loader.Reload(n)
		switch {
		case w.OnReload != nil:
			w.OnReload(n, reparsed, err)
		case err != nil:
			log.Printf("mibble: reload %s: %v", n, err)
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func isMibFile(path string) bool {
	return watchedExts[strings.ToLower(filepath.Ext(path))]
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
