package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/mibble-go/internal/locate"
	"github.com/standardbeagle/mibble-go/internal/mib"
)

// TestMain ensures the watcher's goroutine (and its fsnotify backend) never
// leaks past a test that forgets to Close it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "WATCH-MIB.mib")
	require.NoError(t, os.WriteFile(path,
		[]byte("WATCH-MIB DEFINITIONS ::= BEGIN\nfoo OBJECT IDENTIFIER ::= { iso 1 }\nEND\n"), 0o644))

	loc := locate.New([]string{dir}, "")
	g, toks := mib.NewAsnGrammar()
	loader := mib.NewLoader(loc, g, toks, 2)

	_, err := loader.Load("WATCH-MIB")
	require.NoError(t, err)

	w, err := New(loader, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	events := make(chan error, 4)
	w.OnReload = func(name string, reparsed bool, err error) {
		events <- err
	}
	require.NoError(t, w.Add(dir))
	w.Start()

	require.NoError(t, os.WriteFile(path,
		[]byte("WATCH-MIB DEFINITIONS ::= BEGIN\nfoo OBJECT IDENTIFIER ::= { iso 2 }\nEND\n"), 0o644))

	select {
	case err := <-events:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload event")
	}

	reloaded, ok := loader.Get("WATCH-MIB")
	require.True(t, ok)
	foo, ok := reloaded.GetSymbol("foo")
	require.True(t, ok)
	require.Equal(t, "1.2", loader.Arena().DottedString(foo.Value.OID))
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	loc := locate.New([]string{dir}, "")
	g, toks := mib.NewAsnGrammar()
	loader := mib.NewLoader(loc, g, toks, 2)

	w, err := New(loader, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	called := make(chan struct{}, 1)
	w.OnReload = func(name string, reparsed bool, err error) { called <- struct{}{} }
	require.NoError(t, w.Add(dir))
	w.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("hello"), 0o644))

	select {
	case <-called:
		t.Fatal("watcher reacted to a non-MIB file")
	case <-time.After(200 * time.Millisecond):
	}
}
