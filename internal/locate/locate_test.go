package locate

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLocate_ExplicitFilenameTakesPriority(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "on-disk.mib", "ON-DISK DEFINITIONS ::= BEGIN END\n")
	explicit := filepath.Join(dir, "on-disk.mib")

	other := t.TempDir()
	writeFile(t, other, "ON-DISK.mib", "WRONG-ONE DEFINITIONS ::= BEGIN END\n")

	l := New([]string{other}, "")
	rc, resolved, err := l.Locate(explicit)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ON-DISK DEFINITIONS")
	assert.Equal(t, explicit, resolved)
}

func TestLocate_FindsFileInSearchDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "MY-MIB.mib", "MY-MIB DEFINITIONS ::= BEGIN END\n")

	l := New([]string{dir}, "")
	rc, resolved, err := l.Locate("MY-MIB")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MY-MIB DEFINITIONS")
	assert.Equal(t, filepath.Join(dir, "MY-MIB.mib"), resolved)
}

func TestLocate_IsCaseInsensitiveOnBaseName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "my-mib.txt", "MY-MIB DEFINITIONS ::= BEGIN END\n")

	l := New([]string{dir}, "")
	_, _, err := l.Locate("MY-MIB")
	require.NoError(t, err)
}

func TestLocate_SearchDirsTakePriorityOverBundled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "RFC1155-SMI.mib", "RFC1155-SMI DEFINITIONS ::= BEGIN END\n")

	l := New([]string{dir}, "")
	rc, resolved, err := l.Locate("RFC1155-SMI")
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, filepath.Join(dir, "RFC1155-SMI.mib"), resolved)
}

func TestLocate_FallsBackToBundled(t *testing.T) {
	l := New([]string{t.TempDir()}, "")
	rc, resolved, err := l.Locate("RFC1213-MIB")
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "bundled:RFC1213-MIB", resolved)
}

func TestLocate_NotFound(t *testing.T) {
	l := New([]string{t.TempDir()}, "")
	_, _, err := l.Locate("NO-SUCH-MIB")
	assert.Error(t, err)
}

func TestLocate_ResourceDirFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "EXTRA-MIB.mib", "EXTRA-MIB DEFINITIONS ::= BEGIN END\n")

	l := New([]string{t.TempDir()}, dir)
	_, resolved, err := l.Locate("EXTRA-MIB")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "EXTRA-MIB.mib"), resolved)
}
