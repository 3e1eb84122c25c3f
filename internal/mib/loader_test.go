package mib

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLocator map[string]string

func (m memLocator) Locate(name string) (io.ReadCloser, string, error) {
	src, ok := m[name]
	if !ok {
		return nil, "", fmt.Errorf("resource not found: %s", name)
	}
	return io.NopCloser(strings.NewReader(src)), name + ".mib", nil
}

func newTestLoader(files memLocator) *Loader {
	g, toks := NewAsnGrammar()
	return NewLoader(files, g, toks, 2)
}

const rfc1155smi = `RFC1155-SMI DEFINITIONS ::= BEGIN

internet OBJECT IDENTIFIER ::= { iso 3 6 1 }
mgmt OBJECT IDENTIFIER ::= { internet 2 }
mib-2 OBJECT IDENTIFIER ::= { mgmt 1 }

END
`

const rfc1213mib = `RFC1213-MIB DEFINITIONS ::= BEGIN

IMPORTS
    mib-2 FROM RFC1155-SMI;

system OBJECT IDENTIFIER ::= { mib-2 1 }

sysDescr OBJECT-TYPE
    SYNTAX OCTET STRING
    ACCESS read-only
    STATUS mandatory
    DESCRIPTION "A textual description of the entity."
    ::= { system 1 }

sysUpTime OBJECT-TYPE
    SYNTAX INTEGER
    ACCESS read-only
    STATUS mandatory
    ::= { system 3 }

END
`

// S4 from spec.md §8: loading a module pulls in its imports and resolves
// every value symbol's OID against the shared forest.
func TestLoader_S4_LoadAndLink(t *testing.T) {
	l := newTestLoader(memLocator{
		"RFC1155-SMI":  rfc1155smi,
		"RFC1213-MIB":  rfc1213mib,
	})

	m, err := l.Load("RFC1213-MIB")
	require.NoError(t, err)

	sysDescr, ok := m.GetSymbol("sysDescr")
	require.True(t, ok)
	require.NotNil(t, sysDescr.Value)
	assert.Equal(t, "1.3.6.1.2.1.1.1", l.arena.DottedString(sysDescr.Value.OID))
	assert.Equal(t, "A textual description of the entity.", sysDescr.Comment)

	sysUpTime, ok := m.GetSymbol("sysUpTime")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.2.1.1.3", l.arena.DottedString(sysUpTime.Value.OID))

	smi, ok := l.Get("RFC1155-SMI")
	require.True(t, ok)
	internet, ok := smi.GetSymbol("internet")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1", l.arena.DottedString(internet.Value.OID))
}

// S5 from spec.md §8: looking up an instance OID one level below a
// registered symbol finds that symbol via longest-prefix match.
func TestLoader_S5_LongestPrefixMatch(t *testing.T) {
	l := newTestLoader(memLocator{
		"RFC1155-SMI": rfc1155smi,
		"RFC1213-MIB": rfc1213mib,
	})
	m, err := l.Load("RFC1213-MIB")
	require.NoError(t, err)

	sym, ok := m.GetSymbolByOid("1.3.6.1.2.1.1.1.0")
	require.True(t, ok)
	assert.Equal(t, "sysDescr", sym.Name)
}

const mibA = `MIB-A DEFINITIONS ::= BEGIN

IMPORTS
    foo FROM MIB-B;

aObj OBJECT IDENTIFIER ::= { iso 1 }

END
`

const mibB = `MIB-B DEFINITIONS ::= BEGIN

IMPORTS
    aObj FROM MIB-A;

foo OBJECT IDENTIFIER ::= { iso 2 }

END
`

// S6 from spec.md §8: a cyclic import between two modules must not hang
// or crash the loader, and both modules still resolve fully since each
// is entirely body-parsed (registering its own symbols) before the
// loader follows either one's imports.
func TestLoader_S6_CyclicImport(t *testing.T) {
	l := newTestLoader(memLocator{"MIB-A": mibA, "MIB-B": mibB})

	m, err := l.Load("MIB-A")
	require.NoError(t, err)

	aObj, ok := m.GetSymbol("aObj")
	require.True(t, ok)
	assert.Equal(t, "1.1", l.arena.DottedString(aObj.Value.OID))

	b, ok := l.Get("MIB-B")
	require.True(t, ok)
	foo, ok := b.GetSymbol("foo")
	require.True(t, ok)
	assert.Equal(t, "1.2", l.arena.DottedString(foo.Value.OID))
}

// Property 6 from spec.md §8: loading the same module twice returns the
// identical Mib rather than re-parsing.
func TestLoader_Idempotent(t *testing.T) {
	l := newTestLoader(memLocator{"RFC1155-SMI": rfc1155smi, "RFC1213-MIB": rfc1213mib})

	first, err := l.Load("RFC1213-MIB")
	require.NoError(t, err)
	second, err := l.Load("RFC1213-MIB")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

// mutableLocator lets a test rewrite a module's source between two Locate
// calls, to exercise Reload's hash-comparison short-circuit.
type mutableLocator struct {
	mu    sync.Mutex
	files map[string]string
}

func (m *mutableLocator) Locate(name string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.files[name]
	if !ok {
		return nil, "", fmt.Errorf("resource not found: %s", name)
	}
	return io.NopCloser(strings.NewReader(src)), name + ".mib", nil
}

func (m *mutableLocator) set(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = content
}

func TestLoader_Reload_SkipsReparseWhenContentUnchanged(t *testing.T) {
	loc := &mutableLocator{files: map[string]string{"RFC1155-SMI": rfc1155smi}}
	g, toks := NewAsnGrammar()
	l := NewLoader(loc, g, toks, 2)

	first, err := l.Load("RFC1155-SMI")
	require.NoError(t, err)

	reloaded, reparsed, err := l.Reload("RFC1155-SMI")
	require.NoError(t, err)
	assert.False(t, reparsed)
	assert.Same(t, first, reloaded)
}

func TestLoader_Reload_ReparsesOnContentChange(t *testing.T) {
	loc := &mutableLocator{files: map[string]string{"RFC1155-SMI": rfc1155smi}}
	g, toks := NewAsnGrammar()
	l := NewLoader(loc, g, toks, 2)

	first, err := l.Load("RFC1155-SMI")
	require.NoError(t, err)

	changed := `RFC1155-SMI DEFINITIONS ::= BEGIN

internet OBJECT IDENTIFIER ::= { iso 3 6 1 }
mgmt     OBJECT IDENTIFIER ::= { internet 2 }
mib-2    OBJECT IDENTIFIER ::= { mgmt 1 }
private  OBJECT IDENTIFIER ::= { internet 4 }

END
`
	loc.set("RFC1155-SMI", changed)

	reloaded, reparsed, err := l.Reload("RFC1155-SMI")
	require.NoError(t, err)
	assert.True(t, reparsed)
	assert.NotSame(t, first, reloaded)
	_, ok := reloaded.GetSymbol("private")
	assert.True(t, ok)
}

func TestLoader_UnresolvedImport_ReportsSuggestion(t *testing.T) {
	const broken = `BROKEN-MIB DEFINITIONS ::= BEGIN

IMPORTS
    mibb-2 FROM RFC1155-SMI;

system OBJECT IDENTIFIER ::= { mibb-2 1 }

END
`
	l := newTestLoader(memLocator{"RFC1155-SMI": rfc1155smi, "BROKEN-MIB": broken})
	_, err := l.Load("BROKEN-MIB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mib-2")
}

// Validate's third pass must reject a SYNTAX clause whose declared type
// doesn't flatten to anything the loader knows about, rather than
// silently accepting it the way building byValueString alone would.
func TestLoader_Validate_RejectsIncompatibleSyntax(t *testing.T) {
	const broken = `BROKEN-SYNTAX-MIB DEFINITIONS ::= BEGIN

IMPORTS
    mib-2 FROM RFC1155-SMI;

system OBJECT IDENTIFIER ::= { mib-2 1 }

sysDescr OBJECT-TYPE
    SYNTAX OctetStrnig
    ACCESS read-only
    STATUS mandatory
    ::= { system 1 }

END
`
	l := newTestLoader(memLocator{"RFC1155-SMI": rfc1155smi, "BROKEN-SYNTAX-MIB": broken})
	_, err := l.Load("BROKEN-SYNTAX-MIB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OctetStrnig")
}

// A SYNTAX clause naming a locally defined TypeSymbol must flatten
// through that alias to its primitive base rather than being rejected.
func TestLoader_Validate_AcceptsSyntaxThroughLocalTypeAlias(t *testing.T) {
	const mibWithAlias = `ALIAS-MIB DEFINITIONS ::= BEGIN

IMPORTS
    mib-2 FROM RFC1155-SMI;

DisplayString ::= OCTET STRING

system OBJECT IDENTIFIER ::= { mib-2 1 }

sysDescr OBJECT-TYPE
    SYNTAX DisplayString
    ACCESS read-only
    STATUS mandatory
    ::= { system 1 }

END
`
	l := newTestLoader(memLocator{"RFC1155-SMI": rfc1155smi, "ALIAS-MIB": mibWithAlias})
	m, err := l.Load("ALIAS-MIB")
	require.NoError(t, err)
	sysDescr, ok := m.GetSymbol("sysDescr")
	require.True(t, ok)
	assert.Equal(t, "DisplayString", sysDescr.Type.SyntaxRef)
}

// SmiVersion starts at 1 and is bumped to 2 the first time a module uses
// an SMIv2-only macro keyword (spec.md's Mib data model note).
func TestLoader_SmiVersion(t *testing.T) {
	l := newTestLoader(memLocator{"RFC1155-SMI": rfc1155smi})
	m, err := l.Load("RFC1155-SMI")
	require.NoError(t, err)
	assert.Equal(t, 1, m.SmiVersion, "no SMIv2 macro keywords appear in RFC1155-SMI")

	const withModuleIdentity = `MODULE-IDENTITY-MIB DEFINITIONS ::= BEGIN

mibModule MODULE-IDENTITY
    DESCRIPTION "module identity"
    ::= { iso 1 }

END
`
	l2 := newTestLoader(memLocator{"MODULE-IDENTITY-MIB": withModuleIdentity})
	m2, err := l2.Load("MODULE-IDENTITY-MIB")
	require.NoError(t, err)
	assert.Equal(t, 2, m2.SmiVersion)
}
