package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mibble-go/internal/mib"
)

type memLocator map[string]string

func (m memLocator) Locate(name string) (io.ReadCloser, string, error) {
	src, ok := m[name]
	if !ok {
		return nil, "", fmt.Errorf("resource not found: %s", name)
	}
	return io.NopCloser(strings.NewReader(src)), name + ".mib", nil
}

const rfc1213 = `RFC1213-MIB DEFINITIONS ::= BEGIN

system OBJECT IDENTIFIER ::= { iso 1 }

sysDescr OBJECT-TYPE
    SYNTAX OCTET STRING
    ACCESS read-only
    STATUS mandatory
    DESCRIPTION "A textual description of the entity."
    ::= { system 1 }

sysObjectID OBJECT-TYPE
    SYNTAX OBJECT IDENTIFIER
    ACCESS read-only
    STATUS mandatory
    ::= { system 2 }

END
`

func call(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), params map[string]any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	res, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: raw},
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	if res.IsError {
		t.Fatalf("tool returned an error result: %s", text.Text)
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	g, toks := mib.NewAsnGrammar()
	loader := mib.NewLoader(memLocator{"RFC1213-MIB": rfc1213}, g, toks, 2)
	return New(loader, "mibble-test", "0.0.0")
}

func TestServer_LoadMib(t *testing.T) {
	s := newTestServer(t)
	out := call(t, s.handleLoadMib, map[string]any{"name": "RFC1213-MIB"})
	require.Equal(t, "RFC1213-MIB", out["name"])
	require.EqualValues(t, 3, out["symbol_count"])
}

func TestServer_ResolveSymbol_ByName(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleLoadMib, map[string]any{"name": "RFC1213-MIB"})

	out := call(t, s.handleResolveSymbol, map[string]any{"mib": "RFC1213-MIB", "name": "sysDescr"})
	require.Equal(t, "1.1.1", out["oid"])
	require.Equal(t, "A textual description of the entity.", out["description"])
}

func TestServer_ResolveSymbol_ByOid_LongestPrefix(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleLoadMib, map[string]any{"name": "RFC1213-MIB"})

	out := call(t, s.handleResolveSymbol, map[string]any{"mib": "RFC1213-MIB", "oid": "1.1.1.0"})
	require.Equal(t, "sysDescr", out["name"])
}

func TestServer_ResolveSymbol_UnloadedMib(t *testing.T) {
	s := newTestServer(t)
	raw, _ := json.Marshal(map[string]any{"mib": "NO-SUCH-MIB", "name": "x"})
	res, err := s.handleResolveSymbol(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: raw},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestServer_GetOidTree(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleLoadMib, map[string]any{"name": "RFC1213-MIB"})

	out := call(t, s.handleGetOidTree, map[string]any{"mib": "RFC1213-MIB", "name": "system"})
	require.Equal(t, "1.1", out["oid"])
	children, ok := out["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 2)
}
