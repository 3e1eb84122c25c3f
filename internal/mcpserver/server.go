// Package mcpserver exposes the mib.Loader over the Model Context
// Protocol, per SPEC_FULL.md domain-stack item 9: an agent talking to
// this process over stdio can load a module, resolve a symbol by name
// or dotted OID, and walk the shared OID forest, without shelling out to
// the mibble CLI. Grounded on the teacher's internal/mcp server: the same
// mcp.NewServer/AddTool wiring and createJSONResponse/createErrorResponse
// response shape, pared down to three tools instead of its dozens.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/mibble-go/internal/mib"
)

// Server adapts a mib.Loader to the three MCP tools SPEC_FULL.md names:
// load_mib, resolve_symbol, and get_oid_tree.
type Server struct {
	loader *mib.Loader
	server *mcp.Server
}

// New builds a Server over loader and registers its tools. Call Run to
// serve them over stdio.
func New(loader *mib.Loader, name, version string) *Server {
	s := &Server{
		loader: loader,
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Run serves the registered tools over stdio until ctx is canceled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "load_mib",
		Description: "Load (or return the already-loaded) MIB module by name, resolving its imports and object identifiers against the shared OID forest.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name": {
					Type:        "string",
					Description: "Module name as it appears in its DEFINITIONS line, e.g. \"RFC1213-MIB\"",
				},
			},
			Required: []string{"name"},
		},
	}, s.handleLoadMib)

	s.server.AddTool(&mcp.Tool{
		Name:        "resolve_symbol",
		Description: "Resolve a symbol within an already-loaded MIB, either by name or by a dotted-decimal OID (longest-prefix match).",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"mib": {
					Type:        "string",
					Description: "Name of a module previously loaded via load_mib",
				},
				"name": {
					Type:        "string",
					Description: "Symbol name to resolve (mutually exclusive with oid)",
				},
				"oid": {
					Type:        "string",
					Description: "Dotted-decimal OID to resolve, e.g. \"1.3.6.1.2.1.1.1.0\" (mutually exclusive with name)",
				},
			},
			Required: []string{"mib"},
		},
	}, s.handleResolveSymbol)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_oid_tree",
		Description: "Return the children of an OID node in the shared forest, identified by a symbol in a loaded MIB, for exploring the tree around a known point.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"mib": {
					Type:        "string",
					Description: "Name of a module previously loaded via load_mib",
				},
				"name": {
					Type:        "string",
					Description: "Symbol whose OID node is the starting point",
				},
			},
			Required: []string{"mib", "name"},
		},
	}, s.handleGetOidTree)
}

type loadMibParams struct {
	Name string `json:"name"`
}

func (s *Server) handleLoadMib(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p loadMibParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("load_mib", fmt.Errorf("invalid parameters: %w", err)), nil
	}
	if p.Name == "" {
		return errorResult("load_mib", fmt.Errorf("name is required")), nil
	}

	m, err := s.loader.Load(p.Name)
	if err != nil {
		return errorResult("load_mib", err), nil
	}

	symbols := make([]string, len(m.Symbols))
	for i, sym := range m.Symbols {
		symbols[i] = sym.Name
	}
	return jsonResult(map[string]any{
		"name":         m.Name,
		"file":         m.File,
		"symbol_count": len(m.Symbols),
		"symbols":      symbols,
	})
}

type resolveSymbolParams struct {
	Mib  string `json:"mib"`
	Name string `json:"name,omitempty"`
	Oid  string `json:"oid,omitempty"`
}

func (s *Server) handleResolveSymbol(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p resolveSymbolParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("resolve_symbol", fmt.Errorf("invalid parameters: %w", err)), nil
	}
	m, ok := s.loader.Get(p.Mib)
	if !ok {
		return errorResult("resolve_symbol", fmt.Errorf("mib %q is not loaded; call load_mib first", p.Mib)), nil
	}

	var sym *mib.Symbol
	switch {
	case p.Name != "":
		sym, ok = m.GetSymbol(p.Name)
	case p.Oid != "":
		sym, ok = m.GetSymbolByOid(p.Oid)
	default:
		return errorResult("resolve_symbol", fmt.Errorf("one of name or oid is required")), nil
	}
	if !ok {
		return errorResult("resolve_symbol", fmt.Errorf("no symbol found")), nil
	}

	return jsonResult(symbolSummary(s.loader, sym))
}

type getOidTreeParams struct {
	Mib  string `json:"mib"`
	Name string `json:"name"`
}

func (s *Server) handleGetOidTree(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p getOidTreeParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("get_oid_tree", fmt.Errorf("invalid parameters: %w", err)), nil
	}
	m, ok := s.loader.Get(p.Mib)
	if !ok {
		return errorResult("get_oid_tree", fmt.Errorf("mib %q is not loaded; call load_mib first", p.Mib)), nil
	}
	sym, ok := m.GetSymbol(p.Name)
	if !ok || sym.Value == nil || sym.Value.Kind != mib.ValueOID {
		return errorResult("get_oid_tree", fmt.Errorf("%q is not a known OID-valued symbol in %q", p.Name, p.Mib)), nil
	}

	arena := s.loader.Arena()
	node := arena.Node(sym.Value.OID)
	if node == nil {
		return errorResult("get_oid_tree", fmt.Errorf("oid node for %q has been released", p.Name)), nil
	}

	children := make([]map[string]any, 0, len(node.Children))
	for _, cid := range node.Children {
		cn := arena.Node(cid)
		if cn == nil {
			continue
		}
		children = append(children, map[string]any{
			"name":    cn.Name,
			"sub_id":  cn.SubID,
			"oid":     arena.DottedString(cid),
			"symbol":  cn.SymbolName,
			"via_mib": cn.SymbolMib,
		})
	}

	return jsonResult(map[string]any{
		"name":     node.Name,
		"oid":      arena.DottedString(sym.Value.OID),
		"children": children,
	})
}

func symbolSummary(loader *mib.Loader, sym *mib.Symbol) map[string]any {
	out := map[string]any{
		"name": sym.Name,
		"mib":  sym.Mib.Name,
	}
	if sym.Comment != "" {
		out["description"] = sym.Comment
	}
	if sym.Type != nil {
		out["type"] = sym.Type.BaseRef
	}
	if sym.Value != nil {
		switch sym.Value.Kind {
		case mib.ValueOID:
			out["oid"] = loader.Arena().DottedString(sym.Value.OID)
		case mib.ValueInteger:
			out["value"] = sym.Value.Int
		case mib.ValueString:
			out["value"] = sym.Value.Str
		}
	}
	return out
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

// errorResult reports a tool-level failure inside the result body with
// IsError set, per the MCP spec: a protocol-level error would hide the
// message from the model instead of letting it self-correct.
func errorResult(operation string, err error) *mcp.CallToolResult {
	content, _ := json.Marshal(map[string]any{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
		IsError: true,
	}
}
