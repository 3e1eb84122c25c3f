package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads dir/.mibble.kdl, returning (nil, nil) when the file is
// absent so callers can fall back to Default(). Grounded on the teacher's
// internal/config/kdl_config.go LoadKDL/parseKDL split.
func LoadKDL(dir string) (*Config, error) {
	path := filepath.Join(dir, ".mibble.kdl")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parseKDL(content)
}

func parseKDL(content []byte) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parsing .mibble.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "loader":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "search_dirs":
					if dirs := collectStringArgs(cn); len(dirs) > 0 {
						cfg.Loader.SearchDirs = dirs
					}
				case "resource_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Loader.ResourceDir = s
					}
				case "allow_cycles":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Loader.AllowCycles = b
					}
				}
			}
		case "grammar":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "table_file":
					if s, ok := firstStringArg(cn); ok {
						cfg.Grammar.TableFile = s
					}
				case "max_lookahead":
					if v, ok := firstIntArg(cn); ok {
						cfg.Grammar.MaxLookAhead = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads string values either as a node's inline
// arguments (`search_dirs "a" "b"`) or, if there are none, as its
// children's node names (block form: `search_dirs { "a"; "b" }`).
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
