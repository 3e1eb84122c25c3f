// Command mibble is the CLI front-end over internal/mib: load MIB
// modules, resolve symbols, dump OID subtrees, watch a directory for
// changes, or hand the loader to an MCP server over stdio. Grounded on
// the teacher's cmd/lci command structure: one urfave/cli.App, one
// subcommand per operation, output always printed as indented JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/mibble-go/internal/config"
	"github.com/standardbeagle/mibble-go/internal/locate"
	"github.com/standardbeagle/mibble-go/internal/mcpserver"
	"github.com/standardbeagle/mibble-go/internal/mib"
	"github.com/standardbeagle/mibble-go/internal/watch"
)

const appVersion = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "mibble",
		Usage:   "Load, query, and watch ASN.1/SMI MIB modules",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Usage: "Directory to search for a .mibble.kdl config file",
				Value: ".",
			},
		},
		Commands: []*cli.Command{
			loadCommand,
			resolveCommand,
			treeCommand,
			watchCommand,
			mcpCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mibble:", err)
		os.Exit(1)
	}
}

// newLoader builds a Loader from the config discovered under --config-dir,
// shared by every subcommand that needs one.
func newLoader(c *cli.Context) (*mib.Loader, error) {
	cfg, err := config.Load(c.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if probs := cfg.Validate(); probs.Len() > 0 {
		return nil, fmt.Errorf("invalid config: %s", probs.Error())
	}

	loc := locate.New(cfg.Loader.SearchDirs, cfg.Loader.ResourceDir)

	var g, toks = mib.NewAsnGrammar()
	if cfg.Grammar.TableFile != "" {
		tg, ttoks, err := config.LoadGrammarTable(cfg.Grammar.TableFile)
		if err != nil {
			return nil, fmt.Errorf("load grammar table %s: %w", cfg.Grammar.TableFile, err)
		}
		g, toks = tg, ttoks
	}

	maxK := cfg.Grammar.MaxLookAhead
	if maxK < 1 {
		maxK = 2
	}
	return mib.NewLoader(loc, g, toks, maxK), nil
}

var loadCommand = &cli.Command{
	Name:      "load",
	Usage:     "Load a MIB module and print its symbol count",
	ArgsUsage: "<module-name>",
	Flags:     []cli.Flag{jsonFlag},
	Action: func(c *cli.Context) error {
		name := c.Args().First()
		if name == "" {
			return fmt.Errorf("usage: mibble load <module-name>")
		}
		loader, err := newLoader(c)
		if err != nil {
			return err
		}
		m, err := loader.Load(name)
		if err != nil {
			return err
		}
		return printJSON(c, map[string]any{
			"name":         m.Name,
			"file":         m.File,
			"symbol_count": len(m.Symbols),
		})
	},
}

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "Load a module and resolve one of its symbols by name or OID",
	ArgsUsage: "<module-name> <symbol-name-or-oid>",
	Flags: []cli.Flag{
		jsonFlag,
		&cli.BoolFlag{Name: "oid", Usage: "treat the second argument as a dotted OID instead of a symbol name"},
	},
	Action: func(c *cli.Context) error {
		modName := c.Args().Get(0)
		target := c.Args().Get(1)
		if modName == "" || target == "" {
			return fmt.Errorf("usage: mibble resolve <module-name> <symbol-name-or-oid>")
		}
		loader, err := newLoader(c)
		if err != nil {
			return err
		}
		m, err := loader.Load(modName)
		if err != nil {
			return err
		}
		var sym *mib.Symbol
		var ok bool
		if c.Bool("oid") {
			sym, ok = m.GetSymbolByOid(target)
		} else {
			sym, ok = m.GetSymbol(target)
		}
		if !ok {
			return fmt.Errorf("%s: no such symbol in %s", target, modName)
		}
		out := map[string]any{"name": sym.Name, "mib": sym.Mib.Name}
		if sym.Comment != "" {
			out["description"] = sym.Comment
		}
		if sym.Value != nil && sym.Value.Kind == mib.ValueOID {
			out["oid"] = loader.Arena().DottedString(sym.Value.OID)
		}
		return printJSON(c, out)
	},
}

var treeCommand = &cli.Command{
	Name:      "tree",
	Usage:     "List the children of an OID-valued symbol",
	ArgsUsage: "<module-name> <symbol-name>",
	Flags:     []cli.Flag{jsonFlag},
	Action: func(c *cli.Context) error {
		modName := c.Args().Get(0)
		name := c.Args().Get(1)
		if modName == "" || name == "" {
			return fmt.Errorf("usage: mibble tree <module-name> <symbol-name>")
		}
		loader, err := newLoader(c)
		if err != nil {
			return err
		}
		m, err := loader.Load(modName)
		if err != nil {
			return err
		}
		sym, ok := m.GetSymbol(name)
		if !ok || sym.Value == nil || sym.Value.Kind != mib.ValueOID {
			return fmt.Errorf("%s: not a known OID-valued symbol in %s", name, modName)
		}
		arena := loader.Arena()
		node := arena.Node(sym.Value.OID)
		if node == nil {
			return fmt.Errorf("%s: oid node has been released", name)
		}
		children := make([]map[string]any, 0, len(node.Children))
		for _, cid := range node.Children {
			cn := arena.Node(cid)
			if cn == nil {
				continue
			}
			children = append(children, map[string]any{
				"name":   cn.Name,
				"sub_id": cn.SubID,
				"oid":    arena.DottedString(cid),
				"symbol": cn.SymbolName,
			})
		}
		return printJSON(c, map[string]any{
			"name":     node.Name,
			"oid":      arena.DottedString(sym.Value.OID),
			"children": children,
		})
	},
}

var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "Watch the configured search directories and reload modules as their files change",
	ArgsUsage: " ",
	Action: func(c *cli.Context) error {
		loader, err := newLoader(c)
		if err != nil {
			return err
		}
		cfg, err := config.Load(c.String("config-dir"))
		if err != nil {
			return err
		}
		debounce := cfg.Watch.DebounceMsDuration()

		w, err := watch.New(loader, debounce)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Close()

		w.OnReload = func(name string, reparsed bool, err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "mibble: reload %s: %v\n", name, err)
				return
			}
			if reparsed {
				fmt.Printf("reloaded %s\n", name)
			}
		}

		if err := w.Add(cfg.Loader.SearchDirs...); err != nil {
			return fmt.Errorf("watch search dirs: %w", err)
		}
		w.Start()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}

var mcpCommand = &cli.Command{
	Name:  "mcp",
	Usage: "Start an MCP server exposing load_mib, resolve_symbol, and get_oid_tree over stdio",
	Action: func(c *cli.Context) error {
		loader, err := newLoader(c)
		if err != nil {
			return err
		}
		srv := mcpserver.New(loader, "mibble", appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

var jsonFlag = &cli.BoolFlag{Name: "json", Usage: "Output as JSON (default)"}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
