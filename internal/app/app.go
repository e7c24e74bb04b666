package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/neurogrid/internal/builder"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/compiler"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/editor"
	"github.com/specialistvlad/neurogrid/internal/graph"
)

// App encapsulates the catalog, the working graph and the editor serving
// it.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *catalog.Registry
	builder    *builder.Builder
	editor     *editor.Editor
	httpServer *http.Server
}

// NewApp creates a new application instance. Without modules it installs
// CoreModules. A catalog that fails to load is a fatal misconfiguration and
// panics.
func NewApp(outW io.Writer, cfg *Config, modules ...catalog.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger initialized.", "level", cfg.LogLevel, "format", cfg.LogFormat)

	if len(modules) == 0 {
		modules = CoreModules(outW)
	}
	reg, err := LoadRegistry(ctx, cfg.CatalogPath, modules...)
	if err != nil {
		panic(fmt.Sprintf("catalog failed: %v", err))
	}

	g := graph.New(reg.Classes(), graph.WithStrictInvariants(cfg.StrictInvariants))
	b := builder.New(reg, g, compiler.WithWorkers(cfg.Workers))

	logger.Debug("App created.")
	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		builder:  b,
		editor:   editor.New(b),
	}
}

// Registry returns the loaded catalog.
func (a *App) Registry() *catalog.Registry {
	return a.registry
}

// Editor returns the editor serving the app's graph.
func (a *App) Editor() *editor.Editor {
	return a.editor
}

// Context returns ctx carrying the app logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// WriteCatalog writes the catalog tree to w, as an indented listing or, with
// asJSON, as the same document the editor's list_catalog returns.
func (a *App) WriteCatalog(ctx context.Context, w io.Writer, asJSON bool) error {
	reply := a.editor.Handle(a.Context(ctx), editor.OpListCatalog, nil)
	if !reply.OK {
		return fmt.Errorf("list catalog: %s", reply.Error)
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reply.Data)
	}

	for _, cat := range a.registry.Tree() {
		fmt.Fprintln(w, cat.Name)
		for _, sub := range cat.Subcategories {
			fmt.Fprintf(w, "  %s\n", sub.Name)
			for _, k := range sub.Kinds {
				fmt.Fprintf(w, "    %-24s %s\n", k.Label, k.Operation)
			}
		}
	}
	return nil
}
