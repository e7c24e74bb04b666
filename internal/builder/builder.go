package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/compiler"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

var (
	// ErrUnknownKind is returned when a label names no catalog kind.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrInvalidKind is returned when a kind fails the catalog's checks.
	ErrInvalidKind = errors.New("invalid node kind")
	// ErrInputExists is returned when the graph already has its Input node.
	ErrInputExists = errors.New("input node already exists")
	// ErrUnknownOperation is returned when a kind names an operation that
	// is not registered.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Builder places catalog kinds on a graph and compiles it.
type Builder struct {
	reg      *catalog.Registry
	g        *graph.Graph
	compiler *compiler.Compiler
	inputMu  sync.Mutex
}

// New creates a Builder over reg and g. opts configure the compiler used by
// CompileGraph.
func New(reg *catalog.Registry, g *graph.Graph, opts ...compiler.Option) *Builder {
	return &Builder{
		reg:      reg,
		g:        g,
		compiler: compiler.New(g, opts...),
	}
}

// Registry returns the catalog the builder resolves kinds from.
func (b *Builder) Registry() *catalog.Registry {
	return b.reg
}

// Graph returns the live graph.
func (b *Builder) Graph() *graph.Graph {
	return b.g
}

// BuildNode instantiates the catalog kind with the given label.
func (b *Builder) BuildNode(ctx context.Context, label string) (nodeid.NodeID, error) {
	kind, ok := b.reg.Kind(label)
	if !ok {
		return "", fmt.Errorf("cannot build '%s': %w", label, ErrUnknownKind)
	}
	return b.BuildKind(ctx, kind)
}

// BuildKind instantiates kind, which need not be part of the catalog but
// must pass the same checks as a catalog kind.
func (b *Builder) BuildKind(ctx context.Context, kind *catalog.NodeKind) (nodeid.NodeID, error) {
	logger := ctxlog.FromContext(ctx)
	if err := b.reg.CheckKind(kind); err != nil {
		return "", fmt.Errorf("cannot build node: %w: %w", ErrInvalidKind, err)
	}
	op, ok := b.reg.Operation(kind.Operation)
	if !ok {
		return "", fmt.Errorf("cannot build '%s': operation '%s': %w", kind.Label, kind.Operation, ErrUnknownOperation)
	}

	doc := kind.Doc
	if doc == "" {
		doc = op.Doc
	}
	id, err := b.g.AddNode(ctx, kind, op.Op, doc)
	if err != nil {
		return "", err
	}
	logger.Info("Node built.", "node", id, "label", kind.Label)
	return id, nil
}

// Catalog returns the tree of buildable kinds.
func (b *Builder) Catalog() []catalog.Category {
	return b.reg.Tree()
}

// CompileGraph compiles every node reachable from seeds, or from the
// graph's sources when none are given.
func (b *Builder) CompileGraph(ctx context.Context, seeds ...nodeid.NodeID) (*compiler.Result, error) {
	return b.compiler.Run(ctx, seeds...)
}
