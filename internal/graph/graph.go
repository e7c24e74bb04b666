package graph

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/internal/parameter"
	"github.com/zclconf/go-cty/cty"
)

// Graph is the live node graph. It is safe for concurrent use.
type Graph struct {
	mu      sync.RWMutex
	classes *nodeclass.Hierarchy
	nodes   map[nodeid.NodeID]*Node
	order   []nodeid.NodeID
	attrs   map[nodeid.AttrID]*attribute
	// incoming maps an input attribute to the attributes linked into it, in
	// link order. outgoing is its mirror.
	incoming map[nodeid.AttrID][]nodeid.AttrID
	outgoing map[nodeid.AttrID][]nodeid.AttrID
	sources  map[nodeid.NodeID]struct{}
	version  atomic.Uint64
	strict   bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithStrictInvariants makes every mutation verify the graph and panic on a
// violation instead of logging it.
func WithStrictInvariants(strict bool) Option {
	return func(g *Graph) { g.strict = strict }
}

// New creates an empty graph whose class checks use classes.
func New(classes *nodeclass.Hierarchy, opts ...Option) *Graph {
	if classes == nil {
		classes = nodeclass.Builtin()
	}
	g := &Graph{
		classes:  classes,
		nodes:    make(map[nodeid.NodeID]*Node),
		attrs:    make(map[nodeid.AttrID]*attribute),
		incoming: make(map[nodeid.AttrID][]nodeid.AttrID),
		outgoing: make(map[nodeid.AttrID][]nodeid.AttrID),
		sources:  make(map[nodeid.NodeID]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Version increments on every structural mutation.
func (g *Graph) Version() uint64 {
	return g.version.Load()
}

// AddNode instantiates kind with op. doc is shown to users; when empty the
// kind's own doc is used. New nodes are sources.
func (g *Graph) AddNode(ctx context.Context, kind *catalog.NodeKind, op operation.Operation, doc string) (nodeid.NodeID, error) {
	logger := ctxlog.FromContext(ctx)
	if kind == nil {
		return "", fmt.Errorf("cannot add node: kind is nil")
	}
	if op == nil {
		return "", fmt.Errorf("cannot add node '%s': operation is nil", kind.Label)
	}
	if !g.classes.Known(kind.Class) {
		return "", fmt.Errorf("cannot add node '%s': unknown class '%s'", kind.Label, kind.Class)
	}
	if doc == "" {
		doc = kind.Doc
	}

	n := &Node{
		id:     nodeid.NewNodeID(),
		kind:   kind,
		op:     op,
		doc:    doc,
		byName: make(map[string]*attribute),
		fields: make(map[string]cty.Value),
		state:  State{Phase: Idle},
	}

	type decl struct {
		name  string
		param *parameter.Parameter
	}
	decls := make([]decl, 0, len(kind.Params)+2)
	if kind.Input {
		decls = append(decls, decl{catalog.InputPort, kind.InputParameter()})
	}
	for _, p := range kind.Params {
		decls = append(decls, decl{p.Name, p.Param})
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n.g = g
	resolver := lockedResolver{g: g}
	for _, d := range decls {
		a := &attribute{id: nodeid.NewAttrID(), node: n, name: d.name, param: d.param}
		h, err := d.param.Build(annotation.BuildContext{Attribute: a.id, Resolver: resolver})
		if err != nil {
			return "", fmt.Errorf("cannot add node '%s': parameter '%s': %w", kind.Label, d.name, err)
		}
		a.handle = h
		if field := d.param.BackField(); field != "" {
			if v, err := d.param.GetValue(h); err == nil && v != cty.NilVal && !v.IsNull() {
				n.fields[field] = v
			}
		}
		n.attrs = append(n.attrs, a)
		n.byName[d.name] = a
	}
	if kind.Output {
		a := &attribute{id: nodeid.NewAttrID(), node: n, name: catalog.OutputPort}
		n.attrs = append(n.attrs, a)
		n.byName[a.name] = a
	}

	for _, a := range n.attrs {
		g.attrs[a.id] = a
	}
	g.nodes[n.id] = n
	g.order = append(g.order, n.id)
	g.sources[n.id] = struct{}{}
	g.version.Add(1)

	logger.Debug("Node added.", "node", n.id, "label", kind.Label, "attributes", len(n.attrs))
	g.checkLocked(ctx, "add node")
	return n.id, nil
}

// Node returns a live node.
func (g *Graph) Node(id nodeid.NodeID) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the live node ids in creation order.
func (g *Graph) Nodes() []nodeid.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Sources returns the nodes whose linkable inputs are all empty, sorted.
func (g *Graph) Sources() []nodeid.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sourcesLocked()
}

func (g *Graph) sourcesLocked() []nodeid.NodeID {
	out := make([]nodeid.NodeID, 0, len(g.sources))
	for id := range g.sources {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// IsSource reports whether id is in the source set.
func (g *Graph) IsSource(id nodeid.NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.sources[id]
	return ok
}

// Attr resolves a node/name reference through the attribute index.
func (g *Graph) Attr(ref nodeid.Ref) (nodeid.AttrID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[ref.Node]
	if !ok {
		return "", false
	}
	a, ok := n.byName[ref.Name]
	if !ok {
		return "", false
	}
	return a.id, true
}

// Owner resolves an attribute id to its node and parameter name.
func (g *Graph) Owner(id nodeid.AttrID) (nodeid.Ref, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a, ok := g.attrs[id]
	if !ok {
		return nodeid.Ref{}, false
	}
	return a.ref(), true
}

// GetValue reads an attribute. The OUTPUT port reads the node's output and
// NodeRef attributes read their upstream values.
func (g *Graph) GetValue(ctx context.Context, id nodeid.AttrID) (cty.Value, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a, ok := g.attrs[id]
	if !ok {
		return cty.NilVal, fmt.Errorf("cannot read attribute '%s': %w", id, ErrAttributeNotFound)
	}
	if a.isOutputPort() {
		return a.node.outputLocked(), nil
	}
	v, err := a.param.GetValue(a.handle)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot read attribute '%s': %w", a.ref(), err)
	}
	return v, nil
}

// SetValue writes an attribute. It returns false when the annotation
// rejects v, which leaves the attribute unchanged.
func (g *Graph) SetValue(ctx context.Context, id nodeid.AttrID, v cty.Value) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.attrs[id]
	if !ok {
		return false, fmt.Errorf("cannot write attribute '%s': %w", id, ErrAttributeNotFound)
	}
	if a.isOutputPort() {
		logger.Debug("Refusing write to output port.", "attribute", a.ref())
		return false, nil
	}
	if !a.param.SetValue(a.handle, v, fieldSink{n: a.node}) {
		logger.Debug("Value rejected.", "attribute", a.ref(), "annotation", a.param.Annotation())
		return false, nil
	}
	logger.Debug("Value set.", "attribute", a.ref())
	return true, nil
}

// Edge is one attribute-level link.
type Edge struct {
	Out nodeid.AttrID
	In  nodeid.AttrID
}

// Edges lists every edge grouped by target, in node creation and
// declaration order, each group in link order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []Edge
	for _, id := range g.order {
		for _, a := range g.nodes[id].attrs {
			for _, src := range g.incoming[a.id] {
				edges = append(edges, Edge{Out: src, In: a.id})
			}
		}
	}
	return edges
}

// Incoming returns the attributes linked into id, in link order.
func (g *Graph) Incoming(id nodeid.AttrID) []nodeid.AttrID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.incoming[id])
}

// Outgoing returns the attributes id is linked to.
func (g *Graph) Outgoing(id nodeid.AttrID) []nodeid.AttrID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.outgoing[id])
}

// refreshSource recomputes whether n belongs to the source set.
func (g *Graph) refreshSource(n *Node) {
	if n.linkableEmpty() {
		g.sources[n.id] = struct{}{}
	} else {
		delete(g.sources, n.id)
	}
}

// successors returns the distinct nodes fed by n.
func (g *Graph) successors(n *Node) []*Node {
	var out []*Node
	seen := make(map[nodeid.NodeID]bool)
	for _, a := range n.attrs {
		for _, dst := range g.outgoing[a.id] {
			owner := g.attrs[dst].node
			if !seen[owner.id] {
				seen[owner.id] = true
				out = append(out, owner)
			}
		}
	}
	return out
}

// predecessors returns the distinct nodes feeding n.
func (g *Graph) predecessors(n *Node) []*Node {
	var out []*Node
	seen := make(map[nodeid.NodeID]bool)
	for _, a := range n.attrs {
		for _, src := range g.incoming[a.id] {
			owner := g.attrs[src].node
			if !seen[owner.id] {
				seen[owner.id] = true
				out = append(out, owner)
			}
		}
	}
	return out
}
