package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

// DeleteNode removes a node and every edge touching it. Deleting the only
// node of the graph fails with ErrStructural.
func (g *Graph) DeleteNode(ctx context.Context, id nodeid.NodeID) error {
	logger := ctxlog.FromContext(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("cannot delete node '%s': %w", id, ErrNodeNotFound)
	}
	if len(g.nodes) == 1 {
		return fmt.Errorf("cannot delete node '%s': it is the only node in the graph: %w", id, ErrStructural)
	}

	touched := make(map[nodeid.NodeID]*Node)
	removed := 0
	for _, a := range n.attrs {
		for _, src := range slices.Clone(g.incoming[a.id]) {
			g.removeEdge(src, a.id)
			removed++
		}
		for _, dst := range slices.Clone(g.outgoing[a.id]) {
			g.removeEdge(a.id, dst)
			owner := g.attrs[dst].node
			touched[owner.id] = owner
			removed++
		}
	}
	for _, a := range n.attrs {
		delete(g.attrs, a.id)
	}
	delete(g.nodes, id)
	delete(g.sources, id)
	g.order = slices.DeleteFunc(g.order, func(other nodeid.NodeID) bool { return other == id })

	for _, other := range touched {
		g.refreshSource(other)
	}
	g.version.Add(1)

	logger.Debug("Node deleted.", "node", id, "label", n.kind.Label, "edges_removed", removed)
	g.checkLocked(ctx, "delete node")
	return nil
}
