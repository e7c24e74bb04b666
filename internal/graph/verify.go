package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

// Verify recomputes every structural invariant from scratch and returns an
// *InvariantViolation listing what is broken, or nil.
func (g *Graph) Verify() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.verifyLocked()
}

// checkLocked runs after each mutation. Callers hold the write lock.
func (g *Graph) checkLocked(ctx context.Context, op string) {
	err := g.verifyLocked()
	if err == nil {
		return
	}
	if g.strict {
		panic(fmt.Sprintf("graph: %s left the graph inconsistent: %v", op, err))
	}
	ctxlog.FromContext(ctx).Error("Graph invariants violated.", "operation", op, "error", err)
}

func (g *Graph) verifyLocked() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	// Attribute index, both directions.
	for id, a := range g.attrs {
		if a.id != id {
			add("index entry '%s' points at attribute '%s'", id, a.id)
		}
		if g.nodes[a.node.id] != a.node {
			add("attribute '%s' belongs to dead node '%s'", id, a.node.id)
			continue
		}
		if a.node.byName[a.name] != a {
			add("attribute '%s' is not reachable as '%s'", id, a.ref())
		}
	}
	for _, n := range g.nodes {
		for _, a := range n.attrs {
			if g.attrs[a.id] != a {
				add("attribute '%s' is missing from the index", a.ref())
			}
		}
	}

	// Endpoints, classes, cardinality.
	for in, srcs := range g.incoming {
		dst, ok := g.attrs[in]
		if !ok {
			add("edge target '%s' is not a live attribute", in)
			continue
		}
		if len(srcs) == 0 {
			add("empty incoming entry for '%s'", dst.ref())
		}
		if !dst.receivesValues() {
			add("edge target '%s' is not a linkable input", dst.ref())
			continue
		}
		ref, _ := dst.param.Annotation().(annotation.NodeRef)
		if ref.Cardinality == annotation.Single && len(srcs) > 1 {
			add("single attribute '%s' has %d incoming links", dst.ref(), len(srcs))
		}
		for _, out := range srcs {
			src, ok := g.attrs[out]
			if !ok {
				add("edge source '%s' of '%s' is not a live attribute", out, dst.ref())
				continue
			}
			if !g.classes.IsA(src.node.kind.Class, ref.AcceptedClass()) {
				add("'%s' (class %s) is linked into '%s' which accepts %s", src.ref(), src.node.kind.Class, dst.ref(), ref.AcceptedClass())
			}
			if !slices.Contains(g.outgoing[out], in) {
				add("edge '%s' -> '%s' is missing from outgoing", src.ref(), dst.ref())
			}
		}
	}
	for out, dsts := range g.outgoing {
		if _, ok := g.attrs[out]; !ok {
			add("edge source '%s' is not a live attribute", out)
			continue
		}
		if len(dsts) == 0 {
			add("empty outgoing entry for '%s'", out)
		}
		for _, in := range dsts {
			if !slices.Contains(g.incoming[in], out) {
				add("edge '%s' -> '%s' is missing from incoming", out, in)
			}
		}
	}

	// Source set.
	for _, n := range g.nodes {
		_, listed := g.sources[n.id]
		if want := n.linkableEmpty(); want != listed {
			add("node '%s' source membership is %t, expected %t", n.id, listed, want)
		}
	}
	for id := range g.sources {
		if _, ok := g.nodes[id]; !ok {
			add("source '%s' is not a live node", id)
		}
	}

	if g.hasCycle() {
		add("the edge relation contains a cycle")
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return &InvariantViolation{Problems: problems}
}

// hasCycle runs Kahn's algorithm over the node relation.
func (g *Graph) hasCycle() bool {
	pending := make(map[nodeid.NodeID]int, len(g.nodes))
	for _, n := range g.nodes {
		pending[n.id] = len(g.predecessors(n))
	}
	var queue []*Node
	for _, n := range g.nodes {
		if pending[n.id] == 0 {
			queue = append(queue, n)
		}
	}
	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range g.successors(n) {
			pending[next.id]--
			if pending[next.id] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return visited != len(g.nodes)
}
