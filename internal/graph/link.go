package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

// Link adds the edge out -> in. A rejected link returns a *LinkError and
// leaves the graph unchanged.
func (g *Graph) Link(ctx context.Context, out, in nodeid.AttrID) error {
	logger := ctxlog.FromContext(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkLink(out, in); err != nil {
		logger.Warn("Link rejected.", "out", out, "in", in, "reason", err.Reason, "detail", err.Detail)
		return err
	}

	target := g.attrs[in]
	g.incoming[in] = append(g.incoming[in], out)
	g.outgoing[out] = append(g.outgoing[out], in)
	delete(g.sources, target.node.id)
	g.version.Add(1)

	logger.Debug("Link added.", "out", g.attrs[out].ref(), "in", target.ref())
	g.checkLocked(ctx, "link")
	return nil
}

// checkLink runs every link rule in order. Callers hold the lock.
func (g *Graph) checkLink(out, in nodeid.AttrID) *LinkError {
	src, ok := g.attrs[out]
	if !ok {
		return reject(ReasonUnknownAttribute, out, in, "unknown output attribute '%s'", out)
	}
	dst, ok := g.attrs[in]
	if !ok {
		return reject(ReasonUnknownAttribute, out, in, "unknown input attribute '%s'", in)
	}
	if !src.sendsValues() {
		return reject(ReasonDirection, out, in, "attribute '%s' is not an output", src.ref())
	}
	if !dst.receivesValues() {
		return reject(ReasonDirection, out, in, "attribute '%s' is not a linkable input", dst.ref())
	}
	if src.node == dst.node {
		return reject(ReasonSelfLink, out, in, "node '%s' cannot be linked to itself", src.node.id)
	}
	if slices.Contains(g.incoming[in], out) {
		return reject(ReasonDuplicate, out, in, "'%s' is already linked to '%s'", src.ref(), dst.ref())
	}

	ref, ok := dst.param.Annotation().(annotation.NodeRef)
	if !ok {
		return reject(ReasonDirection, out, in, "attribute '%s' is not a node reference", dst.ref())
	}
	accepted := ref.AcceptedClass()
	if !g.classes.IsA(src.node.kind.Class, accepted) {
		return reject(ReasonTypeMismatch, out, in, "'%s' accepts %s, got %s", dst.ref(), accepted, src.node.kind.Class)
	}
	if ref.Cardinality == annotation.Single && len(g.incoming[in]) > 0 {
		return reject(ReasonCardinality, out, in, "'%s' accepts a single link and is already bound", dst.ref())
	}
	if g.reaches(dst.node, src.node) {
		return reject(ReasonCycle, out, in, "linking '%s' to '%s' would close a cycle", src.ref(), dst.ref())
	}
	return nil
}

// reaches reports whether to is reachable from from along edges.
func (g *Graph) reaches(from, to *Node) bool {
	seen := map[nodeid.NodeID]bool{from.id: true}
	stack := []*Node{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		for _, next := range g.successors(n) {
			if !seen[next.id] {
				seen[next.id] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Delink removes the edge out -> in. The target node rejoins the source set
// once all its linkable inputs are empty.
func (g *Graph) Delink(ctx context.Context, out, in nodeid.AttrID) error {
	logger := ctxlog.FromContext(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()

	if !slices.Contains(g.incoming[in], out) {
		return fmt.Errorf("cannot delink '%s' -> '%s': %w", out, in, ErrEdgeNotFound)
	}
	g.removeEdge(out, in)
	target := g.attrs[in]
	g.refreshSource(target.node)
	g.version.Add(1)

	logger.Debug("Link removed.", "out", g.attrs[out].ref(), "in", target.ref())
	g.checkLocked(ctx, "delink")
	return nil
}

// removeEdge drops the pair from both maps, deleting empty entries.
func (g *Graph) removeEdge(out, in nodeid.AttrID) {
	g.incoming[in] = slices.DeleteFunc(g.incoming[in], func(id nodeid.AttrID) bool { return id == out })
	if len(g.incoming[in]) == 0 {
		delete(g.incoming, in)
	}
	g.outgoing[out] = slices.DeleteFunc(g.outgoing[out], func(id nodeid.AttrID) bool { return id == in })
	if len(g.outgoing[out]) == 0 {
		delete(g.outgoing, out)
	}
}
