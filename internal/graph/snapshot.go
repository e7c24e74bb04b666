package graph

import (
	"slices"

	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

// Snapshot is a consistent, read-only copy of the node relation used for
// planning.
type Snapshot struct {
	Version uint64
	// Nodes lists live nodes in creation order.
	Nodes []nodeid.NodeID
	// Deps maps each node to the distinct nodes feeding it, sorted.
	Deps map[nodeid.NodeID][]nodeid.NodeID
	// Dependents maps each node to the distinct nodes it feeds, sorted.
	Dependents map[nodeid.NodeID][]nodeid.NodeID
	Sources    []nodeid.NodeID
}

// Snapshot copies the node relation under the read lock.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := &Snapshot{
		Version:    g.version.Load(),
		Nodes:      slices.Clone(g.order),
		Deps:       make(map[nodeid.NodeID][]nodeid.NodeID, len(g.nodes)),
		Dependents: make(map[nodeid.NodeID][]nodeid.NodeID, len(g.nodes)),
		Sources:    g.sourcesLocked(),
	}
	for _, id := range g.order {
		n := g.nodes[id]
		s.Deps[id] = ids(g.predecessors(n))
		s.Dependents[id] = ids(g.successors(n))
	}
	return s
}

func ids(nodes []*Node) []nodeid.NodeID {
	out := make([]nodeid.NodeID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.id)
	}
	slices.Sort(out)
	return out
}

// Has reports whether id was live when the snapshot was taken.
func (s *Snapshot) Has(id nodeid.NodeID) bool {
	_, ok := s.Deps[id]
	return ok
}
