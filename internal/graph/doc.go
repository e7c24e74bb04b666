// Package graph holds the live node graph: nodes built from catalog kinds,
// the attribute-level edges between them, and the set of source nodes.
//
// # Structure
//
// Every node owns one attribute per parameter of its kind, plus the
// distinguished INPUT attribute (variadic, accepts many links) and the
// OUTPUT attribute when its kind declares them. Edges connect an
// output-side attribute (OUTPUT, or an output-role parameter) to a linkable
// input attribute (INPUT, or an input parameter bound by a NodeRef
// annotation).
//
// The graph owns an explicit, bidirectional attribute index:
//
//	AttrID ──► (NodeID, parameter name)
//	(NodeID, parameter name) ──► AttrID
//
// # Invariants
//
// Link, Delink and DeleteNode are the only structural mutators and keep the
// following true after every call:
//   - every edge endpoint is a live attribute of a live node;
//   - an input attribute only receives links from nodes whose class is an
//     instance of the class its annotation accepts;
//   - a single-cardinality attribute has at most one incoming link;
//   - a node is a source exactly when all its linkable inputs are empty;
//   - incoming and outgoing maps mirror each other;
//   - the node-level edge relation is acyclic.
//
// A rejected call leaves the graph untouched. Verify recomputes all of the
// above; with strict invariants enabled a violation detected after a
// mutation panics, otherwise it is logged.
//
// # Concurrency
//
// One RWMutex guards structure, attribute values and node results. A
// version counter increments on every structural change so long-running
// readers, such as the compiler, can detect concurrent edits. Operations
// run without any lock held.
package graph
