// Package compiler runs node operations over a graph in dependency order.
//
// A run plans from a snapshot of the graph: it collects every node
// reachable downstream from the seeds (the graph's sources by default) and
// gives each one a pending counter equal to the number of distinct upstream
// nodes inside that set. Nodes enter the ready queue only when their
// counter drops to zero, so a node with several predecessors is compiled
// exactly once, after all of them.
//
// When a node fails, every node downstream of it is marked Blocked and is
// not executed. Unrelated branches keep running. Cancelling the context or
// mutating the graph stops the run; nodes that had not started are marked
// Skipped.
package compiler
