package compiler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrGraphChanged stops a run when the graph is mutated under it.
	ErrGraphChanged = errors.New("graph changed during compile")
	// ErrUnknownSeed is returned when a seed is not a live node.
	ErrUnknownSeed = errors.New("unknown seed node")
)

// Compiler runs a graph. A Compiler may be reused; each Run is independent.
type Compiler struct {
	g       *graph.Graph
	workers int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithWorkers sets how many nodes may compile concurrently. Values below 1
// mean 1.
func WithWorkers(n int) Option {
	return func(c *Compiler) { c.workers = max(n, 1) }
}

// New creates a Compiler for g.
func New(g *graph.Graph, opts ...Option) *Compiler {
	c := &Compiler{g: g, workers: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result describes one run. All lists except Order are sorted.
type Result struct {
	RunID string
	// Visited holds every node the run settled: compiled, failed or
	// blocked.
	Visited []nodeid.NodeID
	// Order is the order in which nodes settled.
	Order    []nodeid.NodeID
	Compiled []nodeid.NodeID
	Failed   []nodeid.NodeID
	Blocked  []nodeid.NodeID
	Skipped  []nodeid.NodeID
}

// Run compiles every node reachable from seeds, or from the graph's
// sources when no seed is given. Node failures are reported through the
// Result and node states; the error is set only when the run could not
// finish, in which case the partial Result is returned with it.
func (c *Compiler) Run(ctx context.Context, seeds ...nodeid.NodeID) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()[:12]
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "compiler.Run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("workers", c.workers),
		),
	)
	defer span.End()

	r, err := c.plan(ctx, runID, seeds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("nodes", r.remaining))
	logger.Info("🚀 Starting compile.", "nodes", r.remaining, "seeds", len(r.seeds), "workers", c.workers)

	workers := min(c.workers, max(r.remaining, 1))
	var eg errgroup.Group
	for range workers {
		eg.Go(func() error {
			c.work(ctx, r)
			return nil
		})
	}
	_ = eg.Wait()

	res := r.result()
	recordRun(ctx, time.Since(start), res, r.err)
	if r.err != nil {
		span.RecordError(r.err)
		span.SetStatus(codes.Error, r.err.Error())
		logger.Warn("Compile stopped.", "error", r.err, "visited", len(res.Visited), "skipped", len(res.Skipped))
		return res, r.err
	}
	span.SetStatus(codes.Ok, "")
	logger.Info("🏁 Compile finished.",
		"compiled", len(res.Compiled),
		"failed", len(res.Failed),
		"blocked", len(res.Blocked),
		"duration", time.Since(start),
	)
	return res, nil
}

// run is the mutable state of one Run.
type run struct {
	id      string
	version uint64
	seeds   []nodeid.NodeID
	snap    *graph.Snapshot
	reach   map[nodeid.NodeID]bool
	ready   chan nodeid.NodeID

	mu        sync.Mutex
	pending   map[nodeid.NodeID]int
	settled   map[nodeid.NodeID]bool
	inflight  map[nodeid.NodeID]bool
	remaining int
	closed    bool
	err       error

	order    []nodeid.NodeID
	compiled []nodeid.NodeID
	failed   []nodeid.NodeID
	blocked  []nodeid.NodeID
	skipped  []nodeid.NodeID
}

// plan snapshots the graph and seeds the ready queue.
func (c *Compiler) plan(ctx context.Context, runID string, seeds []nodeid.NodeID) (*run, error) {
	snap := c.g.Snapshot()
	if len(seeds) == 0 {
		seeds = snap.Sources
	}
	for _, id := range seeds {
		if !snap.Has(id) {
			return nil, fmt.Errorf("cannot compile from '%s': %w", id, ErrUnknownSeed)
		}
	}

	reach := make(map[nodeid.NodeID]bool)
	queue := slices.Clone(seeds)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reach[id] {
			continue
		}
		reach[id] = true
		queue = append(queue, snap.Dependents[id]...)
	}

	r := &run{
		id:        runID,
		version:   snap.Version,
		seeds:     seeds,
		snap:      snap,
		reach:     reach,
		ready:     make(chan nodeid.NodeID, len(reach)),
		pending:   make(map[nodeid.NodeID]int, len(reach)),
		settled:   make(map[nodeid.NodeID]bool, len(reach)),
		inflight:  make(map[nodeid.NodeID]bool),
		remaining: len(reach),
	}
	// Walk in creation order so equal-rank nodes start deterministically.
	for _, id := range snap.Nodes {
		if !reach[id] {
			continue
		}
		for _, dep := range snap.Deps[id] {
			if reach[dep] {
				r.pending[id]++
			}
		}
		if r.pending[id] == 0 {
			r.ready <- id
		}
	}
	if r.remaining == 0 {
		r.closeLocked()
	}
	ctxlog.FromContext(ctx).Debug("Compile planned.", "reachable", len(reach), "initially_ready", len(r.ready))
	return r, nil
}

func (c *Compiler) work(ctx context.Context, r *run) {
	for id := range r.ready {
		if !r.begin(ctx, c.g, id) {
			continue
		}
		state, err := c.visit(ctx, id)
		r.finish(ctx, c.g, id, state, err)
	}
}

func (c *Compiler) visit(ctx context.Context, id nodeid.NodeID) (graph.State, error) {
	label := ""
	if n, ok := c.g.Node(id); ok {
		label = n.Label()
	}
	ctx, span := tracer.Start(ctx, "compiler.CompileNode",
		trace.WithAttributes(
			attribute.String("node", string(id)),
			attribute.String("kind", label),
		),
	)
	defer span.End()

	start := time.Now()
	state, err := c.g.CompileNode(ctx, id)
	outcome := "compiled"
	switch {
	case err != nil:
		outcome = "aborted"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case state.Failed():
		outcome = "failed"
		span.SetStatus(codes.Error, state.Message)
		span.SetAttributes(attribute.String("error_tag", state.Tag))
	default:
		span.SetStatus(codes.Ok, "")
	}
	recordNode(ctx, label, time.Since(start), outcome)
	return state, err
}

// begin checks the run is still valid before id is visited.
func (r *run) begin(ctx context.Context, g *graph.Graph, id nodeid.NodeID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.settled[id] {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.abortLocked(ctx, g, fmt.Errorf("compile canceled: %w", err), "canceled")
		return false
	}
	if v := g.Version(); v != r.version {
		r.abortLocked(ctx, g, fmt.Errorf("version %d became %d: %w", r.version, v, ErrGraphChanged), "graph changed")
		return false
	}
	r.inflight[id] = true
	return true
}

// finish settles id and releases or blocks its dependents.
func (r *run) finish(ctx context.Context, g *graph.Graph, id nodeid.NodeID, state graph.State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, id)

	if err != nil {
		// The node vanished while it compiled.
		r.abortLocked(ctx, g, fmt.Errorf("%w: %v", ErrGraphChanged, err), "graph changed")
		return
	}
	r.settleLocked(id)

	if state.Failed() {
		r.failed = append(r.failed, id)
		r.blockLocked(ctx, g, id)
	} else {
		r.compiled = append(r.compiled, id)
		if r.err == nil {
			for _, next := range r.snap.Dependents[id] {
				if !r.reach[next] || r.settled[next] {
					continue
				}
				r.pending[next]--
				if r.pending[next] == 0 {
					r.ready <- next
				}
			}
		}
	}
	if r.remaining == 0 {
		r.closeLocked()
	}
}

// blockLocked marks every unsettled node downstream of failed as Blocked.
func (r *run) blockLocked(ctx context.Context, g *graph.Graph, failed nodeid.NodeID) {
	queue := slices.Clone(r.snap.Dependents[failed])
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !r.reach[id] || r.settled[id] {
			continue
		}
		g.MarkBlocked(ctx, id, failed)
		r.settleLocked(id)
		r.blocked = append(r.blocked, id)
		queue = append(queue, r.snap.Dependents[id]...)
	}
}

// abortLocked stops the run: every node that is neither settled nor
// running becomes Skipped. Skipped nodes count as settled so late
// finishers leave them alone, but they stay out of Visited.
func (r *run) abortLocked(ctx context.Context, g *graph.Graph, err error, reason string) {
	if r.err != nil {
		return
	}
	r.err = err
	for _, id := range r.snap.Nodes {
		if !r.reach[id] || r.settled[id] || r.inflight[id] {
			continue
		}
		g.MarkSkipped(ctx, id, reason)
		r.settled[id] = true
		r.skipped = append(r.skipped, id)
	}
	r.closeLocked()
}

func (r *run) settleLocked(id nodeid.NodeID) {
	r.settled[id] = true
	r.order = append(r.order, id)
	r.remaining--
}

func (r *run) closeLocked() {
	if !r.closed {
		r.closed = true
		close(r.ready)
	}
}

func (r *run) result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	visited := slices.Concat(r.compiled, r.failed, r.blocked)
	res := &Result{
		RunID:    r.id,
		Visited:  sorted(visited),
		Order:    slices.Clone(r.order),
		Compiled: sorted(r.compiled),
		Failed:   sorted(r.failed),
		Blocked:  sorted(r.blocked),
		Skipped:  sorted(r.skipped),
	}
	return res
}

func sorted(ids []nodeid.NodeID) []nodeid.NodeID {
	out := slices.Clone(ids)
	slices.Sort(out)
	if out == nil {
		out = []nodeid.NodeID{}
	}
	return out
}
