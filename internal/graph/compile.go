package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/internal/parameter"
	"github.com/zclconf/go-cty/cty"
)

// CompileNode resolves the node's arguments, invokes its operation and
// stores the outcome on the node. Operation failures, panics included, end
// up in the returned State; the error is only set for unknown nodes.
func (g *Graph) CompileNode(ctx context.Context, id nodeid.NodeID) (State, error) {
	logger := ctxlog.FromContext(ctx)

	g.mu.RLock()
	n, ok := g.nodes[id]
	if !ok {
		g.mu.RUnlock()
		return State{}, fmt.Errorf("cannot compile node '%s': %w", id, ErrNodeNotFound)
	}
	args, err := n.resolveArgs()
	g.mu.RUnlock()

	var out cty.Value
	if err == nil {
		out, err = invoke(ctx, n.op, args)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.nodes[id] != n {
		return State{}, fmt.Errorf("node '%s' was deleted during compile: %w", id, ErrNodeNotFound)
	}
	if err != nil {
		n.output = cty.NilVal
		n.state = State{Phase: Errored, Message: err.Error(), Tag: tagFor(err)}
		logger.Error("Node failed.", "node", id, "label", n.kind.Label, "tag", n.state.Tag, "error", err)
		return n.state, nil
	}
	if out == cty.NilVal {
		out = cty.NullVal(cty.DynamicPseudoType)
	}
	n.output = out
	n.state = State{Phase: Ready}
	n.mirrorOutput(ctx)
	logger.Debug("Node compiled.", "node", id, "label", n.kind.Label)
	return n.state, nil
}

// resolveArgs walks the attributes in declaration order. INPUT contributes
// one positional argument per upstream value, every other input attribute a
// named argument. Callers hold the read lock.
func (n *Node) resolveArgs() (operation.Args, error) {
	args := operation.NewArgs()
	for _, a := range n.attrs {
		if a.isOutputPort() || a.param.Role() == parameter.Output {
			continue
		}
		if a.name == catalog.InputPort {
			args.Positional = append(args.Positional, lockedResolver{g: n.g}.Upstream(a.id)...)
			continue
		}
		v, err := a.param.GetValue(a.handle)
		if err != nil {
			return args, operation.Internal(fmt.Errorf("failed to resolve '%s': %w", a.name, err))
		}
		args.Add(a.name, v)
	}
	return args, nil
}

// mirrorOutput copies attributes of an object output onto output-role
// parameters of the same name, firing their back-fields. Callers hold the
// write lock.
func (n *Node) mirrorOutput(ctx context.Context) {
	v := n.output
	if v.IsNull() || !v.IsKnown() || !v.Type().IsObjectType() {
		return
	}
	for _, a := range n.attrs {
		if a.isOutputPort() || a.param.Role() != parameter.Output || !v.Type().HasAttribute(a.name) {
			continue
		}
		if !a.param.SetValue(a.handle, v.GetAttr(a.name), fieldSink{n: n}) {
			ctxlog.FromContext(ctx).Warn("Output attribute does not fit its parameter.", "attribute", a.ref(), "annotation", a.param.Annotation())
		}
	}
}

func invoke(ctx context.Context, op operation.Operation, args operation.Args) (out cty.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = cty.NilVal
			err = operation.Internal(fmt.Errorf("operation panicked: %v", r))
		}
	}()
	return op.Invoke(ctx, args)
}

func tagFor(err error) string {
	var opErr *operation.Error
	if errors.As(err, &opErr) && opErr.Code == operation.CodeInvalidArgument {
		return TagInvalidInput
	}
	return TagUnknown
}

// MarkBlocked records that id was not compiled because upstream failed.
// Its previous output is cleared.
func (g *Graph) MarkBlocked(ctx context.Context, id, upstream nodeid.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	n.output = cty.NilVal
	n.state = State{Phase: Blocked, Upstream: upstream, Message: fmt.Sprintf("upstream node '%s' failed", upstream)}
	ctxlog.FromContext(ctx).Debug("Node blocked.", "node", id, "upstream", upstream)
}

// MarkSkipped records that id was not compiled because the run stopped.
func (g *Graph) MarkSkipped(ctx context.Context, id nodeid.NodeID, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	n.state = State{Phase: Skipped, Message: reason}
	ctxlog.FromContext(ctx).Warn("Node skipped.", "node", id, "reason", reason)
}
