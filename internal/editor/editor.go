package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/neurogrid/internal/builder"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

// Operation names accepted by Handle.
const (
	OpBuildNode    = "build_node"
	OpLink         = "link"
	OpDelink       = "delink"
	OpDeleteNode   = "delete_node"
	OpCompileGraph = "compile_graph"
	OpGetValue     = "get_value"
	OpSetValue     = "set_value"
	OpListCatalog  = "list_catalog"
	OpNodeState    = "node_state"
)

var (
	// ErrUnknownOperation is returned by Handle for an unknown name.
	ErrUnknownOperation = errors.New("unknown editor operation")
	// ErrValueRejected is returned when an attribute refuses a value.
	ErrValueRejected = errors.New("value rejected")
)

type handlerFunc func(e *Editor, ctx context.Context, payload []byte) Reply

var handlers = map[string]handlerFunc{
	OpBuildNode:    handler((*Editor).BuildNode),
	OpLink:         handler((*Editor).Link),
	OpDelink:       handler((*Editor).Delink),
	OpDeleteNode:   handler((*Editor).DeleteNode),
	OpCompileGraph: handler((*Editor).CompileGraph),
	OpGetValue:     handler((*Editor).GetValue),
	OpSetValue:     handler((*Editor).SetValue),
	OpListCatalog:  handler((*Editor).ListCatalog),
	OpNodeState:    handler((*Editor).NodeState),
}

func handler[R any](fn func(*Editor, context.Context, R) Reply) handlerFunc {
	return func(e *Editor, ctx context.Context, payload []byte) Reply {
		var req R
		if len(bytes.TrimSpace(payload)) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return fail(&RequestError{Field: "payload", Err: err})
			}
		}
		return fn(e, ctx, req)
	}
}

// Operations lists the names Handle accepts, sorted.
func Operations() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Editor applies UI operations to one graph.
type Editor struct {
	b        *builder.Builder
	validate *validator.Validate
}

// New creates an Editor over b.
func New(b *builder.Builder) *Editor {
	return &Editor{b: b, validate: newValidator()}
}

// Handle decodes payload as the request of op and runs it.
func (e *Editor) Handle(ctx context.Context, op string, payload []byte) Reply {
	h, ok := handlers[op]
	if !ok {
		return fail(fmt.Errorf("%w: '%s'", ErrUnknownOperation, op))
	}
	ctx = ctxlog.With(ctx, "op", op)
	ctxlog.FromContext(ctx).Debug("Editor operation received.", "bytes", len(payload))
	return h(e, ctx, payload)
}

func (e *Editor) check(req any) error {
	return e.validate.Struct(req)
}

// BuildNode adds a node and returns its view.
func (e *Editor) BuildNode(ctx context.Context, req BuildNodeRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	var (
		id  nodeid.NodeID
		err error
	)
	if req.Label == builder.InputKind().Label {
		id, err = e.b.BuildInput(ctx)
	} else {
		id, err = e.b.BuildNode(ctx, req.Label)
	}
	if err != nil {
		return fail(err)
	}
	return e.viewNode(id, false)
}

// Link adds an edge.
func (e *Editor) Link(ctx context.Context, req LinkRequest) Reply {
	logger := ctxlog.FromContext(ctx)
	if err := e.check(req); err != nil {
		return fail(err)
	}
	out, in, err := e.resolvePair(req.Out, req.In)
	if err != nil {
		return fail(err)
	}
	if err := e.b.Graph().Link(ctx, out, in); err != nil {
		logger.Warn("Link rejected.", "out", req.Out, "in", req.In, "error", err)
		return fail(err)
	}
	return ok(changeView(e.b.Graph()))
}

// Delink removes an edge.
func (e *Editor) Delink(ctx context.Context, req LinkRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	out, in, err := e.resolvePair(req.Out, req.In)
	if err != nil {
		return fail(err)
	}
	if err := e.b.Graph().Delink(ctx, out, in); err != nil {
		return fail(err)
	}
	return ok(changeView(e.b.Graph()))
}

// DeleteNode removes a node with its edges.
func (e *Editor) DeleteNode(ctx context.Context, req DeleteNodeRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	if err := e.b.Graph().DeleteNode(ctx, nodeid.NodeID(req.Node)); err != nil {
		return fail(err)
	}
	return ok(changeView(e.b.Graph()))
}

// CompileGraph runs the compiler. Node failures do not fail the reply;
// they are listed in the result and stored on the nodes.
func (e *Editor) CompileGraph(ctx context.Context, req CompileGraphRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	seeds := make([]nodeid.NodeID, len(req.Seeds))
	for i, s := range req.Seeds {
		seeds[i] = nodeid.NodeID(s)
	}
	res, err := e.b.CompileGraph(ctx, seeds...)
	if err != nil {
		return failWith(err, resultView(res))
	}
	return ok(resultView(res))
}

// GetValue reads an attribute.
func (e *Editor) GetValue(ctx context.Context, req GetValueRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	id, err := e.resolveAttr(req.Attr)
	if err != nil {
		return fail(err)
	}
	v, err := e.b.Graph().GetValue(ctx, id)
	if err != nil {
		return fail(err)
	}
	view, err := encodeValue(v)
	if err != nil {
		return fail(err)
	}
	return ok(view)
}

// SetValue writes an attribute and returns the stored value.
func (e *Editor) SetValue(ctx context.Context, req SetValueRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	id, err := e.resolveAttr(req.Attr)
	if err != nil {
		return fail(err)
	}
	v, err := decodeValue(req.Value, req.Type)
	if err != nil {
		return fail(err)
	}
	accepted, err := e.b.Graph().SetValue(ctx, id, v)
	if err != nil {
		return fail(err)
	}
	if !accepted {
		return fail(fmt.Errorf("attribute '%s': %w", req.Attr, ErrValueRejected))
	}
	return e.GetValue(ctx, GetValueRequest{Attr: req.Attr})
}

// ListCatalog returns the catalog tree.
func (e *Editor) ListCatalog(_ context.Context, req ListCatalogRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	tree, err := catalogView(e.b.Catalog())
	if err != nil {
		return fail(err)
	}
	return ok(tree)
}

// NodeState returns a node with its state and output.
func (e *Editor) NodeState(_ context.Context, req NodeStateRequest) Reply {
	if err := e.check(req); err != nil {
		return fail(err)
	}
	return e.viewNode(nodeid.NodeID(req.Node), true)
}

func (e *Editor) viewNode(id nodeid.NodeID, withOutput bool) Reply {
	n, found := e.b.Graph().Node(id)
	if !found {
		return fail(fmt.Errorf("node '%s': %w", id, graph.ErrNodeNotFound))
	}
	view, err := nodeView(e.b.Graph(), n, withOutput)
	if err != nil {
		return fail(err)
	}
	return ok(view)
}

// resolveAttr accepts an attribute id or a "<node>.<name>" reference.
// Unknown ids are passed through so the graph reports them.
func (e *Editor) resolveAttr(s string) (nodeid.AttrID, error) {
	if !strings.Contains(s, ".") {
		return nodeid.AttrID(s), nil
	}
	ref, err := nodeid.ParseRef(s)
	if err != nil {
		return "", &RequestError{Field: "attribute", Err: err}
	}
	id, found := e.b.Graph().Attr(ref)
	if !found {
		return "", fmt.Errorf("attribute '%s': %w", s, graph.ErrAttributeNotFound)
	}
	return id, nil
}

func (e *Editor) resolvePair(out, in string) (nodeid.AttrID, nodeid.AttrID, error) {
	o, err := e.resolveAttr(out)
	if err != nil {
		return "", "", err
	}
	i, err := e.resolveAttr(in)
	if err != nil {
		return "", "", err
	}
	return o, i, nil
}
