package graph

import (
	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/internal/parameter"
	"github.com/zclconf/go-cty/cty"
)

// attribute is one entry of the attribute index.
type attribute struct {
	id   nodeid.AttrID
	node *Node
	name string
	// param is nil for the OUTPUT port.
	param  *parameter.Parameter
	handle *annotation.Handle
}

func (a *attribute) isOutputPort() bool {
	return a.param == nil
}

// sendsValues reports whether the attribute can be the source of an edge.
func (a *attribute) sendsValues() bool {
	return a.isOutputPort() || a.param.Role() == parameter.Output
}

// receivesValues reports whether the attribute can be the target of an edge.
func (a *attribute) receivesValues() bool {
	return a.param != nil && a.param.Linkable()
}

func (a *attribute) ref() nodeid.Ref {
	return nodeid.Ref{Node: a.node.id, Name: a.name}
}

// Node is a live instance of a catalog kind. Its accessors take the graph's
// read lock.
type Node struct {
	g      *Graph
	id     nodeid.NodeID
	kind   *catalog.NodeKind
	op     operation.Operation
	doc    string
	attrs  []*attribute
	byName map[string]*attribute
	output cty.Value
	state  State
	fields map[string]cty.Value
}

// AttrInfo describes one attribute of a node.
type AttrInfo struct {
	ID    nodeid.AttrID
	Name  string
	Param *parameter.Parameter
	// Linkable attributes accept incoming edges.
	Linkable bool
	// Sends is true for attributes that may start an edge.
	Sends bool
}

func (n *Node) ID() nodeid.NodeID { return n.id }
func (n *Node) Kind() *catalog.NodeKind { return n.kind }
func (n *Node) Label() string { return n.kind.Label }
func (n *Node) Class() nodeclass.Class { return n.kind.Class }
func (n *Node) Doc() string { return n.doc }

// Output returns the value produced by the last successful compile, or null.
func (n *Node) Output() cty.Value {
	n.g.mu.RLock()
	defer n.g.mu.RUnlock()
	return n.outputLocked()
}

func (n *Node) outputLocked() cty.Value {
	if n.output == cty.NilVal {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return n.output
}

// State returns the node's current state.
func (n *Node) State() State {
	n.g.mu.RLock()
	defer n.g.mu.RUnlock()
	return n.state
}

// Field returns a back-field value.
func (n *Node) Field(name string) (cty.Value, bool) {
	n.g.mu.RLock()
	defer n.g.mu.RUnlock()
	v, ok := n.fields[name]
	return v, ok
}

// Attr returns the id of the named attribute.
func (n *Node) Attr(name string) (nodeid.AttrID, bool) {
	n.g.mu.RLock()
	defer n.g.mu.RUnlock()
	a, ok := n.byName[name]
	if !ok {
		return "", false
	}
	return a.id, true
}

// Attrs lists the node's attributes in declaration order: INPUT first,
// then parameters, then OUTPUT.
func (n *Node) Attrs() []AttrInfo {
	n.g.mu.RLock()
	defer n.g.mu.RUnlock()
	out := make([]AttrInfo, 0, len(n.attrs))
	for _, a := range n.attrs {
		out = append(out, AttrInfo{
			ID:       a.id,
			Name:     a.name,
			Param:    a.param,
			Linkable: a.receivesValues(),
			Sends:    a.sendsValues(),
		})
	}
	return out
}

// fieldSink routes back-field writes into a node. Callers hold the write
// lock.
type fieldSink struct {
	n *Node
}

func (s fieldSink) SetField(name string, v cty.Value) {
	s.n.fields[name] = v
}

// linkableEmpty reports whether no linkable input has incoming edges.
func (n *Node) linkableEmpty() bool {
	for _, a := range n.attrs {
		if a.receivesValues() && len(n.g.incoming[a.id]) > 0 {
			return false
		}
	}
	return true
}

// upstreamValue is the value an attribute hands to the attributes linked
// from it.
func (a *attribute) upstreamValue() cty.Value {
	if a.isOutputPort() {
		return a.node.outputLocked()
	}
	if field := a.param.BackField(); field != "" {
		if v, ok := a.node.fields[field]; ok {
			return v
		}
	}
	v, err := a.param.GetValue(a.handle)
	if err != nil || v == cty.NilVal {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return v
}

// lockedResolver feeds NodeRef handles. Every handle read happens with the
// graph lock held, so it reads the maps directly.
type lockedResolver struct {
	g *Graph
}

func (r lockedResolver) Upstream(id nodeid.AttrID) []cty.Value {
	srcs := r.g.incoming[id]
	if len(srcs) == 0 {
		return nil
	}
	values := make([]cty.Value, 0, len(srcs))
	for _, src := range srcs {
		if a, ok := r.g.attrs[src]; ok {
			values = append(values, a.upstreamValue())
		}
	}
	return values
}
