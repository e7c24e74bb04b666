package annotation

import (
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/zclconf/go-cty/cty"
)

// NodeRef binds an attribute to the outputs of upstream nodes. Only nodes
// whose class is Class or a descendant may be linked into it.
type NodeRef struct {
	Class       nodeclass.Class
	Cardinality Cardinality
}

func (NodeRef) Kind() Kind { return KindNodeRef }
func (NodeRef) Type() cty.Type { return cty.DynamicPseudoType }

func (n NodeRef) String() string {
	return fmt.Sprintf("noderef(%q, %s)", n.accepted(), n.Cardinality)
}

// AcceptedClass returns the class linked nodes must be an instance of.
func (n NodeRef) AcceptedClass() nodeclass.Class {
	return n.accepted()
}

func (n NodeRef) accepted() nodeclass.Class {
	if n.Class == "" {
		return nodeclass.Root
	}
	return n.Class
}

func (NodeRef) Build(bc BuildContext) *Handle {
	return &Handle{kind: KindNodeRef, attr: bc.Attribute, resolver: bc.Resolver}
}

// Get returns null when nothing is linked, the upstream value when exactly
// one link exists, and a tuple of upstream values otherwise.
func (n NodeRef) Get(h *Handle) (cty.Value, error) {
	if err := checkKind(n, h); err != nil {
		return cty.NilVal, err
	}
	if h.resolver == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	upstream := h.resolver.Upstream(h.attr)
	switch len(upstream) {
	case 0:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case 1:
		return upstream[0], nil
	default:
		return cty.TupleVal(upstream), nil
	}
}

// Accepts is always false: NodeRef values arrive through links only.
func (NodeRef) Accepts(cty.Value) bool { return false }

// Set is always false: NodeRef values arrive through links only.
func (NodeRef) Set(*Handle, cty.Value) bool { return false }
