package catalog

import (
	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/parameter"
)

// Names of the attributes every node may carry besides its parameters.
const (
	// InputPort is the variadic input attribute. Each value linked into it
	// becomes one positional argument.
	InputPort = "INPUT"
	// OutputPort exposes the node's output to downstream nodes.
	OutputPort = "OUTPUT"
)

// Param is one named parameter of a node kind.
type Param struct {
	Name  string               `validate:"required,excludesall=."`
	Param *parameter.Parameter `validate:"required"`
}

// NodeKind is the immutable template for a buildable node.
type NodeKind struct {
	Label       string          `validate:"required"`
	Category    string          `validate:"required"`
	Subcategory string          `validate:"required"`
	Class       nodeclass.Class `validate:"required"`
	Operation   string          `validate:"required"`
	Doc         string
	// Input adds the variadic INPUT attribute.
	Input bool
	// InputAccepts is the class nodes linked into INPUT must be an
	// instance of. Empty means any node.
	InputAccepts nodeclass.Class
	// Output adds the OUTPUT attribute.
	Output bool
	Params []Param `validate:"unique=Name,dive"`
}

// Param looks up a parameter by name.
func (k *NodeKind) Param(name string) (*parameter.Parameter, bool) {
	for _, p := range k.Params {
		if p.Name == name {
			return p.Param, true
		}
	}
	return nil, false
}

// InputParameter returns the parameter backing the INPUT attribute.
func (k *NodeKind) InputParameter() *parameter.Parameter {
	accepts := k.InputAccepts
	if accepts == "" {
		accepts = nodeclass.Root
	}
	return parameter.New(parameter.Input, annotation.NodeRef{Class: accepts, Cardinality: annotation.Multiple})
}
