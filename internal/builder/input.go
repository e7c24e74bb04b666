package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/parameter"
)

// InputOperation is the operation backing the Input node.
const InputOperation = "layers.input"

// InputKind returns the kind of the model entry point.
func InputKind() *catalog.NodeKind {
	return &catalog.NodeKind{
		Label:       "Input",
		Category:    "Neural Network Layers",
		Subcategory: "Input",
		Class:       nodeclass.InputLayer,
		Operation:   InputOperation,
		Output:      true,
		Params: []catalog.Param{{
			Name:  "shape",
			Param: parameter.New(parameter.Input, annotation.NodeRef{Class: nodeclass.Data, Cardinality: annotation.Single}),
		}},
	}
}

// BuildInput instantiates the Input node. Its shape is linked from a data
// node. A graph holds at most one Input node; once it is deleted another
// may be built.
func (b *Builder) BuildInput(ctx context.Context) (nodeid.NodeID, error) {
	b.inputMu.Lock()
	defer b.inputMu.Unlock()

	if id, ok := b.Input(); ok {
		return "", fmt.Errorf("cannot build Input: node %s is already the graph's Input: %w: %w", id, ErrInputExists, graph.ErrStructural)
	}
	return b.BuildKind(ctx, InputKind())
}

// Input returns the graph's Input node, if one has been built.
func (b *Builder) Input() (nodeid.NodeID, bool) {
	for _, id := range b.g.Nodes() {
		if n, ok := b.g.Node(id); ok && n.Kind().Operation == InputOperation {
			return id, true
		}
	}
	return "", false
}
