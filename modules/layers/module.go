// Package layers provides symbolic neural network layers. Each operation
// returns a description of the layer and of the layers feeding it; no
// tensors are computed.
package layers

import (
	_ "embed"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/operation"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Manifest returns the node kinds this module backs.
func (m *Module) Manifest() (string, []byte) {
	return "layers/manifest.hcl", manifest
}

// Register registers the layer operations.
func (m *Module) Register(r *catalog.Registry) {
	r.RegisterOperation("layers.input", "Entry point of a model, shaped after its data source.", operation.NewTyped(BuildInput))
	r.RegisterOperation("layers.dense", "Densely connected layer.", operation.NewTyped(BuildDense))
	r.RegisterOperation("layers.conv2d", "2D convolution layer.", operation.NewTyped(BuildConv2D))
	r.RegisterOperation("layers.max_pooling2d", "Max pooling operation for 2D spatial data.", operation.NewTyped(BuildMaxPooling2D))
	r.RegisterOperation("layers.concatenate", "Concatenates a list of inputs.", operation.NewTyped(merge("Concatenate")))
	r.RegisterOperation("layers.flatten", "Flattens the input.", operation.NewTyped(BuildFlatten))
	r.RegisterOperation("layers.add", "Adds a list of inputs element-wise.", operation.NewTyped(merge("Add")))
}
