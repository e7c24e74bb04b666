// Package arith provides small numeric operations used to exercise the
// graph without pulling in the model-building modules.
package arith

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
	return "arith/manifest.hcl", manifest
}

// Register registers the arithmetic operations.
func (m *Module) Register(r *catalog.Registry) {
	r.RegisterOperation("arith.constant", "Emits its value.", operation.NewTyped(Constant))
	r.RegisterOperation("arith.add", "Sums its inputs.", operation.NewTyped(fold("add", 0, func(a, b float64) float64 { return a + b })))
	r.RegisterOperation("arith.multiply", "Multiplies its inputs.", operation.NewTyped(fold("multiply", 1, func(a, b float64) float64 { return a * b })))
	r.RegisterOperation("arith.repeat", "Repeats its inputs count times.", operation.NewTyped(Repeat))
}
