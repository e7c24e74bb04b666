// Package tables provides the data source and preprocessing operations.
package tables

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
	return "tables/manifest.hcl", manifest
}

// Register registers the data operations.
func (m *Module) Register(r *catalog.Registry) {
	r.RegisterOperation("tables.open", "Reads delimited text files.", operation.NewTyped(OpenTables))
	r.RegisterOperation("tables.images", "Reads image dimensions.", operation.NewTyped(OpenImages))
	r.RegisterOperation("tables.to_categorical", "Converts a class vector to a binary class matrix.", operation.NewTyped(ToCategorical))
}
