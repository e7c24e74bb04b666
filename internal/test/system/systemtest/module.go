package systemtest

import (
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/operation"
)

// Module is an inline module for tests: a manifest and the operations it
// names.
type Module struct {
	Name string
	HCL  string
	Ops  map[string]operation.Func
}

// Manifest returns the inline manifest.
func (m *Module) Manifest() (string, []byte) {
	return m.Name + ".hcl", []byte(m.HCL)
}

// Register registers every operation under its key.
func (m *Module) Register(r *catalog.Registry) {
	for name, fn := range m.Ops {
		r.RegisterOperation(name, "", fn)
	}
}
