// Package print provides the Print node, which writes the values linked
// into it.
package print

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the catalog.Module interface for this package.
// Out defaults to standard output.
type Module struct {
	Out io.Writer

	mu sync.Mutex
}

// Manifest returns the node kinds this module backs.
func (m *Module) Manifest() (string, []byte) {
	return "print/manifest.hcl", manifest
}

// Input defines the arguments of the print operation.
type Input struct {
	Prefix string `cty:"prefix"`
}

// Print writes one line per positional value, in link order.
func (m *Module) Print(ctx context.Context, in *Input, values []cty.Value) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Printing input.", "values", len(values))

	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(values) == 0 {
		_, err := fmt.Fprintf(out, "%s(null)\n", in.Prefix)
		return nil, err
	}
	for _, v := range values {
		text, err := render(v)
		if err != nil {
			return nil, operation.InvalidArgument("cannot print value: %v", err)
		}
		if _, err := fmt.Fprintf(out, "%s%s\n", in.Prefix, text); err != nil {
			return nil, operation.Internal(fmt.Errorf("failed to write output: %w", err))
		}
	}
	return nil, nil
}

func render(v cty.Value) (string, error) {
	if v.IsNull() {
		return "(null)", nil
	}
	if v.Type() == cty.String {
		return fmt.Sprintf("%q", v.AsString()), nil
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Register registers the print operation.
func (m *Module) Register(r *catalog.Registry) {
	r.RegisterOperation("print", "Writes its inputs.", operation.NewTyped(m.Print))
}
