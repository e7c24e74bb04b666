package catalog

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/specialistvlad/neurogrid/internal/operation"
)

// RegisteredOperation is a compiled operation together with what the
// catalog knows about it.
type RegisteredOperation struct {
	Name string
	Doc  string
	Op   operation.Operation
	// InputType is the struct named arguments decode into, nil for
	// untyped operations.
	InputType reflect.Type
}

// inputTyped is implemented by operation.Typed.
type inputTyped interface {
	InputType() reflect.Type
}

// RegisterOperation registers a Go operation under name. Registering the
// same name twice is a programming error.
func (r *Registry) RegisterOperation(name, doc string, op operation.Operation) {
	if op == nil {
		panic(fmt.Sprintf("operation '%s' registered with a nil implementation", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.operations[name]; exists {
		panic(fmt.Sprintf("operation with name '%s' already registered", name))
	}
	reg := &RegisteredOperation{Name: name, Doc: doc, Op: op}
	if typed, ok := op.(inputTyped); ok {
		reg.InputType = typed.InputType()
	}
	slog.Debug("Registering operation.", "name", name, "typed", reg.InputType != nil)
	r.operations[name] = reg
}

// Operation looks up a registered operation.
func (r *Registry) Operation(name string) (*RegisteredOperation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operations[name]
	return op, ok
}

// OperationNames lists registered operations in lexical order.
func (r *Registry) OperationNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.operations))
	for name := range r.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
