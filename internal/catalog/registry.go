package catalog

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
)

// Module is the interface that all operation modules implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the operations, classes and node kinds of one
// application instance.
type Registry struct {
	mu         sync.RWMutex
	classes    *nodeclass.Hierarchy
	operations map[string]*RegisteredOperation
	kinds      map[string]*NodeKind
	order      []*NodeKind
	validate   *validator.Validate
}

// New creates a Registry seeded with the built-in class hierarchy.
func New() *Registry {
	return &Registry{
		classes:    nodeclass.Builtin(),
		operations: make(map[string]*RegisteredOperation),
		kinds:      make(map[string]*NodeKind),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Classes returns the class hierarchy used for link-time type checks.
func (r *Registry) Classes() *nodeclass.Hierarchy {
	return r.classes
}

// Install registers every module.
func (r *Registry) Install(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
	slog.Debug("Operation modules installed.", "count", len(modules))
}

// CheckKind validates a node kind without storing it.
func (r *Registry) CheckKind(k *NodeKind) error {
	if k == nil {
		return fmt.Errorf("node kind is nil")
	}
	if err := r.validate.Struct(k); err != nil {
		return fmt.Errorf("node kind '%s' is invalid: %w", k.Label, err)
	}
	for _, p := range k.Params {
		if p.Name == InputPort || p.Name == OutputPort {
			return fmt.Errorf("node kind '%s': parameter name '%s' is reserved", k.Label, p.Name)
		}
		if err := p.Param.Validate(); err != nil {
			return fmt.Errorf("node kind '%s', parameter '%s': %w", k.Label, p.Name, err)
		}
	}
	return nil
}

// AddKind validates and stores a node kind. Labels are unique across the
// whole catalog.
func (r *Registry) AddKind(k *NodeKind) error {
	if err := r.CheckKind(k); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[k.Label]; exists {
		return fmt.Errorf("node kind '%s' already registered", k.Label)
	}
	slog.Debug("Registering node kind.", "label", k.Label, "category", k.Category, "subcategory", k.Subcategory)
	r.kinds[k.Label] = k
	r.order = append(r.order, k)
	return nil
}

// MustAddKind is AddKind for kinds declared in Go code, where a failure is
// a programming error.
func (r *Registry) MustAddKind(k *NodeKind) {
	if err := r.AddKind(k); err != nil {
		panic(err)
	}
}

// Kind looks up a node kind by label.
func (r *Registry) Kind(label string) (*NodeKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[label]
	return k, ok
}

// Kinds returns every node kind in registration order.
func (r *Registry) Kinds() []*NodeKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*NodeKind, len(r.order))
	copy(out, r.order)
	return out
}
