// Package nodeclass models the inheritance tree of node classes. Link-time
// type checks ask whether the class of an upstream node is the accepted
// class or one of its descendants.
package nodeclass

import (
	"fmt"
	"sort"
	"sync"
)

// Class names a node class, e.g. "LayerNode".
type Class string

// Root is the ancestor of every class.
const Root Class = "AbstractNode"

// Classes declared by Builtin.
const (
	Parameter  Class = "ParameterNode"
	Data       Class = "DataNode"
	TableData  Class = "TableDataNode"
	ImageData  Class = "ImageDataNode"
	Pipeline   Class = "PipelineNode"
	Fit        Class = "FitNode"
	Compile    Class = "CompileNode"
	Metric     Class = "MetricNode"
	Layer      Class = "LayerNode"
	InputLayer Class = "InputLayerNode"
	Optimizer  Class = "OptimizerNode"
	Loss       Class = "LossNode"
	Utils      Class = "UtilsNode"
)

// Hierarchy maps every declared class to its parent. It is safe for
// concurrent use.
type Hierarchy struct {
	mu      sync.RWMutex
	parents map[Class]Class
}

// New returns a hierarchy containing only Root.
func New() *Hierarchy {
	return &Hierarchy{parents: map[Class]Class{Root: ""}}
}

// Builtin returns the hierarchy every catalog starts from.
func Builtin() *Hierarchy {
	h := New()
	for _, decl := range []struct{ class, parent Class }{
		{Parameter, Root},
		{Data, Parameter},
		{TableData, Data},
		{ImageData, Data},
		{Fit, Data},
		{Compile, Parameter},
		{Pipeline, Parameter},
		{Metric, Parameter},
		{Layer, Root},
		{InputLayer, Layer},
		{Optimizer, Root},
		{Loss, Root},
		{Utils, Root},
	} {
		if err := h.Declare(decl.class, decl.parent); err != nil {
			panic(err)
		}
	}
	return h
}

// Declare adds class as a child of parent. Redeclaring a class with the
// same parent is a no-op.
func (h *Hierarchy) Declare(class, parent Class) error {
	if class == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if class == Root {
		return fmt.Errorf("class '%s' is the root and cannot be redeclared", Root)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.parents[parent]; !ok {
		return fmt.Errorf("class '%s' extends unknown class '%s'", class, parent)
	}
	if existing, ok := h.parents[class]; ok {
		if existing != parent {
			return fmt.Errorf("class '%s' already extends '%s', cannot extend '%s'", class, existing, parent)
		}
		return nil
	}
	h.parents[class] = parent
	return nil
}

// Known reports whether class has been declared.
func (h *Hierarchy) Known(class Class) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.parents[class]
	return ok
}

// IsA reports whether class is ancestor or one of its descendants.
// Unknown classes are never an instance of anything.
func (h *Hierarchy) IsA(class, ancestor Class) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.parents[ancestor]; !ok {
		return false
	}
	for c := class; c != ""; {
		if c == ancestor {
			return true
		}
		parent, ok := h.parents[c]
		if !ok {
			return false
		}
		c = parent
	}
	return false
}

// Parent returns the parent of class and whether class is known.
func (h *Hierarchy) Parent(class Class) (Class, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.parents[class]
	return p, ok
}

// Classes lists every declared class in lexical order.
func (h *Hierarchy) Classes() []Class {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Class, 0, len(h.parents))
	for c := range h.parents {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
