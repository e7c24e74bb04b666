// Package parameter pairs an annotation with the role it plays on a node.
package parameter

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/zclconf/go-cty/cty"
)

// Role says how an attribute participates in the graph.
type Role uint8

const (
	// Input attributes feed the node's operation.
	Input Role = iota
	// Output attributes expose a value to downstream nodes.
	Output
	// Static attributes are shown but never linked.
	Static
)

func (r Role) String() string {
	switch r {
	case Input:
		return "input"
	case Output:
		return "output"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole parses the textual role used in catalog manifests.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "input", "":
		return Input, nil
	case "output":
		return Output, nil
	case "static":
		return Static, nil
	default:
		return 0, fmt.Errorf("unknown role %q: must be 'input', 'output', or 'static'", s)
	}
}

// FieldSink receives back-field writes.
type FieldSink interface {
	SetField(name string, v cty.Value)
}

// Parameter declares one named argument of a node kind. It is immutable
// after construction.
type Parameter struct {
	role       Role
	annotation annotation.Annotation
	def        cty.Value
	backField  string
}

// Option configures a Parameter.
type Option func(*Parameter)

// WithDefault sets the value applied when the attribute is built.
func WithDefault(v cty.Value) Option {
	return func(p *Parameter) { p.def = v }
}

// WithBackField mirrors every successful write onto the named field of the
// owning node.
func WithBackField(field string) Option {
	return func(p *Parameter) { p.backField = field }
}

// New creates a Parameter. It panics when ann is nil.
func New(role Role, ann annotation.Annotation, opts ...Option) *Parameter {
	if ann == nil {
		panic("parameter: annotation cannot be nil")
	}
	p := &Parameter{role: role, annotation: ann, def: cty.NilVal}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parameter) Role() Role { return p.role }
func (p *Parameter) Annotation() annotation.Annotation { return p.annotation }
func (p *Parameter) BackField() string { return p.backField }

// Default returns the declared default and whether one exists.
func (p *Parameter) Default() (cty.Value, bool) {
	return p.def, p.def != cty.NilVal
}

// Linkable reports whether edges may target this parameter's attribute.
func (p *Parameter) Linkable() bool {
	return p.role == Input && p.annotation.Kind() == annotation.KindNodeRef
}

// Cardinality returns the declared cardinality of a NodeRef parameter and
// Single for everything else.
func (p *Parameter) Cardinality() annotation.Cardinality {
	if ref, ok := p.annotation.(annotation.NodeRef); ok {
		return ref.Cardinality
	}
	return annotation.Single
}

// Validate checks that the default fits the annotation.
func (p *Parameter) Validate() error {
	if p.def == cty.NilVal {
		return nil
	}
	if p.annotation.Kind() == annotation.KindNodeRef {
		return fmt.Errorf("a %s parameter cannot declare a default", p.annotation)
	}
	if !p.annotation.Accepts(p.def) {
		return fmt.Errorf("default %s does not fit %s", describe(p.def), p.annotation)
	}
	return nil
}

// Build creates the handle for one attribute and applies the default.
func (p *Parameter) Build(bc annotation.BuildContext) (*annotation.Handle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := p.annotation.Build(bc)
	if p.def != cty.NilVal {
		p.annotation.Set(h, p.def)
	}
	return h, nil
}

// GetValue reads the attribute's current value.
func (p *Parameter) GetValue(h *annotation.Handle) (cty.Value, error) {
	return p.annotation.Get(h)
}

// SetValue writes v and, on success, mirrors it onto the back-field.
func (p *Parameter) SetValue(h *annotation.Handle, v cty.Value, sink FieldSink) bool {
	if !p.annotation.Set(h, v) {
		return false
	}
	if p.backField != "" && sink != nil {
		stored, err := p.annotation.Get(h)
		if err != nil {
			stored = v
		}
		sink.SetField(p.backField, stored)
	}
	return true
}

func (p *Parameter) String() string {
	var sb strings.Builder
	sb.WriteString(p.role.String())
	sb.WriteByte(' ')
	sb.WriteString(p.annotation.String())
	if p.backField != "" {
		sb.WriteString(" -> ")
		sb.WriteString(p.backField)
	}
	return sb.String()
}

func describe(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.Type().FriendlyName()
}
