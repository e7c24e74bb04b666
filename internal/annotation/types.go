package annotation

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Kind identifies an annotation variant.
type Kind uint8

const (
	KindBoolean Kind = iota + 1
	KindInteger
	KindFloat
	KindString
	KindEnum
	KindFileSet
	KindNodeRef
	KindSequence
)

var kindNames = map[Kind]string{
	KindBoolean:  "boolean",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindString:   "string",
	KindEnum:     "enum",
	KindFileSet:  "fileset",
	KindNodeRef:  "noderef",
	KindSequence: "sequence",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Cardinality says how many incoming links a NodeRef attribute accepts.
type Cardinality uint8

const (
	// Single allows at most one incoming link.
	Single Cardinality = iota
	// Multiple allows any number of incoming links.
	Multiple
)

func (c Cardinality) String() string {
	if c == Multiple {
		return "multiple"
	}
	return "single"
}

// ErrTypeMismatch is the sentinel wrapped by MismatchError.
var ErrTypeMismatch = errors.New("annotation type mismatch")

// MismatchError is returned by Get when a handle does not belong to the
// annotation variant reading it.
type MismatchError struct {
	Want Kind
	Got  Kind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("annotation type mismatch: %s annotation cannot read a handle built as %s", e.Want, e.Got)
}

func (e *MismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// Resolver supplies the values linked into an attribute, in link order.
type Resolver interface {
	Upstream(attr nodeid.AttrID) []cty.Value
}

// BuildContext carries what a handle needs to know about its attribute.
type BuildContext struct {
	Attribute nodeid.AttrID
	Resolver  Resolver
}

// Handle is the live storage of one attribute's value. It is not safe for
// concurrent use; the graph serializes access.
type Handle struct {
	kind     Kind
	attr     nodeid.AttrID
	resolver Resolver
	value    cty.Value
	elems    []*Handle
}

// Kind returns the variant that built the handle.
func (h *Handle) Kind() Kind {
	if h == nil {
		return 0
	}
	return h.kind
}

// Attribute returns the attribute the handle was built for.
func (h *Handle) Attribute() nodeid.AttrID {
	return h.attr
}

// Annotation is the capability set shared by every variant.
type Annotation interface {
	Kind() Kind
	// Type is the cty type of the values the annotation reads.
	Type() cty.Type
	Build(bc BuildContext) *Handle
	Get(h *Handle) (cty.Value, error)
	Set(h *Handle, v cty.Value) bool
	// Accepts reports whether Set would store v.
	Accepts(v cty.Value) bool
	String() string
}

func checkKind(a Annotation, h *Handle) error {
	if h == nil || h.kind != a.Kind() {
		return &MismatchError{Want: a.Kind(), Got: h.Kind()}
	}
	return nil
}

// usable reports whether v is a concrete value that can be stored.
func usable(v cty.Value) bool {
	return v != cty.NilVal && !v.IsNull() && v.IsWhollyKnown()
}
