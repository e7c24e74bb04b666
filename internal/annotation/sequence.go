package annotation

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Sequence binds a fixed-length tuple whose positions are each bound by
// their own annotation.
type Sequence struct {
	Elems []Annotation
}

// NewSequence returns a Sequence over elems.
func NewSequence(elems ...Annotation) Sequence {
	return Sequence{Elems: elems}
}

func (Sequence) Kind() Kind { return KindSequence }

func (s Sequence) Type() cty.Type {
	types := make([]cty.Type, len(s.Elems))
	for i, e := range s.Elems {
		types[i] = e.Type()
	}
	return cty.Tuple(types)
}

func (s Sequence) String() string {
	parts := make([]string, len(s.Elems))
	for i, e := range s.Elems {
		parts[i] = e.String()
	}
	return "sequence(" + strings.Join(parts, ", ") + ")"
}

func (s Sequence) Build(bc BuildContext) *Handle {
	h := &Handle{kind: KindSequence, attr: bc.Attribute, resolver: bc.Resolver}
	h.elems = make([]*Handle, len(s.Elems))
	for i, e := range s.Elems {
		h.elems[i] = e.Build(bc)
	}
	return h
}

func (s Sequence) Get(h *Handle) (cty.Value, error) {
	if err := checkKind(s, h); err != nil {
		return cty.NilVal, err
	}
	if len(h.elems) != len(s.Elems) {
		return cty.NilVal, &MismatchError{Want: KindSequence, Got: KindSequence}
	}
	if len(s.Elems) == 0 {
		return cty.EmptyTupleVal, nil
	}
	vals := make([]cty.Value, len(s.Elems))
	for i, e := range s.Elems {
		v, err := e.Get(h.elems[i])
		if err != nil {
			return cty.NilVal, err
		}
		vals[i] = v
	}
	return cty.TupleVal(vals), nil
}

func (s Sequence) Accepts(v cty.Value) bool {
	_, ok := s.split(v)
	return ok
}

// Set writes every position in index order, or nothing at all when the
// arity or any element is rejected.
func (s Sequence) Set(h *Handle, v cty.Value) bool {
	if h == nil || h.kind != KindSequence || len(h.elems) != len(s.Elems) {
		return false
	}
	vals, ok := s.split(v)
	if !ok {
		return false
	}
	for i, e := range s.Elems {
		if !e.Set(h.elems[i], vals[i]) {
			// Unreachable when split validated every element.
			return false
		}
	}
	return true
}

// split validates v against the sequence shape and returns its elements.
func (s Sequence) split(v cty.Value) ([]cty.Value, bool) {
	if !usable(v) {
		return nil, false
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, false
	}
	if v.LengthInt() != len(s.Elems) {
		return nil, false
	}
	vals := v.AsValueSlice()
	for i, e := range s.Elems {
		if !e.Accepts(vals[i]) {
			return nil, false
		}
	}
	return vals, true
}
