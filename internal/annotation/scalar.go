package annotation

import (
	"github.com/zclconf/go-cty/cty"
)

// scalar holds the behaviour shared by the single-value variants.
type scalar struct {
	kind    Kind
	zero    cty.Value
	accepts func(cty.Value) bool
}

func (s scalar) build(bc BuildContext) *Handle {
	return &Handle{kind: s.kind, attr: bc.Attribute, resolver: bc.Resolver, value: s.zero}
}

func (s scalar) get(a Annotation, h *Handle) (cty.Value, error) {
	if err := checkKind(a, h); err != nil {
		return cty.NilVal, err
	}
	return h.value, nil
}

func (s scalar) set(h *Handle, v cty.Value) bool {
	if h == nil || h.kind != s.kind || !s.accepts(v) {
		return false
	}
	h.value = v
	return true
}

// Boolean binds a true/false value.
type Boolean struct{}

var booleanScalar = scalar{
	kind: KindBoolean,
	zero: cty.False,
	accepts: func(v cty.Value) bool {
		return usable(v) && v.Type().Equals(cty.Bool)
	},
}

func (Boolean) Kind() Kind { return KindBoolean }
func (Boolean) Type() cty.Type { return cty.Bool }
func (Boolean) String() string { return "bool" }
func (Boolean) Build(bc BuildContext) *Handle { return booleanScalar.build(bc) }
func (b Boolean) Get(h *Handle) (cty.Value, error) { return booleanScalar.get(b, h) }
func (Boolean) Set(h *Handle, v cty.Value) bool { return booleanScalar.set(h, v) }
func (Boolean) Accepts(v cty.Value) bool { return booleanScalar.accepts(v) }

// Integer binds a whole number. Fractional numbers are rejected.
type Integer struct{}

var integerScalar = scalar{
	kind: KindInteger,
	zero: cty.NumberIntVal(0),
	accepts: func(v cty.Value) bool {
		return usable(v) && v.Type().Equals(cty.Number) && v.AsBigFloat().IsInt()
	},
}

func (Integer) Kind() Kind { return KindInteger }
func (Integer) Type() cty.Type { return cty.Number }
func (Integer) String() string { return "integer" }
func (Integer) Build(bc BuildContext) *Handle { return integerScalar.build(bc) }
func (i Integer) Get(h *Handle) (cty.Value, error) { return integerScalar.get(i, h) }
func (Integer) Set(h *Handle, v cty.Value) bool { return integerScalar.set(h, v) }
func (Integer) Accepts(v cty.Value) bool { return integerScalar.accepts(v) }

// Float binds any number.
type Float struct{}

var floatScalar = scalar{
	kind: KindFloat,
	zero: cty.NumberFloatVal(0),
	accepts: func(v cty.Value) bool {
		return usable(v) && v.Type().Equals(cty.Number)
	},
}

func (Float) Kind() Kind { return KindFloat }
func (Float) Type() cty.Type { return cty.Number }
func (Float) String() string { return "float" }
func (Float) Build(bc BuildContext) *Handle { return floatScalar.build(bc) }
func (f Float) Get(h *Handle) (cty.Value, error) { return floatScalar.get(f, h) }
func (Float) Set(h *Handle, v cty.Value) bool { return floatScalar.set(h, v) }
func (Float) Accepts(v cty.Value) bool { return floatScalar.accepts(v) }

// String binds free text.
type String struct{}

var stringScalar = scalar{
	kind: KindString,
	zero: cty.StringVal(""),
	accepts: func(v cty.Value) bool {
		return usable(v) && v.Type().Equals(cty.String)
	},
}

func (String) Kind() Kind { return KindString }
func (String) Type() cty.Type { return cty.String }
func (String) String() string { return "string" }
func (String) Build(bc BuildContext) *Handle { return stringScalar.build(bc) }
func (s String) Get(h *Handle) (cty.Value, error) { return stringScalar.get(s, h) }
func (String) Set(h *Handle, v cty.Value) bool { return stringScalar.set(h, v) }
func (String) Accepts(v cty.Value) bool { return stringScalar.accepts(v) }
