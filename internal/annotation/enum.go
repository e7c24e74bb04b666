package annotation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Enum binds one string out of a fixed list of values. The first value is
// the initial selection.
type Enum struct {
	Name   string
	Values []string
}

// NewEnum returns an Enum over values. It panics when values is empty
// since no initial selection exists.
func NewEnum(name string, values ...string) Enum {
	if len(values) == 0 {
		panic(fmt.Sprintf("annotation: enum %q declared without values", name))
	}
	return Enum{Name: name, Values: values}
}

func (Enum) Kind() Kind { return KindEnum }
func (Enum) Type() cty.Type { return cty.String }

func (e Enum) String() string {
	if e.Name != "" {
		return fmt.Sprintf("enum(%s)", e.Name)
	}
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("enum(%s)", strings.Join(quoted, ", "))
}

func (e Enum) Build(bc BuildContext) *Handle {
	h := &Handle{kind: KindEnum, attr: bc.Attribute, resolver: bc.Resolver}
	if len(e.Values) > 0 {
		h.value = cty.StringVal(e.Values[0])
	} else {
		h.value = cty.NullVal(cty.String)
	}
	return h
}

func (e Enum) Get(h *Handle) (cty.Value, error) {
	if err := checkKind(e, h); err != nil {
		return cty.NilVal, err
	}
	return h.value, nil
}

func (e Enum) Accepts(v cty.Value) bool {
	if !usable(v) || !v.Type().Equals(cty.String) {
		return false
	}
	return slices.Contains(e.Values, v.AsString())
}

func (e Enum) Set(h *Handle, v cty.Value) bool {
	if h == nil || h.kind != KindEnum || !e.Accepts(v) {
		return false
	}
	h.value = v
	return true
}
