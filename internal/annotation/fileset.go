package annotation

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// fileSetType is the stored shape of a FileSet value.
var fileSetType = cty.List(cty.String)

// FileSet binds an ordered list of file paths. Tuples and sets of strings
// are normalized to a list on write.
type FileSet struct{}

func (FileSet) Kind() Kind { return KindFileSet }
func (FileSet) Type() cty.Type { return fileSetType }
func (FileSet) String() string { return "fileset" }

func (FileSet) Build(bc BuildContext) *Handle {
	return &Handle{kind: KindFileSet, attr: bc.Attribute, resolver: bc.Resolver, value: cty.ListValEmpty(cty.String)}
}

func (f FileSet) Get(h *Handle) (cty.Value, error) {
	if err := checkKind(f, h); err != nil {
		return cty.NilVal, err
	}
	return h.value, nil
}

func (FileSet) Accepts(v cty.Value) bool {
	_, ok := normalizeFileSet(v)
	return ok
}

func (FileSet) Set(h *Handle, v cty.Value) bool {
	if h == nil || h.kind != KindFileSet {
		return false
	}
	list, ok := normalizeFileSet(v)
	if !ok {
		return false
	}
	h.value = list
	return true
}

func normalizeFileSet(v cty.Value) (cty.Value, bool) {
	if !usable(v) {
		return cty.NilVal, false
	}
	ty := v.Type()
	if !ty.IsListType() && !ty.IsSetType() && !ty.IsTupleType() {
		return cty.NilVal, false
	}
	if v.LengthInt() == 0 {
		return cty.ListValEmpty(cty.String), true
	}
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if !usable(elem) || !elem.Type().Equals(cty.String) || elem.AsString() == "" {
			return cty.NilVal, false
		}
	}
	list, err := convert.Convert(v, fileSetType)
	if err != nil {
		return cty.NilVal, false
	}
	return list, true
}
