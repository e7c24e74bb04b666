package layers

import (
	"context"

	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/zclconf/go-cty/cty"
)

// Describe builds the value every layer operation returns.
func Describe(layer string, config map[string]cty.Value, inputs []cty.Value) cty.Value {
	cfg := cty.EmptyObjectVal
	if len(config) > 0 {
		cfg = cty.ObjectVal(config)
	}
	ins := cty.EmptyTupleVal
	if len(inputs) > 0 {
		ins = cty.TupleVal(inputs)
	}
	return cty.ObjectVal(map[string]cty.Value{
		"layer":  cty.StringVal(layer),
		"config": cfg,
		"inputs": ins,
	})
}

// IsLayer reports whether v is a value built by Describe.
func IsLayer(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() || !v.Type().IsObjectType() {
		return false
	}
	return v.Type().HasAttribute("layer") && v.Type().HasAttribute("inputs")
}

// Count returns the number of layer descriptions reachable from v,
// v included.
func Count(v cty.Value) int {
	if !IsLayer(v) {
		return 0
	}
	n := 1
	for it := v.GetAttr("inputs").ElementIterator(); it.Next(); {
		_, in := it.Element()
		n += Count(in)
	}
	return n
}

func checkInputs(layer string, inputs []cty.Value, minimum, maximum int) error {
	if len(inputs) < minimum || (maximum > 0 && len(inputs) > maximum) {
		if minimum == maximum {
			return operation.InvalidArgument("%s takes exactly %d input(s), got %d", layer, minimum, len(inputs))
		}
		return operation.InvalidArgument("%s takes at least %d inputs, got %d", layer, minimum, len(inputs))
	}
	for i, in := range inputs {
		if in.IsNull() {
			return operation.FailedPrecondition("%s input %d has no value yet", layer, i)
		}
		if !IsLayer(in) {
			return operation.InvalidArgument("%s input %d is not a layer", layer, i)
		}
	}
	return nil
}

func positive(name string, v int64) error {
	if v <= 0 {
		return operation.InvalidArgument("%s must be positive, got %d", name, v)
	}
	return nil
}

// InputArgs are the arguments of the Input layer.
type InputArgs struct {
	Shape cty.Value `cty:"shape"`
}

// BuildInput starts a model. The shape comes from a data node, either as
// the shape itself or as a data node output carrying one.
func BuildInput(_ context.Context, in *InputArgs, _ []cty.Value) (any, error) {
	shape := in.Shape
	if shape.IsNull() {
		return nil, operation.FailedPrecondition("shape is not linked to a data source")
	}
	if shape.Type().IsObjectType() && shape.Type().HasAttribute("shape") {
		shape = shape.GetAttr("shape")
	}
	if !shape.IsKnown() || shape.IsNull() || !(shape.Type().IsTupleType() || shape.Type().IsListType()) || shape.LengthInt() == 0 {
		return nil, operation.InvalidArgument("shape must be a non-empty sequence of integers")
	}
	for it := shape.ElementIterator(); it.Next(); {
		_, dim := it.Element()
		if dim.IsNull() || !dim.Type().Equals(cty.Number) {
			return nil, operation.InvalidArgument("shape must be a non-empty sequence of integers")
		}
	}
	return Describe("Input", map[string]cty.Value{"shape": shape}, nil), nil
}

// DenseArgs are the arguments of the Dense layer.
type DenseArgs struct {
	Units      int64  `cty:"units"`
	Activation string `cty:"activation"`
	UseBias    bool   `cty:"use_bias"`
}

func BuildDense(_ context.Context, in *DenseArgs, inputs []cty.Value) (any, error) {
	if err := positive("units", in.Units); err != nil {
		return nil, err
	}
	if err := checkInputs("Dense", inputs, 1, 1); err != nil {
		return nil, err
	}
	return Describe("Dense", map[string]cty.Value{
		"units":      cty.NumberIntVal(in.Units),
		"activation": cty.StringVal(in.Activation),
		"use_bias":   cty.BoolVal(in.UseBias),
	}, inputs), nil
}

// Conv2DArgs are the arguments of the Conv2D layer.
type Conv2DArgs struct {
	Filters    int64  `cty:"filters"`
	KernelSize int64  `cty:"kernel_size"`
	Strides    int64  `cty:"strides"`
	Padding    string `cty:"padding"`
	Activation string `cty:"activation"`
	UseBias    bool   `cty:"use_bias"`
}

func BuildConv2D(_ context.Context, in *Conv2DArgs, inputs []cty.Value) (any, error) {
	if err := positive("filters", in.Filters); err != nil {
		return nil, err
	}
	if err := positive("kernel_size", in.KernelSize); err != nil {
		return nil, err
	}
	if err := positive("strides", in.Strides); err != nil {
		return nil, err
	}
	if err := checkInputs("Conv2D", inputs, 1, 1); err != nil {
		return nil, err
	}
	return Describe("Conv2D", map[string]cty.Value{
		"filters":     cty.NumberIntVal(in.Filters),
		"kernel_size": cty.NumberIntVal(in.KernelSize),
		"strides":     cty.NumberIntVal(in.Strides),
		"padding":     cty.StringVal(in.Padding),
		"activation":  cty.StringVal(in.Activation),
		"use_bias":    cty.BoolVal(in.UseBias),
	}, inputs), nil
}

// MaxPooling2DArgs are the arguments of the MaxPooling2D layer.
type MaxPooling2DArgs struct {
	PoolSize cty.Value `cty:"pool_size"`
	Strides  int64     `cty:"strides"`
	Padding  string    `cty:"padding"`
}

func BuildMaxPooling2D(_ context.Context, in *MaxPooling2DArgs, inputs []cty.Value) (any, error) {
	for it := in.PoolSize.ElementIterator(); it.Next(); {
		_, dim := it.Element()
		if dim.LessThanOrEqualTo(cty.Zero).True() {
			return nil, operation.InvalidArgument("pool_size dimensions must be positive")
		}
	}
	if err := positive("strides", in.Strides); err != nil {
		return nil, err
	}
	if err := checkInputs("MaxPooling2D", inputs, 1, 1); err != nil {
		return nil, err
	}
	return Describe("MaxPooling2D", map[string]cty.Value{
		"pool_size": in.PoolSize,
		"strides":   cty.NumberIntVal(in.Strides),
		"padding":   cty.StringVal(in.Padding),
	}, inputs), nil
}

// NoArgs is the argument struct of layers without parameters.
type NoArgs struct{}

func BuildFlatten(_ context.Context, _ *NoArgs, inputs []cty.Value) (any, error) {
	if err := checkInputs("Flatten", inputs, 1, 1); err != nil {
		return nil, err
	}
	return Describe("Flatten", nil, inputs), nil
}

// merge builds layers that combine two or more inputs.
func merge(layer string) func(context.Context, *NoArgs, []cty.Value) (any, error) {
	return func(_ context.Context, _ *NoArgs, inputs []cty.Value) (any, error) {
		if err := checkInputs(layer, inputs, 2, 0); err != nil {
			return nil, err
		}
		return Describe(layer, nil, inputs), nil
	}
}
