package arith

import (
	"context"
	"errors"

	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var errNull = errors.New("value is null")

// ConstantArgs are the arguments of Constant.
type ConstantArgs struct {
	Value float64 `cty:"value"`
}

// Constant returns its value.
func Constant(_ context.Context, in *ConstantArgs, _ []cty.Value) (any, error) {
	return cty.NumberFloatVal(in.Value), nil
}

// NoArgs is used by operations that take positional inputs only.
type NoArgs struct{}

// fold reduces the positional inputs with fn, starting from identity.
func fold(name string, identity float64, fn func(a, b float64) float64) func(context.Context, *NoArgs, []cty.Value) (any, error) {
	return func(_ context.Context, _ *NoArgs, inputs []cty.Value) (any, error) {
		acc := identity
		for i, v := range inputs {
			f, err := number(v)
			if err != nil {
				return nil, operation.InvalidArgument("%s: input %d: %v", name, i, err)
			}
			acc = fn(acc, f)
		}
		return cty.NumberFloatVal(acc), nil
	}
}

func number(v cty.Value) (float64, error) {
	if v.IsNull() {
		return 0, errNull
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, err
	}
	f, _ := n.AsBigFloat().Float64()
	return f, nil
}

// RepeatArgs are the arguments of Repeat.
type RepeatArgs struct {
	Count int64 `cty:"count"`
}

// Repeat returns a tuple holding the inputs count times, in order.
func Repeat(_ context.Context, in *RepeatArgs, inputs []cty.Value) (any, error) {
	if in.Count < 0 {
		return nil, operation.InvalidArgument("count must not be negative, got %d", in.Count)
	}
	if in.Count == 0 || len(inputs) == 0 {
		return cty.EmptyTupleVal, nil
	}
	out := make([]cty.Value, 0, int(in.Count)*len(inputs))
	for range in.Count {
		out = append(out, inputs...)
	}
	return cty.TupleVal(out), nil
}
