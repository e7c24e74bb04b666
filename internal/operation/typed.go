package operation

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Typed is an Operation whose named arguments decode into the `cty`-tagged
// fields of I. Fields typed cty.Value receive the raw argument, which is how
// node references and sequences reach the function.
type Typed[I any] struct {
	fn func(ctx context.Context, in *I, positional []cty.Value) (any, error)
}

// NewTyped wraps fn. The returned value of fn is converted with ToValue.
func NewTyped[I any](fn func(ctx context.Context, in *I, positional []cty.Value) (any, error)) *Typed[I] {
	return &Typed[I]{fn: fn}
}

// InputType returns the struct type arguments decode into.
func (t *Typed[I]) InputType() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}

// Invoke decodes args and calls the wrapped function. Decoding failures are
// reported as invalid arguments.
func (t *Typed[I]) Invoke(ctx context.Context, args Args) (cty.Value, error) {
	in := new(I)
	if err := gocty.FromCtyValue(args.Object(), in); err != nil {
		return cty.NilVal, &Error{Code: CodeInvalidArgument, Err: fmt.Errorf("failed to decode arguments: %w", err)}
	}
	out, err := t.fn(ctx, in, args.Positional)
	if err != nil {
		return cty.NilVal, err
	}
	v, err := ToValue(out)
	if err != nil {
		return cty.NilVal, Internal(fmt.Errorf("failed to encode result: %w", err))
	}
	return v, nil
}

// ToValue converts a native Go value into its corresponding cty.Value.
func ToValue(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return tv, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
