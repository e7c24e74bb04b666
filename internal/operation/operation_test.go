package operation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type repeatInput struct {
	Text  string `cty:"text"`
	Count int    `cty:"count"`
}

type repeatOutput struct {
	Joined string `cty:"joined"`
	Count  int    `cty:"count"`
}

func repeat(_ context.Context, in *repeatInput, _ []cty.Value) (any, error) {
	if in.Count < 0 {
		return nil, InvalidArgument("count must not be negative, got %d", in.Count)
	}
	out := ""
	for i := 0; i < in.Count; i++ {
		out += in.Text
	}
	return repeatOutput{Joined: out, Count: in.Count}, nil
}

func TestTyped_Invoke(t *testing.T) {
	op := NewTyped(repeat)
	assert.Equal(t, reflect.TypeOf(repeatInput{}), op.InputType())

	t.Run("decodes and encodes", func(t *testing.T) {
		args := NewArgs()
		args.Add("text", cty.StringVal("ab"))
		args.Add("count", cty.NumberIntVal(3))

		got, err := op.Invoke(context.Background(), args)
		require.NoError(t, err)
		assert.Equal(t, "ababab", got.GetAttr("joined").AsString())
	})

	t.Run("operation error keeps its code", func(t *testing.T) {
		args := NewArgs()
		args.Add("text", cty.StringVal("ab"))
		args.Add("count", cty.NumberIntVal(-1))

		_, err := op.Invoke(context.Background(), args)
		require.Error(t, err)
		assert.Equal(t, CodeInvalidArgument, CodeOf(err))
		assert.Equal(t, "count must not be negative, got -1", err.Error())
	})

	t.Run("undecodable arguments are invalid", func(t *testing.T) {
		testCases := map[string]func(*Args){
			"missing field": func(a *Args) { a.Add("text", cty.StringVal("x")) },
			"extra field": func(a *Args) {
				a.Add("text", cty.StringVal("x"))
				a.Add("count", cty.NumberIntVal(1))
				a.Add("bogus", cty.True)
			},
			"null field": func(a *Args) {
				a.Add("text", cty.NullVal(cty.String))
				a.Add("count", cty.NumberIntVal(1))
			},
			"fraction": func(a *Args) {
				a.Add("text", cty.StringVal("x"))
				a.Add("count", cty.NumberFloatVal(1.5))
			},
		}
		for name, build := range testCases {
			t.Run(name, func(t *testing.T) {
				args := NewArgs()
				build(&args)
				_, err := op.Invoke(context.Background(), args)
				require.Error(t, err)
				assert.Equal(t, CodeInvalidArgument, CodeOf(err))
				assert.ErrorContains(t, err, "failed to decode arguments")
			})
		}
	})
}

func TestTyped_RawValues(t *testing.T) {
	type input struct {
		Ref cty.Value `cty:"ref"`
	}
	op := NewTyped(func(_ context.Context, in *input, positional []cty.Value) (any, error) {
		return cty.ObjectVal(map[string]cty.Value{
			"ref_null":   cty.BoolVal(in.Ref.IsNull()),
			"positional": cty.NumberIntVal(int64(len(positional))),
		}), nil
	})

	args := NewArgs()
	args.Add("ref", cty.NullVal(cty.DynamicPseudoType))
	args.Positional = []cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}

	got, err := op.Invoke(context.Background(), args)
	require.NoError(t, err)
	assert.True(t, got.GetAttr("ref_null").True())
	assert.True(t, got.GetAttr("positional").RawEquals(cty.NumberIntVal(2)))
}

func TestCodeOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: 0},
		{name: "invalid", err: InvalidArgument("bad"), want: CodeInvalidArgument},
		{name: "precondition", err: FailedPrecondition("later"), want: CodeFailedPrecondition},
		{name: "wrapped", err: fmt.Errorf("outer: %w", InvalidArgument("bad")), want: CodeInvalidArgument},
		{name: "canceled", err: context.Canceled, want: CodeCanceled},
		{name: "deadline", err: fmt.Errorf("x: %w", context.DeadlineExceeded), want: CodeCanceled},
		{name: "plain", err: errors.New("boom"), want: CodeInternal},
		{name: "internal", err: Internal(errors.New("boom")), want: CodeInternal},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CodeOf(tc.err))
		})
	}
	assert.Equal(t, "invalid_argument", CodeInvalidArgument.String())
}

func TestArgs(t *testing.T) {
	args := NewArgs()
	args.Add("b", cty.NumberIntVal(1))
	args.Add("a", cty.NumberIntVal(2))
	args.Add("b", cty.NumberIntVal(3))

	assert.Equal(t, []string{"b", "a"}, args.Names())
	v, ok := args.Get("b")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(3)))

	assert.True(t, Args{}.Object().RawEquals(cty.EmptyObjectVal))

	var zero Args
	zero.Add("x", cty.True)
	assert.Equal(t, []string{"x"}, zero.Names())
}

func TestToValue(t *testing.T) {
	v, err := ToValue(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = ToValue([]string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, v.Type().Equals(cty.List(cty.String)))

	_, err = ToValue(make(chan int))
	assert.ErrorContains(t, err, "unable to infer cty.Type")
}
