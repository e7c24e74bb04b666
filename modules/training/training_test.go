package training

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/modules/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func invoke(t *testing.T, op operation.Operation, named map[string]cty.Value, inputs ...cty.Value) (cty.Value, error) {
	t.Helper()
	args := operation.NewArgs()
	for k, v := range named {
		args.Add(k, v)
	}
	args.Positional = inputs
	return op.Invoke(ctxlog.Discard(context.Background()), args)
}

func model(t *testing.T) cty.Value {
	t.Helper()
	input := layers.Describe("Input", map[string]cty.Value{"shape": cty.TupleVal([]cty.Value{cty.NumberIntVal(4)})}, nil)
	dense := layers.Describe("Dense", map[string]cty.Value{"activation": cty.StringVal("relu")}, []cty.Value{input})
	out, err := invoke(t, operation.NewTyped(CompileModel), map[string]cty.Value{
		"optimizer": optimizer("adam", map[string]cty.Value{"learning_rate": cty.NumberFloatVal(0.001)}),
		"loss":      cty.ObjectVal(map[string]cty.Value{"loss": cty.StringVal("mean_squared_error")}),
		"metrics":   cty.NullVal(cty.DynamicPseudoType),
	}, dense)
	require.NoError(t, err)
	return out
}

func TestCompileModel(t *testing.T) {
	m := model(t)
	assert.True(t, m.GetAttr("layers").RawEquals(cty.NumberIntVal(2)))
	assert.True(t, m.GetAttr("metrics").RawEquals(cty.EmptyTupleVal))

	op := operation.NewTyped(CompileModel)
	null := cty.NullVal(cty.DynamicPseudoType)
	layer := layers.Describe("Flatten", nil, nil)
	loss := cty.ObjectVal(map[string]cty.Value{"loss": cty.StringVal("x")})

	testCases := []struct {
		name    string
		named   map[string]cty.Value
		outputs []cty.Value
		msg     string
	}{
		{name: "no outputs", named: map[string]cty.Value{"optimizer": loss, "loss": loss, "metrics": null}, msg: "no output layer is linked to the model"},
		{name: "no optimizer", named: map[string]cty.Value{"optimizer": null, "loss": loss, "metrics": null}, outputs: []cty.Value{layer}, msg: "optimizer is not linked"},
		{name: "no loss", named: map[string]cty.Value{"optimizer": loss, "loss": null, "metrics": null}, outputs: []cty.Value{layer}, msg: "loss is not linked"},
		{name: "output without value", named: map[string]cty.Value{"optimizer": loss, "loss": loss, "metrics": null}, outputs: []cty.Value{null}, msg: "output 0 has no layer value yet"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := invoke(t, op, tc.named, tc.outputs...)
			require.Error(t, err)
			assert.Equal(t, operation.CodeFailedPrecondition, operation.CodeOf(err))
			assert.EqualError(t, err, tc.msg)
		})
	}

	metric := cty.ObjectVal(map[string]cty.Value{"metric": cty.StringVal("accuracy")})
	out, err := invoke(t, op, map[string]cty.Value{"optimizer": loss, "loss": loss, "metrics": metric}, layer)
	require.NoError(t, err)
	assert.Equal(t, 1, out.GetAttr("metrics").LengthInt(), "a single metric becomes a one-element tuple")
}

func TestFitModel(t *testing.T) {
	op := operation.NewTyped(FitModel)
	shape := func(n int64) cty.Value {
		return cty.ObjectVal(map[string]cty.Value{"shape": cty.TupleVal([]cty.Value{cty.NumberIntVal(n), cty.NumberIntVal(4), cty.NumberIntVal(1)})})
	}
	args := func(epochs int64, y cty.Value) map[string]cty.Value {
		return map[string]cty.Value{
			"model":      model(t),
			"x":          shape(100),
			"y":          y,
			"epochs":     cty.NumberIntVal(epochs),
			"batch_size": cty.NumberIntVal(32),
		}
	}

	out, err := invoke(t, op, args(3, shape(100)))
	require.NoError(t, err)
	assert.True(t, out.GetAttr("steps_per_epoch").RawEquals(cty.NumberIntVal(4)))
	assert.Equal(t, 3, out.GetAttr("history").LengthInt())

	for _, epochs := range []int64{0, -5} {
		_, err = invoke(t, op, args(epochs, shape(100)))
		require.Error(t, err)
		assert.Equal(t, operation.CodeInvalidArgument, operation.CodeOf(err))
		assert.Contains(t, err.Error(), "epochs must be positive")
	}

	_, err = invoke(t, op, args(1, shape(99)))
	assert.EqualError(t, err, "x has 100 samples but y has 99")

	_, err = invoke(t, op, args(1, cty.NullVal(cty.DynamicPseudoType)))
	assert.Equal(t, operation.CodeFailedPrecondition, operation.CodeOf(err))
}

func TestOptimizers(t *testing.T) {
	out, err := invoke(t, operation.NewTyped(SGD), map[string]cty.Value{
		"learning_rate": cty.NumberFloatVal(0.01),
		"momentum":      cty.NumberFloatVal(0.9),
		"nesterov":      cty.True,
	})
	require.NoError(t, err)
	assert.Equal(t, "sgd", out.GetAttr("optimizer").AsString())
	assert.True(t, out.GetAttr("config").GetAttr("nesterov").True())

	_, err = invoke(t, operation.NewTyped(Adam), map[string]cty.Value{"learning_rate": cty.NumberFloatVal(0)})
	assert.Equal(t, operation.CodeInvalidArgument, operation.CodeOf(err))

	_, err = invoke(t, operation.NewTyped(RMSprop), map[string]cty.Value{
		"learning_rate": cty.NumberFloatVal(0.001),
		"momentum":      cty.NumberFloatVal(-1),
	})
	assert.Equal(t, operation.CodeInvalidArgument, operation.CodeOf(err))
}

func TestNamedOperations(t *testing.T) {
	out, err := invoke(t, named("loss", "mean_squared_error"), nil)
	require.NoError(t, err)
	assert.Equal(t, "mean_squared_error", out.GetAttr("loss").AsString())
}

func TestSaveAndPlotModel(t *testing.T) {
	dir := t.TempDir()
	m := model(t)

	jsonPath := filepath.Join(dir, "model.json")
	_, err := invoke(t, operation.NewTyped(SaveModel), map[string]cty.Value{"model": m, "filepath": cty.StringVal(jsonPath)})
	require.NoError(t, err)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	back, err := ctyjson.Unmarshal(data, m.Type())
	require.NoError(t, err)
	assert.True(t, back.GetAttr("layers").RawEquals(cty.NumberIntVal(2)))

	plotPath := filepath.Join(dir, "model.txt")
	_, err = invoke(t, operation.NewTyped(PlotModel), map[string]cty.Value{
		"model":                  m,
		"to_file":                cty.StringVal(plotPath),
		"show_layer_names":       cty.True,
		"show_layer_activations": cty.True,
	})
	require.NoError(t, err)
	plotted, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.Equal(t, "- Dense (relu)\n  - Input\n", string(plotted))

	_, err = invoke(t, operation.NewTyped(SaveModel), map[string]cty.Value{"model": m, "filepath": cty.StringVal("")})
	assert.Equal(t, operation.CodeInvalidArgument, operation.CodeOf(err))
}
