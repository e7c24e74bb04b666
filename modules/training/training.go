package training

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/modules/layers"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// named builds the operation of parameterless losses and metrics.
func named(field, name string) operation.Operation {
	return operation.Func(func(context.Context, operation.Args) (cty.Value, error) {
		return cty.ObjectVal(map[string]cty.Value{field: cty.StringVal(name)}), nil
	})
}

// CompileArgs are the arguments of Compile model.
type CompileArgs struct {
	Optimizer cty.Value `cty:"optimizer"`
	Loss      cty.Value `cty:"loss"`
	Metrics   cty.Value `cty:"metrics"`
}

// CompileModel gathers the output layers, optimizer, loss and metrics into
// one model description.
func CompileModel(ctx context.Context, in *CompileArgs, outputs []cty.Value) (any, error) {
	if len(outputs) == 0 {
		return nil, operation.FailedPrecondition("no output layer is linked to the model")
	}
	for i, out := range outputs {
		if !layers.IsLayer(out) {
			return nil, operation.FailedPrecondition("output %d has no layer value yet", i)
		}
	}
	if in.Optimizer.IsNull() {
		return nil, operation.FailedPrecondition("optimizer is not linked")
	}
	if in.Loss.IsNull() {
		return nil, operation.FailedPrecondition("loss is not linked")
	}

	count := 0
	for _, out := range outputs {
		count += layers.Count(out)
	}
	ctxlog.FromContext(ctx).Debug("Model compiled.", "outputs", len(outputs), "layers", count)

	return cty.ObjectVal(map[string]cty.Value{
		"outputs":   cty.TupleVal(outputs),
		"layers":    cty.NumberIntVal(int64(count)),
		"optimizer": in.Optimizer,
		"loss":      in.Loss,
		"metrics":   asTuple(in.Metrics),
	}), nil
}

// asTuple normalizes a node reference value to a tuple.
func asTuple(v cty.Value) cty.Value {
	switch {
	case v.IsNull():
		return cty.EmptyTupleVal
	case v.Type().IsTupleType():
		return v
	default:
		return cty.TupleVal([]cty.Value{v})
	}
}

// FitArgs are the arguments of Fit model.
type FitArgs struct {
	Model     cty.Value `cty:"model"`
	X         cty.Value `cty:"x"`
	Y         cty.Value `cty:"y"`
	Epochs    int64     `cty:"epochs"`
	BatchSize int64     `cty:"batch_size"`
}

// FitModel plans a training run and reports its schedule.
func FitModel(ctx context.Context, in *FitArgs, _ []cty.Value) (any, error) {
	if in.Epochs <= 0 {
		return nil, operation.InvalidArgument("epochs must be positive, got %d", in.Epochs)
	}
	if in.BatchSize <= 0 {
		return nil, operation.InvalidArgument("batch_size must be positive, got %d", in.BatchSize)
	}
	if in.Model.IsNull() {
		return nil, operation.FailedPrecondition("model is not linked")
	}
	if in.X.IsNull() || in.Y.IsNull() {
		return nil, operation.FailedPrecondition("both x and y must be linked")
	}

	samples, ok := leadingDim(in.X)
	if !ok {
		return nil, operation.InvalidArgument("x does not describe a shaped dataset")
	}
	if ySamples, ok := leadingDim(in.Y); ok && ySamples != samples {
		return nil, operation.InvalidArgument("x has %d samples but y has %d", samples, ySamples)
	}

	steps := (samples + in.BatchSize - 1) / in.BatchSize
	history := make([]cty.Value, in.Epochs)
	for i := range history {
		history[i] = cty.NumberIntVal(int64(i + 1))
	}
	ctxlog.FromContext(ctx).Info("Fit planned.", "epochs", in.Epochs, "samples", samples, "steps_per_epoch", steps)

	return cty.ObjectVal(map[string]cty.Value{
		"epochs":          cty.NumberIntVal(in.Epochs),
		"batch_size":      cty.NumberIntVal(in.BatchSize),
		"samples":         cty.NumberIntVal(samples),
		"steps_per_epoch": cty.NumberIntVal(steps),
		"history":         cty.TupleVal(history),
	}), nil
}

// leadingDim reads the first dimension of a shape or of a value carrying
// one.
func leadingDim(v cty.Value) (int64, bool) {
	if v.IsNull() || !v.IsKnown() {
		return 0, false
	}
	if v.Type().IsObjectType() {
		if !v.Type().HasAttribute("shape") {
			return 0, false
		}
		v = v.GetAttr("shape")
	}
	if v.IsNull() || !(v.Type().IsTupleType() || v.Type().IsListType()) || v.LengthInt() == 0 {
		return 0, false
	}
	first := v.Index(cty.NumberIntVal(0))
	if first.IsNull() || !first.Type().Equals(cty.Number) {
		return 0, false
	}
	n, _ := first.AsBigFloat().Int64()
	return n, true
}

// AdamArgs are the arguments of the Adam optimizer.
type AdamArgs struct {
	LearningRate float64 `cty:"learning_rate"`
}

func Adam(_ context.Context, in *AdamArgs, _ []cty.Value) (any, error) {
	if in.LearningRate <= 0 {
		return nil, operation.InvalidArgument("learning_rate must be positive, got %g", in.LearningRate)
	}
	return optimizer("adam", map[string]cty.Value{"learning_rate": cty.NumberFloatVal(in.LearningRate)}), nil
}

// SGDArgs are the arguments of the SGD optimizer.
type SGDArgs struct {
	LearningRate float64 `cty:"learning_rate"`
	Momentum     float64 `cty:"momentum"`
	Nesterov     bool    `cty:"nesterov"`
}

func SGD(_ context.Context, in *SGDArgs, _ []cty.Value) (any, error) {
	if in.LearningRate <= 0 {
		return nil, operation.InvalidArgument("learning_rate must be positive, got %g", in.LearningRate)
	}
	if in.Momentum < 0 {
		return nil, operation.InvalidArgument("momentum must not be negative, got %g", in.Momentum)
	}
	return optimizer("sgd", map[string]cty.Value{
		"learning_rate": cty.NumberFloatVal(in.LearningRate),
		"momentum":      cty.NumberFloatVal(in.Momentum),
		"nesterov":      cty.BoolVal(in.Nesterov),
	}), nil
}

// RMSpropArgs are the arguments of the RMSprop optimizer.
type RMSpropArgs struct {
	LearningRate float64 `cty:"learning_rate"`
	Momentum     float64 `cty:"momentum"`
}

func RMSprop(_ context.Context, in *RMSpropArgs, _ []cty.Value) (any, error) {
	if in.LearningRate <= 0 {
		return nil, operation.InvalidArgument("learning_rate must be positive, got %g", in.LearningRate)
	}
	if in.Momentum < 0 {
		return nil, operation.InvalidArgument("momentum must not be negative, got %g", in.Momentum)
	}
	return optimizer("rmsprop", map[string]cty.Value{
		"learning_rate": cty.NumberFloatVal(in.LearningRate),
		"momentum":      cty.NumberFloatVal(in.Momentum),
	}), nil
}

func optimizer(name string, config map[string]cty.Value) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"optimizer": cty.StringVal(name),
		"config":    cty.ObjectVal(config),
	})
}

// SaveArgs are the arguments of Save model.
type SaveArgs struct {
	Model    cty.Value `cty:"model"`
	Filepath string    `cty:"filepath"`
}

// SaveModel writes the model description as JSON.
func SaveModel(ctx context.Context, in *SaveArgs, _ []cty.Value) (any, error) {
	if in.Filepath == "" {
		return nil, operation.InvalidArgument("filepath cannot be empty")
	}
	if in.Model.IsNull() {
		return nil, operation.FailedPrecondition("model is not linked")
	}
	data, err := ctyjson.Marshal(in.Model, in.Model.Type())
	if err != nil {
		return nil, operation.Internal(fmt.Errorf("failed to encode model: %w", err))
	}
	if err := os.WriteFile(in.Filepath, data, 0o644); err != nil {
		return nil, operation.Internal(fmt.Errorf("failed to write model: %w", err))
	}
	ctxlog.FromContext(ctx).Info("Model saved.", "path", in.Filepath, "bytes", len(data))
	return nil, nil
}

// PlotArgs are the arguments of Plot model.
type PlotArgs struct {
	Model                cty.Value `cty:"model"`
	ToFile               string    `cty:"to_file"`
	ShowLayerNames       bool      `cty:"show_layer_names"`
	ShowLayerActivations bool      `cty:"show_layer_activations"`
}

// PlotModel writes an indented tree of the model layers, outputs first.
func PlotModel(ctx context.Context, in *PlotArgs, _ []cty.Value) (any, error) {
	if in.ToFile == "" {
		return nil, operation.InvalidArgument("to_file cannot be empty")
	}
	if in.Model.IsNull() || !in.Model.Type().IsObjectType() || !in.Model.Type().HasAttribute("outputs") {
		return nil, operation.FailedPrecondition("model is not linked")
	}
	var sb strings.Builder
	for it := in.Model.GetAttr("outputs").ElementIterator(); it.Next(); {
		_, out := it.Element()
		plot(&sb, out, 0, in)
	}
	if err := os.WriteFile(in.ToFile, []byte(sb.String()), 0o644); err != nil {
		return nil, operation.Internal(fmt.Errorf("failed to write plot: %w", err))
	}
	ctxlog.FromContext(ctx).Info("Model plotted.", "path", in.ToFile)
	return nil, nil
}

func plot(sb *strings.Builder, layer cty.Value, depth int, in *PlotArgs) {
	if !layers.IsLayer(layer) {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	if in.ShowLayerNames {
		sb.WriteString(layer.GetAttr("layer").AsString())
	} else {
		sb.WriteString("layer")
	}
	if in.ShowLayerActivations {
		cfg := layer.GetAttr("config")
		if cfg.Type().IsObjectType() && cfg.Type().HasAttribute("activation") {
			fmt.Fprintf(sb, " (%s)", cfg.GetAttr("activation").AsString())
		}
	}
	sb.WriteByte('\n')
	for it := layer.GetAttr("inputs").ElementIterator(); it.Next(); {
		_, child := it.Element()
		plot(sb, child, depth+1, in)
	}
}
