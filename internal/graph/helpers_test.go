package graph_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/internal/parameter"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var (
	constantKind = &catalog.NodeKind{
		Label: "Constant", Category: "Demo", Subcategory: "Arithmetic",
		Class: nodeclass.Parameter, Operation: "test.constant", Output: true,
		Params: []catalog.Param{{Name: "value", Param: parameter.New(parameter.Input, annotation.Integer{})}},
	}
	sumKind = &catalog.NodeKind{
		Label: "Sum", Category: "Demo", Subcategory: "Arithmetic",
		Class: nodeclass.Parameter, Operation: "test.sum", Input: true, Output: true,
	}
	pairKind = &catalog.NodeKind{
		Label: "Pair", Category: "Demo", Subcategory: "Arithmetic",
		Class: nodeclass.Parameter, Operation: "test.pair", Output: true,
		Params: []catalog.Param{
			{Name: "left", Param: parameter.New(parameter.Input, annotation.NodeRef{Cardinality: annotation.Single})},
			{Name: "right", Param: parameter.New(parameter.Input, annotation.NodeRef{Cardinality: annotation.Single})},
		},
	}
	layerKind = &catalog.NodeKind{
		Label: "Dense", Category: "Layers", Subcategory: "Core",
		Class: nodeclass.Layer, Operation: "test.layer", Input: true, InputAccepts: nodeclass.Layer, Output: true,
	}
	tableKind = &catalog.NodeKind{
		Label: "Tables data", Category: "Data", Subcategory: "Tables",
		Class: nodeclass.TableData, Operation: "test.table", Output: true,
		Params: []catalog.Param{
			{Name: "rows", Param: parameter.New(parameter.Input, annotation.Integer{}, parameter.WithDefault(cty.NumberIntVal(3)))},
			{Name: "shape", Param: parameter.New(parameter.Output,
				annotation.NewSequence(annotation.Integer{}, annotation.Integer{}),
				parameter.WithBackField("shape"))},
		},
	}
	inputKind = &catalog.NodeKind{
		Label: "Input", Category: "Layers", Subcategory: "Core",
		Class: nodeclass.InputLayer, Operation: "test.input", Output: true,
		Params: []catalog.Param{
			{Name: "shape", Param: parameter.New(parameter.Input, annotation.NodeRef{Class: nodeclass.Data, Cardinality: annotation.Single})},
		},
	}
)

var (
	constantOp = operation.Func(func(_ context.Context, args operation.Args) (cty.Value, error) {
		v, _ := args.Get("value")
		return v, nil
	})
	sumOp = operation.Func(func(_ context.Context, args operation.Args) (cty.Value, error) {
		total := cty.NumberIntVal(0)
		for _, v := range args.Positional {
			if v.IsNull() || !v.Type().Equals(cty.Number) {
				return cty.NilVal, operation.FailedPrecondition("input is not a number")
			}
			total = total.Add(v)
		}
		return total, nil
	})
	pairOp = operation.Func(func(_ context.Context, args operation.Args) (cty.Value, error) {
		l, _ := args.Get("left")
		r, _ := args.Get("right")
		return cty.TupleVal([]cty.Value{l, r}), nil
	})
	layerOp = operation.Func(func(_ context.Context, args operation.Args) (cty.Value, error) {
		return cty.ObjectVal(map[string]cty.Value{"inputs": cty.NumberIntVal(int64(len(args.Positional)))}), nil
	})
	tableOp = operation.Func(func(_ context.Context, args operation.Args) (cty.Value, error) {
		rows, _ := args.Get("rows")
		return cty.ObjectVal(map[string]cty.Value{
			"shape": cty.TupleVal([]cty.Value{rows, cty.NumberIntVal(4)}),
		}), nil
	})
	inputOp = operation.Func(func(_ context.Context, args operation.Args) (cty.Value, error) {
		shape, _ := args.Get("shape")
		return shape, nil
	})
)

var opsByKind = map[*catalog.NodeKind]operation.Operation{
	constantKind: constantOp,
	sumKind:      sumOp,
	pairKind:     pairOp,
	layerKind:    layerOp,
	tableKind:    tableOp,
	inputKind:    inputOp,
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	g   *graph.Graph
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:   t,
		ctx: ctxlog.Discard(context.Background()),
		g:   graph.New(nodeclass.Builtin(), graph.WithStrictInvariants(true)),
	}
}

func (f *fixture) add(kind *catalog.NodeKind) nodeid.NodeID {
	f.t.Helper()
	id, err := f.g.AddNode(f.ctx, kind, opsByKind[kind], "")
	require.NoError(f.t, err)
	return id
}

func (f *fixture) attr(node nodeid.NodeID, name string) nodeid.AttrID {
	f.t.Helper()
	id, ok := f.g.Attr(nodeid.Ref{Node: node, Name: name})
	require.True(f.t, ok, "attribute %s.%s not found", node, name)
	return id
}

func (f *fixture) link(out nodeid.NodeID, outName string, in nodeid.NodeID, inName string) {
	f.t.Helper()
	require.NoError(f.t, f.g.Link(f.ctx, f.attr(out, outName), f.attr(in, inName)))
}

func (f *fixture) set(node nodeid.NodeID, name string, v cty.Value) {
	f.t.Helper()
	ok, err := f.g.SetValue(f.ctx, f.attr(node, name), v)
	require.NoError(f.t, err)
	require.True(f.t, ok)
}
