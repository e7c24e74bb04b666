package builder_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/builder"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/catalog/hclcatalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/parameter"
	"github.com/specialistvlad/neurogrid/modules/arith"
	"github.com/specialistvlad/neurogrid/modules/layers"
	"github.com/specialistvlad/neurogrid/modules/print"
	"github.com/specialistvlad/neurogrid/modules/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type fixture struct {
	t   *testing.T
	ctx context.Context
	b   *builder.Builder
	out *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	out := &bytes.Buffer{}
	modules := []catalog.Module{&arith.Module{}, &layers.Module{}, &tables.Module{}, &print.Module{Out: out}}

	reg := catalog.New()
	reg.Install(modules...)
	require.NoError(t, hclcatalog.Load(ctx, reg, hclcatalog.ModuleSources(modules...)...))
	require.NoError(t, reg.Validate(ctx))

	g := graph.New(reg.Classes(), graph.WithStrictInvariants(true))
	return &fixture{t: t, ctx: ctx, b: builder.New(reg, g), out: out}
}

func (f *fixture) build(label string) nodeid.NodeID {
	f.t.Helper()
	id, err := f.b.BuildNode(f.ctx, label)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) attr(id nodeid.NodeID, name string) nodeid.AttrID {
	f.t.Helper()
	n, ok := f.b.Graph().Node(id)
	require.True(f.t, ok)
	a, ok := n.Attr(name)
	require.True(f.t, ok, "node %s has no attribute %s", n.Label(), name)
	return a
}

func (f *fixture) link(from nodeid.NodeID, out string, to nodeid.NodeID, in string) {
	f.t.Helper()
	require.NoError(f.t, f.b.Graph().Link(f.ctx, f.attr(from, out), f.attr(to, in)))
}

func (f *fixture) set(id nodeid.NodeID, name string, v cty.Value) {
	f.t.Helper()
	ok, err := f.b.Graph().SetValue(f.ctx, f.attr(id, name), v)
	require.NoError(f.t, err)
	require.True(f.t, ok, "value rejected by %s", name)
}

func (f *fixture) node(id nodeid.NodeID) *graph.Node {
	f.t.Helper()
	n, ok := f.b.Graph().Node(id)
	require.True(f.t, ok)
	return n
}

func TestBuildNode(t *testing.T) {
	f := newFixture(t)

	add := f.build("Add")
	n := f.node(add)
	assert.Equal(t, "Sums every linked value.", n.Doc())
	assert.Equal(t, nodeclass.Class("ValueNode"), n.Class())
	assert.True(t, f.b.Graph().IsSource(add))

	constant := f.build("Constant")
	assert.Equal(t, "Emits its value.", f.node(constant).Doc(), "falls back to the operation doc")

	_, err := f.b.BuildNode(f.ctx, "Teleporter")
	assert.ErrorIs(t, err, builder.ErrUnknownKind)

	_, err = f.b.BuildKind(f.ctx, &catalog.NodeKind{
		Label: "Ghost", Category: "c", Subcategory: "s", Class: nodeclass.Utils, Operation: "ghost.op",
	})
	assert.ErrorIs(t, err, builder.ErrUnknownOperation)
	assert.Equal(t, 2, f.b.Graph().Len())
}

func TestCompileGraph_Sum(t *testing.T) {
	f := newFixture(t)
	x := f.build("Constant")
	y := f.build("Constant")
	sum := f.build("Add")
	f.set(x, "value", cty.NumberIntVal(2))
	f.set(y, "value", cty.NumberIntVal(3))
	f.link(x, catalog.OutputPort, sum, catalog.InputPort)
	f.link(y, catalog.OutputPort, sum, catalog.InputPort)

	res, err := f.b.CompileGraph(f.ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []nodeid.NodeID{x, y, sum}, res.Visited)
	assert.Empty(t, res.Failed)

	got, _ := f.node(sum).Output().AsBigFloat().Float64()
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestCompileGraph_FailureBlocksPrint(t *testing.T) {
	f := newFixture(t)
	x := f.build("Constant")
	rep := f.build("Repeat")
	p := f.build("Print")
	f.set(rep, "count", cty.NumberIntVal(-1))
	f.link(x, catalog.OutputPort, rep, catalog.InputPort)
	f.link(rep, catalog.OutputPort, p, catalog.InputPort)

	res, err := f.b.CompileGraph(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []nodeid.NodeID{rep}, res.Failed)
	assert.Equal(t, []nodeid.NodeID{p}, res.Blocked)

	st := f.node(rep).State()
	assert.Equal(t, graph.Errored, st.Phase)
	assert.Equal(t, graph.TagInvalidInput, st.Tag)
	assert.Contains(t, st.Message, "count must not be negative")
	assert.Empty(t, f.out.String(), "blocked print must not run")

	f.set(rep, "count", cty.NumberIntVal(2))
	_, err = f.b.CompileGraph(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "[0,0]\n", f.out.String())
}

func TestBuildInput_ShapedByTable(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "iris.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,label\n1,2,3,0\n4,5,6,1\n"), 0o600))

	data := f.build("Tables data")
	f.set(data, "files", cty.ListVal([]cty.Value{cty.StringVal(path)}))
	f.set(data, "skip_header", cty.True)

	input, err := f.b.BuildInput(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Input", f.node(input).Label())
	assert.Equal(t, nodeclass.InputLayer, f.node(input).Class())
	_, hasPort := f.node(input).Attr(catalog.InputPort)
	assert.False(t, hasPort)

	dense := f.build("Dense")
	f.link(data, catalog.OutputPort, input, "shape")
	f.link(input, catalog.OutputPort, dense, catalog.InputPort)
	assert.Equal(t, []nodeid.NodeID{data}, f.b.Graph().Sources())

	res, err := f.b.CompileGraph(f.ctx)
	require.NoError(t, err)
	require.Empty(t, res.Failed)

	want := cty.TupleVal([]cty.Value{cty.NumberIntVal(2), cty.NumberIntVal(4), cty.NumberIntVal(1)})
	field, ok := f.node(data).Field("shape")
	require.True(t, ok)
	assert.True(t, field.RawEquals(want), "back-field holds the table shape")

	inputOut := f.node(input).Output()
	assert.True(t, inputOut.GetAttr("config").GetAttr("shape").RawEquals(want))
	assert.True(t, layers.IsLayer(f.node(dense).Output()))
}

func TestBuildInput_RejectsNonDataShape(t *testing.T) {
	f := newFixture(t)
	x := f.build("Constant")
	input, err := f.b.BuildInput(f.ctx)
	require.NoError(t, err)

	err = f.b.Graph().Link(f.ctx, f.attr(x, catalog.OutputPort), f.attr(input, "shape"))
	var linkErr *graph.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, graph.ReasonTypeMismatch, linkErr.Reason)
}

func TestBuildInput_OnePerGraph(t *testing.T) {
	f := newFixture(t)
	first, err := f.b.BuildInput(f.ctx)
	require.NoError(t, err)

	_, err = f.b.BuildInput(f.ctx)
	assert.ErrorIs(t, err, builder.ErrInputExists)
	assert.ErrorIs(t, err, graph.ErrStructural)
	assert.Equal(t, 1, f.b.Graph().Len())

	got, ok := f.b.Input()
	require.True(t, ok)
	assert.Equal(t, first, got)

	require.NoError(t, f.b.Graph().DeleteNode(f.ctx, first))
	_, ok = f.b.Input()
	assert.False(t, ok)

	second, err := f.b.BuildInput(f.ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestBuildKind_AppliesCatalogChecks(t *testing.T) {
	testCases := []struct {
		name   string
		params []catalog.Param
		want   string
	}{
		{
			name:   "parameter named OUTPUT",
			params: []catalog.Param{{Name: catalog.OutputPort, Param: parameter.New(parameter.Input, annotation.Integer{})}},
			want:   "parameter name 'OUTPUT' is reserved",
		},
		{
			name:   "parameter named INPUT",
			params: []catalog.Param{{Name: catalog.InputPort, Param: parameter.New(parameter.Input, annotation.Integer{})}},
			want:   "parameter name 'INPUT' is reserved",
		},
		{
			name: "duplicate parameter",
			params: []catalog.Param{
				{Name: "n", Param: parameter.New(parameter.Input, annotation.Integer{})},
				{Name: "n", Param: parameter.New(parameter.Input, annotation.Float{})},
			},
			want: "unique",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.b.BuildKind(f.ctx, &catalog.NodeKind{
				Label: "Shadow", Category: "c", Subcategory: "s", Class: nodeclass.Utils,
				Operation: "arith.constant", Output: true, Params: tc.params,
			})
			assert.ErrorIs(t, err, builder.ErrInvalidKind)
			assert.ErrorContains(t, err, tc.want)
			assert.Zero(t, f.b.Graph().Len())
		})
	}

	f := newFixture(t)
	_, err := f.b.BuildKind(f.ctx, nil)
	assert.ErrorIs(t, err, builder.ErrInvalidKind)
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	var names []string
	for _, c := range f.b.Catalog() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Demo", "Neural Network Layers", "Data & Preprocessing"}, names)
	for _, c := range f.b.Catalog() {
		for _, s := range c.Subcategories {
			for _, k := range s.Kinds {
				assert.NotEqual(t, "Input", k.Label, "Input is built with BuildInput only")
			}
		}
	}
}
