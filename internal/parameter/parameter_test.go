package parameter

import (
	"testing"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type recordingSink map[string]cty.Value

func (r recordingSink) SetField(name string, v cty.Value) { r[name] = v }

func TestParseRole(t *testing.T) {
	testCases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "input", want: Input},
		{in: "", want: Input},
		{in: "OUTPUT", want: Output},
		{in: "static", want: Static},
		{in: "sideways", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRole(tc.in)
			if tc.wantErr {
				assert.ErrorContains(t, err, "unknown role")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, must(ParseRole(got.String())))
		})
	}
}

func must(r Role, err error) Role {
	if err != nil {
		panic(err)
	}
	return r
}

func TestBuild_AppliesDefault(t *testing.T) {
	p := New(Input, annotation.Integer{}, WithDefault(cty.NumberIntVal(32)))
	h, err := p.Build(annotation.BuildContext{})
	require.NoError(t, err)

	v, err := p.GetValue(h)
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(32)))

	def, ok := p.Default()
	assert.True(t, ok)
	assert.True(t, def.RawEquals(cty.NumberIntVal(32)))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		param   *Parameter
		wantErr string
	}{
		{name: "no default", param: New(Input, annotation.Float{})},
		{name: "fitting default", param: New(Input, annotation.Boolean{}, WithDefault(cty.True))},
		{
			name:    "wrong type",
			param:   New(Input, annotation.Integer{}, WithDefault(cty.StringVal("x"))),
			wantErr: "does not fit integer",
		},
		{
			name:    "noderef default",
			param:   New(Input, annotation.NodeRef{}, WithDefault(cty.True)),
			wantErr: "cannot declare a default",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.param.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
			_, buildErr := tc.param.Build(annotation.BuildContext{})
			assert.Error(t, buildErr)
		})
	}
}

func TestSetValue_BackField(t *testing.T) {
	shape := annotation.NewSequence(annotation.Integer{}, annotation.Integer{}, annotation.Integer{})
	p := New(Output, shape, WithBackField("shape"))
	h, err := p.Build(annotation.BuildContext{})
	require.NoError(t, err)

	sink := recordingSink{}
	v := cty.TupleVal([]cty.Value{cty.NumberIntVal(10), cty.NumberIntVal(3), cty.NumberIntVal(1)})
	require.True(t, p.SetValue(h, v, sink))
	require.Contains(t, sink, "shape")
	assert.True(t, sink["shape"].RawEquals(v))

	delete(sink, "shape")
	assert.False(t, p.SetValue(h, cty.NumberIntVal(1), sink))
	assert.NotContains(t, sink, "shape", "a rejected write never reaches the back-field")

	assert.Equal(t, "output sequence(integer, integer, integer) -> shape", p.String())
}

func TestLinkableAndCardinality(t *testing.T) {
	single := New(Input, annotation.NodeRef{Class: nodeclass.Optimizer})
	multi := New(Input, annotation.NodeRef{Cardinality: annotation.Multiple})
	plain := New(Input, annotation.Integer{})
	out := New(Output, annotation.NodeRef{})

	assert.True(t, single.Linkable())
	assert.True(t, multi.Linkable())
	assert.False(t, plain.Linkable())
	assert.False(t, out.Linkable())

	assert.Equal(t, annotation.Single, single.Cardinality())
	assert.Equal(t, annotation.Multiple, multi.Cardinality())
	assert.Equal(t, annotation.Single, plain.Cardinality())

	assert.Panics(t, func() { New(Input, nil) })
}
