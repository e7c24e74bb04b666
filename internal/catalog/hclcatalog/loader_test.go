package hclcatalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/catalog/hclcatalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/parameter"
	"github.com/specialistvlad/neurogrid/modules/arith"
	"github.com/specialistvlad/neurogrid/modules/layers"
	"github.com/specialistvlad/neurogrid/modules/print"
	"github.com/specialistvlad/neurogrid/modules/tables"
	"github.com/specialistvlad/neurogrid/modules/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func ctx() context.Context {
	return ctxlog.Discard(context.Background())
}

func TestLoad_BuiltinModules(t *testing.T) {
	modules := []catalog.Module{&arith.Module{}, &layers.Module{}, &training.Module{}, &tables.Module{}, &print.Module{}}
	reg := catalog.New()
	reg.Install(modules...)

	require.NoError(t, hclcatalog.Load(ctx(), reg, hclcatalog.ModuleSources(modules...)...))
	require.NoError(t, reg.Validate(ctx()))

	var categories []string
	for _, c := range reg.Tree() {
		categories = append(categories, c.Name)
	}
	want := []string{"Demo", "Neural Network Layers", "Training", "Data & Preprocessing"}
	if diff := cmp.Diff(want, categories); diff != "" {
		t.Errorf("category order mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, reg.Classes().IsA("ValueNode", nodeclass.Parameter))

	tablesKind, ok := reg.Kind("Tables data")
	require.True(t, ok)
	assert.False(t, tablesKind.Input)
	assert.True(t, tablesKind.Output)
	shape, ok := tablesKind.Param("shape")
	require.True(t, ok)
	assert.Equal(t, parameter.Output, shape.Role())
	assert.Equal(t, "shape", shape.BackField())
	assert.Equal(t, "sequence(integer, integer, integer)", shape.Annotation().String())

	pool, ok := reg.Kind("MaxPooling2D")
	require.True(t, ok)
	size, ok := pool.Param("pool_size")
	require.True(t, ok)
	def, ok := size.Default()
	require.True(t, ok)
	assert.True(t, def.RawEquals(cty.TupleVal([]cty.Value{cty.NumberIntVal(2), cty.NumberIntVal(2)})))

	compile, ok := reg.Kind("Compile model")
	require.True(t, ok)
	metrics, ok := compile.Param("metrics")
	require.True(t, ok)
	assert.Equal(t, annotation.Multiple, metrics.Cardinality())
	assert.Equal(t, nodeclass.Layer, compile.InputAccepts)

	printKind, ok := reg.Kind("Print")
	require.True(t, ok)
	assert.False(t, printKind.Output)
}

func TestLoad_ClassesAcrossFiles(t *testing.T) {
	reg := catalog.New()
	err := hclcatalog.Load(ctx(), reg,
		hclcatalog.Source{Filename: "b.hcl", Src: []byte(`
class "Leaf" {
  extends = "Middle"
}
`)},
		hclcatalog.Source{Filename: "a.hcl", Src: []byte(`
class "Middle" {
  extends = "ParameterNode"
}
`)},
	)
	require.NoError(t, err)
	assert.True(t, reg.Classes().IsA("Leaf", nodeclass.Parameter))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax",
			src:     `category "x" {`,
			wantErr: "failed to parse manifest",
		},
		{
			name: "wrong attribute type",
			src: `
enum "e" {
  values = "a"
}`,
			wantErr: "failed to decode manifest",
		},
		{
			name: "class with unknown parent",
			src: `
class "Orphan" {
  extends = "Nobody"
}`,
			wantErr: "Orphan extends Nobody",
		},
		{
			name: "enum declared twice",
			src: `
enum "e" {
  values = ["a"]
}
enum "e" {
  values = ["b"]
}`,
			wantErr: "enum 'e' is declared twice",
		},
		{
			name: "empty enum",
			src: `
enum "e" {
  values = []
}`,
			wantErr: "enum 'e' has no values",
		},
		{
			name: "bad default",
			src: `
category "c" {
  subcategory "s" {
    node "N" {
      class     = "LayerNode"
      operation = "op"
      parameter "units" {
        type    = integer
        default = "many"
      }
    }
  }
}`,
			wantErr: "node 'N', parameter 'units'",
		},
		{
			name: "unknown role",
			src: `
category "c" {
  subcategory "s" {
    node "N" {
      class     = "LayerNode"
      operation = "op"
      parameter "units" {
        type = integer
        role = "sideways"
      }
    }
  }
}`,
			wantErr: "unknown role",
		},
		{
			name: "reserved parameter name",
			src: `
category "c" {
  subcategory "s" {
    node "N" {
      class     = "LayerNode"
      operation = "op"
      parameter "INPUT" {
        type = integer
      }
    }
  }
}`,
			wantErr: "is reserved",
		},
		{
			name: "duplicate label",
			src: `
category "c" {
  subcategory "s" {
    node "N" {
      class     = "LayerNode"
      operation = "op"
    }
    node "N" {
      class     = "LayerNode"
      operation = "op"
    }
  }
}`,
			wantErr: "node kind 'N' already registered",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := hclcatalog.Load(ctx(), catalog.New(), hclcatalog.Source{Filename: "test.hcl", Src: []byte(tc.src)})
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestReadPaths(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`enum "a" {
  values = ["x"]
}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "b.hcl"), []byte(""), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	sources, err := hclcatalog.ReadPaths(dir, filepath.Join(dir, "a.hcl"), filepath.Join(dir, "missing"))
	require.NoError(t, err)

	var names []string
	for _, s := range sources {
		names = append(names, s.Filename)
	}
	want := []string{filepath.Join(dir, "a.hcl"), filepath.Join(nested, "b.hcl")}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, hclcatalog.Load(ctx(), catalog.New(), sources...))
}
