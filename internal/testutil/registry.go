package testutil

import (
	"context"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/catalog/hclcatalog"
	"github.com/stretchr/testify/require"
)

// Registry installs modules, loads their manifests and validates the
// catalog, failing t on any error.
func Registry(t *testing.T, ctx context.Context, modules ...catalog.Module) *catalog.Registry {
	t.Helper()
	reg := catalog.New()
	reg.Install(modules...)
	require.NoError(t, hclcatalog.Load(ctx, reg, hclcatalog.ModuleSources(modules...)...))
	require.NoError(t, reg.Validate(ctx))
	return reg
}
