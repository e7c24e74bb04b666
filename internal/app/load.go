package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/catalog/hclcatalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
)

// LoadRegistry installs modules, loads their manifests plus any found under
// catalogPath, and validates the result.
func LoadRegistry(ctx context.Context, catalogPath string, modules ...catalog.Module) (*catalog.Registry, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading catalog...", "modules", len(modules), "catalog_path", catalogPath)

	reg := catalog.New()
	reg.Install(modules...)

	sources := hclcatalog.ModuleSources(modules...)
	if catalogPath != "" {
		extra, err := hclcatalog.ReadPaths(catalogPath)
		if err != nil {
			return nil, err
		}
		logger.Debug("Extra manifests found.", "count", len(extra))
		sources = append(sources, extra...)
	}

	if err := hclcatalog.Load(ctx, reg, sources...); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}

	logger.Info("Catalog loaded.", "kinds", len(reg.Kinds()), "operations", len(reg.OperationNames()))
	return reg, nil
}
