package hclcatalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/fsutil"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/specialistvlad/neurogrid/internal/parameter"
)

// Source is one manifest in memory.
type Source struct {
	Filename string
	Src      []byte
}

// Manifested is implemented by operation modules that ship their own
// manifest.
type Manifested interface {
	Manifest() (filename string, src []byte)
}

// ModuleSources collects the manifests of every module that has one.
func ModuleSources(modules ...catalog.Module) []Source {
	var out []Source
	for _, m := range modules {
		if mm, ok := m.(Manifested); ok {
			name, src := mm.Manifest()
			out = append(out, Source{Filename: name, Src: src})
		}
	}
	return out
}

// ReadPaths reads every .hcl file under the given files and directories.
// Paths that do not exist are skipped.
func ReadPaths(paths ...string) ([]Source, error) {
	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	out := make([]Source, 0, len(files))
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", file, err)
		}
		out = append(out, Source{Filename: file, Src: src})
	}
	return out, nil
}

// Load parses every source and adds the classes and node kinds they declare
// to reg.
func Load(ctx context.Context, reg *catalog.Registry, sources ...Source) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL catalog loader started.", "sources", len(sources))

	parser := hclparse.NewParser()
	roots := make([]*fileRoot, 0, len(sources))
	for _, s := range sources {
		file, diags := parser.ParseHCL(s.Src, s.Filename)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse manifest %s: %w", s.Filename, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
			return fmt.Errorf("failed to decode manifest %s: %w", s.Filename, diags)
		}
		roots = append(roots, &root)
	}

	if err := declareClasses(reg.Classes(), roots); err != nil {
		return err
	}
	enums, err := collectEnums(roots)
	if err != nil {
		return err
	}

	kinds := 0
	for _, root := range roots {
		for _, cat := range root.Categories {
			for _, sub := range cat.Subcategories {
				for _, n := range sub.Nodes {
					kind, err := translateNode(cat.Name, sub.Name, n, enums)
					if err != nil {
						return err
					}
					if err := reg.AddKind(kind); err != nil {
						return err
					}
					kinds++
				}
			}
		}
	}

	logger.Debug("HCL catalog loading complete.", "kinds", kinds, "enums", len(enums))
	return nil
}

// declareClasses declares classes in dependency order so a class may
// extend one declared later or in another file.
func declareClasses(h *nodeclass.Hierarchy, roots []*fileRoot) error {
	var pending []*classBlock
	for _, root := range roots {
		pending = append(pending, root.Classes...)
	}
	for len(pending) > 0 {
		var next []*classBlock
		for _, c := range pending {
			if !h.Known(nodeclass.Class(c.Extends)) {
				next = append(next, c)
				continue
			}
			if err := h.Declare(nodeclass.Class(c.Name), nodeclass.Class(c.Extends)); err != nil {
				return err
			}
		}
		if len(next) == len(pending) {
			names := make([]string, len(next))
			for i, c := range next {
				names[i] = fmt.Sprintf("%s extends %s", c.Name, c.Extends)
			}
			return fmt.Errorf("classes extend unknown classes: %s", strings.Join(names, ", "))
		}
		pending = next
	}
	return nil
}

func collectEnums(roots []*fileRoot) (map[string]annotation.Enum, error) {
	enums := make(map[string]annotation.Enum)
	for _, root := range roots {
		for _, e := range root.Enums {
			if _, exists := enums[e.Name]; exists {
				return nil, fmt.Errorf("enum '%s' is declared twice", e.Name)
			}
			if len(e.Values) == 0 {
				return nil, fmt.Errorf("enum '%s' has no values", e.Name)
			}
			enums[e.Name] = annotation.NewEnum(e.Name, e.Values...)
		}
	}
	return enums, nil
}

func translateNode(category, subcategory string, n *nodeBlock, enums map[string]annotation.Enum) (*catalog.NodeKind, error) {
	kind := &catalog.NodeKind{
		Label:        n.Label,
		Category:     category,
		Subcategory:  subcategory,
		Class:        nodeclass.Class(n.Class),
		Operation:    n.Operation,
		Doc:          strings.TrimSpace(n.Doc),
		Input:        n.Input == nil || *n.Input,
		InputAccepts: nodeclass.Class(n.InputAccepts),
		Output:       n.Output == nil || *n.Output,
	}
	for _, p := range n.Parameters {
		param, err := translateParameter(p, enums)
		if err != nil {
			return nil, fmt.Errorf("node '%s', parameter '%s': %w", n.Label, p.Name, err)
		}
		kind.Params = append(kind.Params, catalog.Param{Name: p.Name, Param: param})
	}
	return kind, nil
}

func translateParameter(p *parameterBlock, enums map[string]annotation.Enum) (*parameter.Parameter, error) {
	role, err := parameter.ParseRole(p.Role)
	if err != nil {
		return nil, err
	}
	ann, err := typeExprToAnnotation(p.Type, enums)
	if err != nil {
		return nil, err
	}
	var opts []parameter.Option
	if p.Default != nil && !p.Default.IsNull() {
		opts = append(opts, parameter.WithDefault(*p.Default))
	}
	if p.BackField != "" {
		opts = append(opts, parameter.WithBackField(p.BackField))
	}
	param := parameter.New(role, ann, opts...)
	if err := param.Validate(); err != nil {
		return nil, err
	}
	return param, nil
}
