package hclcatalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/nodeclass"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToAnnotation converts a parameter type expression into the
// annotation it names. enums holds the named enumerations in scope.
func typeExprToAnnotation(expr hcl.Expression, enums map[string]annotation.Enum) (annotation.Annotation, error) {
	if expr == nil {
		return nil, fmt.Errorf("type expression is missing")
	}

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return nil, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch name := v.Traversal.RootName(); name {
		case "integer", "int":
			return annotation.Integer{}, nil
		case "float", "number":
			return annotation.Float{}, nil
		case "string":
			return annotation.String{}, nil
		case "bool", "boolean":
			return annotation.Boolean{}, nil
		case "fileset":
			return annotation.FileSet{}, nil
		case "noderef":
			return annotation.NodeRef{Class: nodeclass.Root, Cardinality: annotation.Single}, nil
		default:
			return nil, fmt.Errorf("unknown type %q", name)
		}

	case *hclsyntax.FunctionCallExpr:
		switch v.Name {
		case "enum":
			return enumType(v, enums)
		case "sequence":
			if len(v.Args) == 0 {
				return nil, fmt.Errorf("sequence() requires at least one element type")
			}
			elems := make([]annotation.Annotation, 0, len(v.Args))
			for i, arg := range v.Args {
				elem, err := typeExprToAnnotation(arg, enums)
				if err != nil {
					return nil, fmt.Errorf("sequence element %d: %w", i, err)
				}
				if elem.Kind() == annotation.KindNodeRef {
					return nil, fmt.Errorf("sequence element %d: node references cannot be nested in a sequence", i)
				}
				elems = append(elems, elem)
			}
			return annotation.NewSequence(elems...), nil
		case "noderef":
			return nodeRefType(v)
		default:
			return nil, fmt.Errorf("unknown type constructor %q", v.Name)
		}

	default:
		return nil, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func enumType(call *hclsyntax.FunctionCallExpr, enums map[string]annotation.Enum) (annotation.Annotation, error) {
	if len(call.Args) == 0 {
		return nil, fmt.Errorf("enum() requires a named enumeration or at least one value")
	}
	if len(call.Args) == 1 {
		if name := hcl.ExprAsKeyword(call.Args[0]); name != "" {
			e, ok := enums[name]
			if !ok {
				return nil, fmt.Errorf("unknown enumeration %q", name)
			}
			return e, nil
		}
	}
	values := make([]string, 0, len(call.Args))
	seen := make(map[string]bool)
	for i, arg := range call.Args {
		s, err := stringLiteral(arg)
		if err != nil {
			return nil, fmt.Errorf("enum value %d: %w", i, err)
		}
		if seen[s] {
			return nil, fmt.Errorf("enum value %q is listed twice", s)
		}
		seen[s] = true
		values = append(values, s)
	}
	return annotation.NewEnum("", values...), nil
}

func nodeRefType(call *hclsyntax.FunctionCallExpr) (annotation.Annotation, error) {
	ref := annotation.NodeRef{Class: nodeclass.Root, Cardinality: annotation.Single}
	switch len(call.Args) {
	case 0:
		return ref, nil
	case 1, 2:
	default:
		return nil, fmt.Errorf("noderef() takes at most two arguments, got %d", len(call.Args))
	}

	class := hcl.ExprAsKeyword(call.Args[0])
	if class == "" {
		s, err := stringLiteral(call.Args[0])
		if err != nil {
			return nil, fmt.Errorf("noderef class: %w", err)
		}
		class = s
	}
	ref.Class = nodeclass.Class(class)

	if len(call.Args) == 2 {
		switch card := hcl.ExprAsKeyword(call.Args[1]); card {
		case "single":
			ref.Cardinality = annotation.Single
		case "multiple":
			ref.Cardinality = annotation.Multiple
		default:
			return nil, fmt.Errorf("noderef cardinality must be 'single' or 'multiple', got %q", card)
		}
	}
	return ref, nil
}

// stringLiteral evaluates a constant string expression.
func stringLiteral(expr hcl.Expression) (string, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("expected a constant string: %w", diags)
	}
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return "", fmt.Errorf("expected a string, got %s", v.Type().FriendlyName())
	}
	return v.AsString(), nil
}
