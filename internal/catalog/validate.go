package catalog

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/neurogrid/internal/annotation"
	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/parameter"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var ctyValueType = reflect.TypeOf(cty.Value{})

// Validate performs a strict parity check between node kinds and Go code:
// every kind must name a registered operation and known classes, and typed
// operations must declare exactly the kind's input parameters with
// compatible types.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, k := range r.Kinds() {
		if !r.classes.Known(k.Class) {
			errs = append(errs, fmt.Sprintf("kind '%s': unknown class '%s'", k.Label, k.Class))
		}
		if k.InputAccepts != "" && !r.classes.Known(k.InputAccepts) {
			errs = append(errs, fmt.Sprintf("kind '%s': INPUT accepts unknown class '%s'", k.Label, k.InputAccepts))
		}
		for _, p := range k.Params {
			if ref, ok := p.Param.Annotation().(annotation.NodeRef); ok && !r.classes.Known(ref.AcceptedClass()) {
				errs = append(errs, fmt.Sprintf("kind '%s', parameter '%s': accepts unknown class '%s'", k.Label, p.Name, ref.AcceptedClass()))
			}
		}

		op, ok := r.Operation(k.Operation)
		if !ok {
			errs = append(errs, fmt.Sprintf("kind '%s': operation '%s' is not registered", k.Label, k.Operation))
			continue
		}
		if op.InputType == nil {
			continue
		}
		errs = append(errs, r.checkInputParity(ctx, k, op)...)
	}

	if len(errs) > 0 {
		logger.Error("Catalog validation failed.", "problems", len(errs))
		return fmt.Errorf("catalog validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Catalog validation passed.", "kinds", len(r.Kinds()), "operations", len(r.OperationNames()))
	return nil
}

func (r *Registry) checkInputParity(ctx context.Context, k *NodeKind, op *RegisteredOperation) []string {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	manifestInputs := make(map[string]*parameter.Parameter)
	for _, p := range k.Params {
		if p.Param.Role() != parameter.Output {
			manifestInputs[p.Name] = p.Param
		}
	}

	goInputs := make(map[string]reflect.StructField)
	inputType := op.InputType
	if inputType.Kind() != reflect.Struct {
		return []string{fmt.Sprintf("kind '%s': operation '%s' input type %s is not a struct", k.Label, op.Name, inputType)}
	}
	for i := 0; i < inputType.NumField(); i++ {
		field := inputType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagName := strings.Split(field.Tag.Get("cty"), ",")[0]
		if tagName != "" && tagName != "-" {
			goInputs[tagName] = field
		}
	}

	for name := range goInputs {
		if _, ok := manifestInputs[name]; !ok {
			errs = append(errs, fmt.Sprintf("kind '%s': Go struct has field for input '%s' which is not declared in the catalog", k.Label, name))
		}
	}
	for name := range manifestInputs {
		if _, ok := goInputs[name]; !ok {
			errs = append(errs, fmt.Sprintf("kind '%s': catalog declares input '%s' which is not found in Go struct", k.Label, name))
		}
	}

	for name, p := range manifestInputs {
		goField, ok := goInputs[name]
		if !ok {
			continue
		}
		if goField.Type == ctyValueType {
			continue
		}

		manifestType := p.Annotation().Type()
		if manifestType.Equals(cty.DynamicPseudoType) {
			logger.Warn("Node reference decoded into a static Go type, decoding is only checked at compile time.", "kind", k.Label, "input", name, "goType", goField.Type.String())
			continue
		}

		goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
		if err != nil {
			errs = append(errs, fmt.Sprintf("kind '%s', input '%s': could not imply cty type from Go field type %s: %v", k.Label, name, goField.Type, err))
			continue
		}
		if !manifestType.Equals(goFieldType) {
			errs = append(errs, fmt.Sprintf("kind '%s', input '%s': type mismatch. Catalog requires '%s' but Go struct field '%s' provides '%s'",
				k.Label, name, manifestType.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
		}
	}
	return errs
}
