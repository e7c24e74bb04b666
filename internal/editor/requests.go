package editor

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

// RequestError reports a request that is well-formed JSON but cannot be
// acted on, e.g. a value that does not decode.
type RequestError struct {
	Field string
	Err   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// BuildNodeRequest builds a node of the catalog kind with the given label.
// The label "Input" builds the model entry point.
type BuildNodeRequest struct {
	Label string `json:"label" validate:"required"`
}

// LinkRequest names an edge from an output-side attribute to an input-side
// one.
type LinkRequest struct {
	Out string `json:"out" validate:"required,attr"`
	In  string `json:"in" validate:"required,attr"`
}

// DeleteNodeRequest deletes a node and every edge touching it.
type DeleteNodeRequest struct {
	Node string `json:"node" validate:"required,node_id"`
}

// CompileGraphRequest compiles the graph. Seeds default to the sources.
type CompileGraphRequest struct {
	Seeds []string `json:"seeds,omitempty" validate:"omitempty,dive,required,node_id"`
}

// GetValueRequest reads one attribute.
type GetValueRequest struct {
	Attr string `json:"attr" validate:"required,attr"`
}

// SetValueRequest writes one attribute. Value is the JSON encoding of the
// new value; Type, when given, is its go-cty JSON type and otherwise the
// type implied by Value is used.
type SetValueRequest struct {
	Attr  string          `json:"attr" validate:"required,attr"`
	Value json.RawMessage `json:"value" validate:"required"`
	Type  json.RawMessage `json:"type,omitempty"`
}

// ListCatalogRequest lists the buildable kinds.
type ListCatalogRequest struct{}

// NodeStateRequest reads a node's state, output and attributes.
type NodeStateRequest struct {
	Node string `json:"node" validate:"required,node_id"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("node_id", validateNodeID)
	_ = v.RegisterValidation("attr", validateAttr)
	return v
}

// validateNodeID accepts the characters node ids are made of.
func validateNodeID(fl validator.FieldLevel) bool {
	_, err := nodeid.ParseNodeID(fl.Field().String())
	return err == nil
}

// validateAttr accepts an attribute id or a "<node>.<name>" reference.
func validateAttr(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.Contains(s, ".") {
		_, err := nodeid.ParseRef(s)
		return err == nil
	}
	return !strings.ContainsAny(s, " \t\n")
}
