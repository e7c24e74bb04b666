package editor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/neurogrid/internal/builder"
	"github.com/specialistvlad/neurogrid/internal/compiler"
	"github.com/specialistvlad/neurogrid/internal/graph"
)

// Reply codes.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeLinkRejected   = "link_rejected"
	CodeStructural     = "structural"
	CodeRejected       = "value_rejected"
	CodeGraphChanged   = "graph_changed"
	CodeCanceled       = "canceled"
	CodeInternal       = "internal"
)

// Reply is the outcome of one editor operation.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
	// Reason is set for link_rejected replies.
	Reason string `json:"reason,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func ok(data any) Reply {
	return Reply{OK: true, Data: data}
}

func fail(err error) Reply {
	r := Reply{Error: err.Error(), Code: codeFor(err)}
	var linkErr *graph.LinkError
	if errors.As(err, &linkErr) {
		r.Reason = string(linkErr.Reason)
	}
	return r
}

// failWith keeps partial data, e.g. the result of a stopped compile.
func failWith(err error, data any) Reply {
	r := fail(err)
	r.Data = data
	return r
}

func codeFor(err error) string {
	var (
		invalid    validator.ValidationErrors
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
		requestErr *RequestError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.As(err, &requestErr):
		return CodeInvalidRequest
	case errors.Is(err, graph.ErrLinkRejected):
		return CodeLinkRejected
	case errors.Is(err, graph.ErrStructural):
		return CodeStructural
	case errors.Is(err, ErrValueRejected):
		return CodeRejected
	case errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, graph.ErrEdgeNotFound),
		errors.Is(err, graph.ErrAttributeNotFound),
		errors.Is(err, builder.ErrUnknownKind),
		errors.Is(err, ErrUnknownOperation),
		errors.Is(err, compiler.ErrUnknownSeed):
		return CodeNotFound
	case errors.Is(err, compiler.ErrGraphChanged):
		return CodeGraphChanged
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeInternal
	}
}
