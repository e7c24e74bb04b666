package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

var (
	// ErrLinkRejected is wrapped by every LinkError.
	ErrLinkRejected = errors.New("link rejected")
	// ErrStructural marks mutations refused because they would break the
	// shape of the graph, such as deleting its only node.
	ErrStructural = errors.New("structural error")
	// ErrEdgeNotFound is returned by Delink for a pair that is not linked.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrNodeNotFound is returned for unknown node ids.
	ErrNodeNotFound = errors.New("node not found")
	// ErrAttributeNotFound is returned for unknown attribute ids.
	ErrAttributeNotFound = errors.New("attribute not found")
	// ErrInvariantViolation is wrapped by InvariantViolation.
	ErrInvariantViolation = errors.New("engine invariant violation")
)

// LinkReason says why a link was rejected.
type LinkReason string

const (
	ReasonUnknownAttribute LinkReason = "unknown_attribute"
	ReasonDirection        LinkReason = "direction"
	ReasonSelfLink         LinkReason = "self_link"
	ReasonDuplicate        LinkReason = "duplicate"
	ReasonTypeMismatch     LinkReason = "type_mismatch"
	ReasonCardinality      LinkReason = "cardinality"
	ReasonCycle            LinkReason = "cycle"
)

// LinkError describes a rejected link. The graph is unchanged when one is
// returned.
type LinkError struct {
	Reason LinkReason
	Out    nodeid.AttrID
	In     nodeid.AttrID
	Detail string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s -> %s rejected: %s", e.Out, e.In, e.Detail)
}

func (e *LinkError) Unwrap() error {
	return ErrLinkRejected
}

func reject(reason LinkReason, out, in nodeid.AttrID, format string, args ...any) *LinkError {
	return &LinkError{Reason: reason, Out: out, In: in, Detail: fmt.Sprintf(format, args...)}
}

// InvariantViolation lists every broken invariant found by Verify.
type InvariantViolation struct {
	Problems []string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("engine invariant violation:\n- %s", strings.Join(e.Problems, "\n- "))
}

func (e *InvariantViolation) Unwrap() error {
	return ErrInvariantViolation
}
