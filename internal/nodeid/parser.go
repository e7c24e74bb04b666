// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// nodeRegex matches a node id segment.
var nodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// nameRegex matches a parameter name. Names may contain spaces in the
// catalog, but never a dot.
var nameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_ ]*$`)

// ParseRef parses the canonical `node.name` form of an attribute reference.
func ParseRef(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, fmt.Errorf("attribute reference cannot be empty")
	}

	node, name, found := strings.Cut(raw, ".")
	if !found {
		return Ref{}, fmt.Errorf("attribute reference %q is missing the '.' separator", raw)
	}
	if !nodeRegex.MatchString(node) {
		return Ref{}, fmt.Errorf("invalid node segment: %q", node)
	}
	if !nameRegex.MatchString(name) {
		return Ref{}, fmt.Errorf("invalid attribute name: %q", name)
	}

	return Ref{Node: NodeID(node), Name: name}, nil
}

// ParseNodeID validates a bare node id.
func ParseNodeID(raw string) (NodeID, error) {
	if !nodeRegex.MatchString(raw) {
		return "", fmt.Errorf("invalid node id: %q", raw)
	}
	return NodeID(raw), nil
}
