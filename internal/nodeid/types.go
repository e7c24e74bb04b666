// internal/nodeid/types.go
package nodeid

import (
	"strings"

	"github.com/google/uuid"
)

// NodeID identifies a live node. It carries no structure the engine relies on.
type NodeID string

// AttrID identifies a single attribute of a live node.
type AttrID string

// idLength is the number of hex characters kept from a UUID.
const idLength = 12

// NewNodeID mints a fresh node id.
func NewNodeID() NodeID {
	return NodeID(short())
}

// NewAttrID mints a fresh attribute id. The "a" prefix keeps attribute ids
// visually distinct from node ids in logs.
func NewAttrID() AttrID {
	return AttrID("a" + short())
}

func short() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// Ref names an attribute by its owning node and parameter name.
type Ref struct {
	Node NodeID
	Name string
}

// String serializes the Ref into its canonical `node.name` form.
func (r Ref) String() string {
	if r.Node == "" && r.Name == "" {
		return ""
	}
	return string(r.Node) + "." + r.Name
}

// IsZero reports whether the Ref is empty.
func (r Ref) IsZero() bool {
	return r.Node == "" && r.Name == ""
}
