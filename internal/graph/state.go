package graph

import (
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/nodeid"
)

// Phase is the coarse state of a node.
type Phase uint8

const (
	// Idle nodes have not been compiled since they were built.
	Idle Phase = iota
	// Ready nodes hold the output of their last successful compile.
	Ready
	// Errored nodes failed their last compile.
	Errored
	// Blocked nodes were not compiled because an upstream node failed.
	Blocked
	// Skipped nodes were not compiled because the run stopped early.
	Skipped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	case Blocked:
		return "blocked"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Error tags attached to Errored states.
const (
	TagInvalidInput = "invalid input"
	TagUnknown      = "unknown"
)

// State is the tagged state of a node, rendered by the UI as it likes.
type State struct {
	Phase Phase
	// Message is the failure message of Errored nodes and the reason of
	// Blocked and Skipped ones.
	Message string
	// Tag classifies Errored nodes: TagInvalidInput or TagUnknown.
	Tag string
	// Upstream is the failed node that blocked this one.
	Upstream nodeid.NodeID
}

// Failed reports whether the node carries an error.
func (s State) Failed() bool {
	return s.Phase == Errored
}

func (s State) String() string {
	switch s.Phase {
	case Errored:
		return fmt.Sprintf("errored(%s): %s", s.Tag, s.Message)
	case Blocked:
		return fmt.Sprintf("blocked by %s", s.Upstream)
	case Skipped:
		return "skipped: " + s.Message
	default:
		return s.Phase.String()
	}
}
