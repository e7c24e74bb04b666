package uibridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/editor"
)

// Handler runs one editor operation. *editor.Editor implements it.
type Handler interface {
	Handle(ctx context.Context, op string, payload []byte) editor.Reply
}

// ReplyEvent names the event a reply to event is emitted on.
func ReplyEvent(event string) string {
	return event + ":reply"
}

// Dispatcher maps socket events to editor operations.
type Dispatcher struct {
	h      Handler
	events []string
}

// NewDispatcher creates a Dispatcher for the given events. With no events
// it serves every editor operation.
func NewDispatcher(h Handler, events ...string) *Dispatcher {
	if len(events) == 0 {
		events = editor.Operations()
	}
	return &Dispatcher{h: h, events: events}
}

// Events lists the events the dispatcher subscribes to.
func (d *Dispatcher) Events() []string {
	return d.events
}

// Dispatch runs the operation for event with the first event argument as
// its payload.
func (d *Dispatcher) Dispatch(ctx context.Context, event string, args ...any) editor.Reply {
	logger := ctxlog.FromContext(ctx)
	payload, err := encodePayload(args)
	if err != nil {
		logger.Warn("Dropping undecodable payload.", "event", event, "error", err)
		return editor.Reply{Error: err.Error(), Code: editor.CodeInvalidRequest}
	}
	reply := d.h.Handle(ctx, event, payload)
	if !reply.OK {
		logger.Debug("Editor operation failed.", "event", event, "code", reply.Code, "error", reply.Error)
	}
	return reply
}

// Ack is the acknowledgement callback a socket.io client passes as the last
// event argument when the sender asked for one.
type Ack = func([]any, error)

// Serve dispatches one socket event. The reply goes to the sender's
// acknowledgement when it asked for one, and to emit on ReplyEvent(event)
// otherwise.
func (d *Dispatcher) Serve(ctx context.Context, event string, args []any, emit func(event string, reply editor.Reply)) {
	var ack Ack
	if n := len(args); n > 0 {
		if fn, ok := args[n-1].(Ack); ok {
			ack, args = fn, args[:n-1]
		}
	}
	reply := d.Dispatch(ctx, event, args...)
	if ack != nil {
		ack([]any{reply}, nil)
		return
	}
	emit(ReplyEvent(event), reply)
}

// encodePayload turns the first socket argument back into JSON. Clients
// may send an object or a JSON string.
func encodePayload(args []any) ([]byte, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, nil
	}
	switch v := args[0].(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	b, err := json.Marshal(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return b, nil
}
