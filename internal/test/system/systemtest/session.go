// Package systemtest drives a whole application through its editor, the
// way the UI does.
package systemtest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/app"
	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/editor"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Config returns the configuration system tests start from.
func Config() *app.Config {
	cfg := app.DefaultConfig()
	cfg.MetricExporter = "none"
	cfg.StrictInvariants = true
	return &cfg
}

// Session is one application plus helpers for editor calls.
type Session struct {
	t    *testing.T
	App  *app.App
	Logs *testutil.SafeBuffer
}

// New starts an application with modules.
func New(t *testing.T, cfg *app.Config, modules ...catalog.Module) *Session {
	t.Helper()
	a, logs := app.SetupAppTest(t, cfg, modules...)
	return &Session{t: t, App: a, Logs: logs}
}

// Ref names the attribute name of node id.
func Ref(id nodeid.NodeID, name string) string {
	return fmt.Sprintf("%s.%s", id, name)
}

// Call runs op with payload encoded as JSON.
func (s *Session) Call(op string, payload any) editor.Reply {
	s.t.Helper()
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		require.NoError(s.t, err)
	}
	return s.App.Editor().Handle(s.App.Context(context.Background()), op, raw)
}

// MustOK runs op and fails the test unless it succeeds.
func (s *Session) MustOK(op string, payload any) editor.Reply {
	s.t.Helper()
	r := s.Call(op, payload)
	require.True(s.t, r.OK, "%s failed: %s (%s)", op, r.Error, r.Code)
	return r
}

// Build creates a node of kind label.
func (s *Session) Build(label string) nodeid.NodeID {
	s.t.Helper()
	return s.MustOK(editor.OpBuildNode, editor.BuildNodeRequest{Label: label}).Data.(editor.NodeView).ID
}

// Link connects from.out to to.in.
func (s *Session) Link(from nodeid.NodeID, out string, to nodeid.NodeID, in string) editor.ChangeView {
	s.t.Helper()
	return s.MustOK(editor.OpLink, editor.LinkRequest{Out: Ref(from, out), In: Ref(to, in)}).Data.(editor.ChangeView)
}

// Pipe links from's output to to's input.
func (s *Session) Pipe(from, to nodeid.NodeID) editor.ChangeView {
	s.t.Helper()
	return s.Link(from, catalog.OutputPort, to, catalog.InputPort)
}

// Set assigns value to the attribute name of id.
func (s *Session) Set(id nodeid.NodeID, name string, value any) {
	s.t.Helper()
	s.MustOK(editor.OpSetValue, map[string]any{"attr": Ref(id, name), "value": value})
}

// Compile recompiles the graph from its sources.
func (s *Session) Compile() *editor.ResultView {
	s.t.Helper()
	return s.MustOK(editor.OpCompileGraph, nil).Data.(*editor.ResultView)
}

// Node returns the view of id, output included.
func (s *Session) Node(id nodeid.NodeID) editor.NodeView {
	s.t.Helper()
	return s.MustOK(editor.OpNodeState, editor.NodeStateRequest{Node: string(id)}).Data.(editor.NodeView)
}
