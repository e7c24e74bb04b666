package system

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/app"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/internal/test/system/systemtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: a failed node blocks everything downstream of it while an
// independent branch still compiles.
func TestErrorHandling_FailureBlocksDependents(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}
	m, mod := newMockFaultyModule(operation.InvalidArgument("rejected as expected"))
	s := systemtest.New(t, systemtest.Config(), append(app.CoreModules(out), mod)...)

	src := s.Build("Constant")
	fail := s.Build("Fail")
	spy := s.Build("Spy")
	p := s.Build("Print")
	sum := s.Build("Add")
	s.Pipe(src, fail)
	s.Pipe(fail, spy)
	s.Pipe(spy, p)
	s.Pipe(src, sum)

	// --- Act ---
	res := s.Compile()

	// --- Assert ---
	assert.Equal(t, []nodeid.NodeID{fail}, res.Failed)
	assert.ElementsMatch(t, []nodeid.NodeID{spy, p}, res.Blocked)
	assert.ElementsMatch(t, []nodeid.NodeID{src, sum}, res.Compiled)
	assert.Zero(t, m.spyRuns.Load(), "blocked node must not run")
	assert.Empty(t, out.String())

	failed := s.Node(fail)
	assert.Equal(t, "errored", failed.State.Phase)
	assert.Equal(t, graph.TagInvalidInput, failed.State.Tag)
	assert.Contains(t, failed.State.Message, "rejected as expected")

	blocked := s.Node(p)
	assert.Equal(t, "blocked", blocked.State.Phase)
	assert.Equal(t, fail, blocked.State.Upstream)
	require.NotNil(t, blocked.Output)
	assert.JSONEq(t, `null`, string(blocked.Output.Value))

	assert.Contains(t, s.Logs.String(), "Node failed.")
}

// Test for: fixing the failure and recompiling clears the blocked state.
func TestErrorHandling_RecoverAfterFix(t *testing.T) {
	out := &bytes.Buffer{}
	s := systemtest.New(t, systemtest.Config(), app.CoreModules(out)...)

	src := s.Build("Constant")
	rep := s.Build("Repeat")
	p := s.Build("Print")
	s.Set(src, "value", 1)
	s.Set(rep, "count", -1)
	s.Pipe(src, rep)
	s.Pipe(rep, p)

	res := s.Compile()
	assert.Equal(t, []nodeid.NodeID{rep}, res.Failed)
	assert.Equal(t, []nodeid.NodeID{p}, res.Blocked)
	assert.Equal(t, "blocked", s.Node(p).State.Phase)

	s.Set(rep, "count", 2)
	res = s.Compile()
	assert.Empty(t, res.Failed)
	assert.Empty(t, res.Blocked)
	assert.Equal(t, "ready", s.Node(p).State.Phase)
	assert.Equal(t, "[1,1]\n", out.String())
}
