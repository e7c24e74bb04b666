package uibridge

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/specialistvlad/neurogrid/internal/editor"
	"github.com/specialistvlad/neurogrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_SecondOutcomeDoesNotBlock(t *testing.T) {
	ch := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		notify(ch, nil)
		notify(ch, errors.New("connect_error after connect"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked on a full channel")
	}
	assert.NoError(t, <-ch, "the first outcome wins")
}

func TestReplier_LogsWithBridgeAttributes(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil)).With("component", "uibridge", "url", "http://ui:5000")

	var sent []any
	emit := replier(func(event string, args ...any) error {
		sent = append(sent, event)
		sent = append(sent, args...)
		return errors.New("socket closed")
	}, logger)
	emit("build_node:reply", editor.Reply{OK: true})

	require.Len(t, sent, 2)
	assert.Equal(t, "build_node:reply", sent[0])
	out := buf.String()
	assert.Contains(t, out, "Failed to emit reply.")
	assert.Contains(t, out, "component=uibridge")
	assert.Contains(t, out, "url=http://ui:5000")
	assert.Contains(t, out, "event=build_node:reply")
}
