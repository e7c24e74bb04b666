package testutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeBuffer_ConcurrentWrites(t *testing.T) {
	buf := &SafeBuffer{}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = buf.Write([]byte("x\n"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, strings.Count(buf.String(), "x\n"))
}

func TestContext_CapturesDebugLogs(t *testing.T) {
	ctx, buf := Context(t)
	ctxlog.FromContext(ctx).Debug("captured", "key", "value")
	require.Contains(t, buf.String(), "msg=captured")
	assert.Contains(t, buf.String(), "key=value")
}
