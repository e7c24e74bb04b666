package system

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/internal/test/system/systemtest"
	"github.com/zclconf/go-cty/cty"
)

const sleeperHCL = `
category "Test" {
  subcategory "Timing" {
    node "Sleeper" {
      class         = "ValueNode"
      operation     = "test.sleep"
      input_accepts = "ValueNode"

      parameter "id" {
        type    = string
        default = ""
      }
    }

    node "Gather" {
      class         = "ValueNode"
      operation     = "test.gather"
      input_accepts = "ValueNode"
    }
  }
}
`

// executionRecord holds the start and end times of one invocation.
type executionRecord struct {
	Start time.Time
	End   time.Time
}

// mockSleeperModule records when each Sleeper ran and when Gather started.
type mockSleeperModule struct {
	mu             sync.Mutex
	sleepDuration  time.Duration
	executionTimes map[string]executionRecord
	gatheredAt     time.Time
	gathered       int
}

func newMockSleeperModule(sleep time.Duration) (*mockSleeperModule, *systemtest.Module) {
	m := &mockSleeperModule{sleepDuration: sleep, executionTimes: make(map[string]executionRecord)}
	return m, &systemtest.Module{
		Name: "sleeper",
		HCL:  sleeperHCL,
		Ops: map[string]operation.Func{
			"test.sleep":  m.sleep,
			"test.gather": m.gather,
		},
	}
}

func (m *mockSleeperModule) sleep(ctx context.Context, args operation.Args) (cty.Value, error) {
	id, _ := args.Get("id")
	start := time.Now()
	select {
	case <-time.After(m.sleepDuration):
	case <-ctx.Done():
		return cty.NilVal, ctx.Err()
	}
	end := time.Now()

	m.mu.Lock()
	m.executionTimes[id.AsString()] = executionRecord{Start: start, End: end}
	m.mu.Unlock()
	return cty.NumberIntVal(1), nil
}

func (m *mockSleeperModule) gather(_ context.Context, args operation.Args) (cty.Value, error) {
	m.mu.Lock()
	m.gatheredAt = time.Now()
	m.gathered = len(args.Positional)
	m.mu.Unlock()
	return cty.NumberIntVal(int64(len(args.Positional))), nil
}
