package system

import (
	"context"
	"sync/atomic"

	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/specialistvlad/neurogrid/internal/test/system/systemtest"
	"github.com/zclconf/go-cty/cty"
)

const faultyHCL = `
category "Test" {
  subcategory "Faults" {
    node "Fail" {
      class         = "ValueNode"
      operation     = "test.fail"
      input_accepts = "ValueNode"
    }

    node "Panic" {
      class         = "ValueNode"
      operation     = "test.panic"
      input_accepts = "ValueNode"
    }

    node "Spy" {
      class         = "ValueNode"
      operation     = "test.spy"
      input_accepts = "ValueNode"
    }
  }
}
`

// mockFaultyModule fails or panics on demand and counts Spy runs.
type mockFaultyModule struct {
	spyRuns atomic.Int32
	failErr error
}

func newMockFaultyModule(failErr error) (*mockFaultyModule, *systemtest.Module) {
	m := &mockFaultyModule{failErr: failErr}
	return m, &systemtest.Module{
		Name: "faulty",
		HCL:  faultyHCL,
		Ops: map[string]operation.Func{
			"test.fail": func(context.Context, operation.Args) (cty.Value, error) {
				return cty.NilVal, m.failErr
			},
			"test.panic": func(context.Context, operation.Args) (cty.Value, error) {
				panic("kaboom")
			},
			"test.spy": func(_ context.Context, args operation.Args) (cty.Value, error) {
				m.spyRuns.Add(1)
				return cty.NumberIntVal(int64(len(args.Positional))), nil
			},
		},
	}
}
