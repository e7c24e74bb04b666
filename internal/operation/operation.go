package operation

import (
	"context"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Args are the resolved arguments of one invocation. Positional values come
// from the variadic input attribute; Named values from every other input
// attribute, in declaration order.
type Args struct {
	Positional []cty.Value
	Named      map[string]cty.Value
	Order      []string
}

// NewArgs returns empty Args ready for Add.
func NewArgs() Args {
	return Args{Named: make(map[string]cty.Value)}
}

// Add appends a named argument, keeping declaration order.
func (a *Args) Add(name string, v cty.Value) {
	if a.Named == nil {
		a.Named = make(map[string]cty.Value)
	}
	if _, exists := a.Named[name]; !exists {
		a.Order = append(a.Order, name)
	}
	a.Named[name] = v
}

// Get returns a named argument.
func (a Args) Get(name string) (cty.Value, bool) {
	v, ok := a.Named[name]
	return v, ok
}

// Names returns the named argument keys in declaration order, or sorted
// when no order was recorded.
func (a Args) Names() []string {
	if len(a.Order) == len(a.Named) {
		return a.Order
	}
	names := make([]string, 0, len(a.Named))
	for k := range a.Named {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Object packs the named arguments into a cty object.
func (a Args) Object() cty.Value {
	if len(a.Named) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(a.Named)
}

// Operation is the unit of work bound to a node.
type Operation interface {
	Invoke(ctx context.Context, args Args) (cty.Value, error)
}

// Func adapts a function to Operation.
type Func func(ctx context.Context, args Args) (cty.Value, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, args Args) (cty.Value, error) {
	return f(ctx, args)
}
