package editor

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/compiler"
	"github.com/specialistvlad/neurogrid/internal/graph"
	"github.com/specialistvlad/neurogrid/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ValueView is a value in the go-cty JSON encoding.
type ValueView struct {
	Value json.RawMessage `json:"value"`
	Type  json.RawMessage `json:"type"`
}

func encodeValue(v cty.Value) (ValueView, error) {
	if v == cty.NilVal {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	ty, err := ctyjson.MarshalType(v.Type())
	if err != nil {
		return ValueView{}, fmt.Errorf("failed to encode type: %w", err)
	}
	val, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return ValueView{}, fmt.Errorf("failed to encode value: %w", err)
	}
	return ValueView{Value: val, Type: ty}, nil
}

func decodeValue(raw, rawType json.RawMessage) (cty.Value, error) {
	var (
		ty  cty.Type
		err error
	)
	if len(rawType) > 0 {
		ty, err = ctyjson.UnmarshalType(rawType)
	} else {
		ty, err = ctyjson.ImpliedType(raw)
	}
	if err != nil {
		return cty.NilVal, &RequestError{Field: "type", Err: err}
	}
	v, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, &RequestError{Field: "value", Err: err}
	}
	return v, nil
}

// StateView renders graph.State.
type StateView struct {
	Phase    string        `json:"phase"`
	Message  string        `json:"message,omitempty"`
	Tag      string        `json:"tag,omitempty"`
	Upstream nodeid.NodeID `json:"upstream,omitempty"`
}

func stateView(s graph.State) StateView {
	return StateView{Phase: s.Phase.String(), Message: s.Message, Tag: s.Tag, Upstream: s.Upstream}
}

// AttrView describes one attribute of a node.
type AttrView struct {
	ID       nodeid.AttrID `json:"id"`
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Role     string        `json:"role"`
	Linkable bool          `json:"linkable"`
	Sends    bool          `json:"sends"`
}

// NodeView describes a live node.
type NodeView struct {
	ID     nodeid.NodeID `json:"id"`
	Label  string        `json:"label"`
	Class  string        `json:"class"`
	Doc    string        `json:"doc,omitempty"`
	Source bool          `json:"source"`
	State  StateView     `json:"state"`
	Output *ValueView    `json:"output,omitempty"`
	Attrs  []AttrView    `json:"attrs"`
}

func nodeView(g *graph.Graph, n *graph.Node, withOutput bool) (NodeView, error) {
	v := NodeView{
		ID:     n.ID(),
		Label:  n.Label(),
		Class:  string(n.Class()),
		Doc:    n.Doc(),
		Source: g.IsSource(n.ID()),
		State:  stateView(n.State()),
	}
	for _, a := range n.Attrs() {
		av := AttrView{ID: a.ID, Name: a.Name, Type: "output", Role: "output", Linkable: a.Linkable, Sends: a.Sends}
		if a.Param != nil {
			av.Type = a.Param.Annotation().String()
			av.Role = a.Param.Role().String()
		}
		v.Attrs = append(v.Attrs, av)
	}
	if withOutput {
		out, err := encodeValue(n.Output())
		if err != nil {
			return NodeView{}, err
		}
		v.Output = &out
	}
	return v, nil
}

// ChangeView is returned by structural edits.
type ChangeView struct {
	Version uint64          `json:"version"`
	Sources []nodeid.NodeID `json:"sources"`
}

func changeView(g *graph.Graph) ChangeView {
	return ChangeView{Version: g.Version(), Sources: g.Sources()}
}

// ResultView renders a compile result.
type ResultView struct {
	RunID    string          `json:"run_id"`
	Visited  []nodeid.NodeID `json:"visited"`
	Compiled []nodeid.NodeID `json:"compiled"`
	Failed   []nodeid.NodeID `json:"failed"`
	Blocked  []nodeid.NodeID `json:"blocked"`
	Skipped  []nodeid.NodeID `json:"skipped"`
}

func resultView(r *compiler.Result) *ResultView {
	if r == nil {
		return nil
	}
	return &ResultView{
		RunID:    r.RunID,
		Visited:  r.Visited,
		Compiled: r.Compiled,
		Failed:   r.Failed,
		Blocked:  r.Blocked,
		Skipped:  r.Skipped,
	}
}

// ParamView describes one parameter of a catalog kind.
type ParamView struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Role      string     `json:"role"`
	Default   *ValueView `json:"default,omitempty"`
	BackField string     `json:"back_field,omitempty"`
}

// KindView describes a buildable kind.
type KindView struct {
	Label  string      `json:"label"`
	Class  string      `json:"class"`
	Doc    string      `json:"doc,omitempty"`
	Input  bool        `json:"input"`
	Output bool        `json:"output"`
	Params []ParamView `json:"params"`
}

// SubcategoryView groups kinds.
type SubcategoryView struct {
	Name  string     `json:"name"`
	Kinds []KindView `json:"kinds"`
}

// CategoryView groups subcategories.
type CategoryView struct {
	Name          string            `json:"name"`
	Subcategories []SubcategoryView `json:"subcategories"`
}

func catalogView(tree []catalog.Category) ([]CategoryView, error) {
	out := make([]CategoryView, 0, len(tree))
	for _, c := range tree {
		cv := CategoryView{Name: c.Name}
		for _, s := range c.Subcategories {
			sv := SubcategoryView{Name: s.Name}
			for _, k := range s.Kinds {
				kv := KindView{Label: k.Label, Class: string(k.Class), Doc: k.Doc, Input: k.Input, Output: k.Output}
				for _, p := range k.Params {
					pv := ParamView{
						Name:      p.Name,
						Type:      p.Param.Annotation().String(),
						Role:      p.Param.Role().String(),
						BackField: p.Param.BackField(),
					}
					if def, ok := p.Param.Default(); ok {
						dv, err := encodeValue(def)
						if err != nil {
							return nil, fmt.Errorf("kind '%s', parameter '%s': %w", k.Label, p.Name, err)
						}
						pv.Default = &dv
					}
					kv.Params = append(kv.Params, pv)
				}
				sv.Kinds = append(sv.Kinds, kv)
			}
			cv.Subcategories = append(cv.Subcategories, sv)
		}
		out = append(out, cv)
	}
	return out, nil
}
