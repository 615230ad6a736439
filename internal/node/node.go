// Package node defines the records held by a graph store: audio nodes, the
// params they expose, and the typed properties renderers display.
package node

import (
	"sort"

	"github.com/vk/audiograph/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// PropertyKind tells a renderer how to present a property. The core never
// branches on it.
type PropertyKind int

const (
	// KindParamRef is a property whose value is the id of an AudioParam.
	KindParamRef PropertyKind = iota
	// KindReadOnly is a scalar fixed at creation time.
	KindReadOnly
	// KindNumber is a mutable numeric value.
	KindNumber
	// KindEnum is a mutable value drawn from a fixed set of strings.
	KindEnum
)

// String returns the wire name of the kind.
func (k PropertyKind) String() string {
	switch k {
	case KindParamRef:
		return "param"
	case KindReadOnly:
		return "readonly"
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Property is a single named, typed value on a node. Value is either a
// cty.Number or a cty.String.
type Property struct {
	Kind  PropertyKind
	Value cty.Value
}

// NumberProperty builds a property holding a number.
func NumberProperty(kind PropertyKind, v float64) Property {
	return Property{Kind: kind, Value: cty.NumberFloatVal(v)}
}

// StringProperty builds a property holding a string.
func StringProperty(kind PropertyKind, v string) Property {
	return Property{Kind: kind, Value: cty.StringVal(v)}
}

// Native converts the property value to a plain Go value: float64 for
// numbers, string for strings, nil for null or unknown values.
func (p Property) Native() any {
	v := p.Value
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	switch ty := v.Type(); {
	case ty.Equals(cty.Number):
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil
		}
		return f
	case ty.Equals(cty.String):
		return v.AsString()
	case ty.Equals(cty.Bool):
		return v.True()
	default:
		return nil
	}
}

// Node is one instantiated AudioNode within a context.
type Node struct {
	ID         nodeid.ObjectID
	Context    nodeid.ContextID
	Type       string
	Properties map[string]Property
}

// New creates a node with an empty property map.
func New(ctxID nodeid.ContextID, id nodeid.ObjectID, nodeType string) *Node {
	return &Node{
		ID:         id,
		Context:    ctxID,
		Type:       nodeType,
		Properties: make(map[string]Property),
	}
}

// Clone returns a deep copy so callers never share the store's maps.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Properties = make(map[string]Property, len(n.Properties))
	for k, v := range n.Properties {
		c.Properties[k] = v
	}
	return &c
}

// PropertyNames returns the property names in sorted order.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Param is an AudioParam. Owner is a node id, or a listener id for the
// spatialization params of an AudioListener.
type Param struct {
	ID      nodeid.ObjectID
	Owner   nodeid.ObjectID
	Context nodeid.ContextID
	Type    string
	Rate    string
	Value   float64
	Default float64
	Min     float64
	Max     float64
}

// Clone returns a copy of the param.
func (p *Param) Clone() *Param {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
