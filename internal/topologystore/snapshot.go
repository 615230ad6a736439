package topologystore

import "github.com/vk/audiograph/internal/nodeid"

// Snapshot is a plain structural copy of a store. It holds no references into
// the store and can be encoded or sent across goroutines freely.
type Snapshot struct {
	Nodes     []NodeSnapshot    `json:"nodes" yaml:"nodes"`
	Params    []ParamSnapshot   `json:"params" yaml:"params"`
	Listeners []nodeid.ObjectID `json:"listeners,omitempty" yaml:"listeners,omitempty"`
	Edges     []nodeid.EdgeKey  `json:"edges" yaml:"edges"`
	Pending   []nodeid.EdgeKey  `json:"pending,omitempty" yaml:"pending,omitempty"`
}

// NodeSnapshot is the serialized form of a node.
type NodeSnapshot struct {
	ID         nodeid.ObjectID    `json:"id" yaml:"id"`
	Type       string             `json:"type" yaml:"type"`
	Params     []nodeid.ObjectID  `json:"params,omitempty" yaml:"params,omitempty"`
	Properties []PropertySnapshot `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertySnapshot is the serialized form of a node property.
type PropertySnapshot struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Value any    `json:"value" yaml:"value"`
}

// ParamSnapshot is the serialized form of a param.
type ParamSnapshot struct {
	ID      nodeid.ObjectID `json:"id" yaml:"id"`
	Owner   nodeid.ObjectID `json:"owner" yaml:"owner"`
	Type    string          `json:"type" yaml:"type"`
	Rate    string          `json:"rate,omitempty" yaml:"rate,omitempty"`
	Value   float64         `json:"value" yaml:"value"`
	Default float64         `json:"default" yaml:"default"`
	Min     float64         `json:"min" yaml:"min"`
	Max     float64         `json:"max" yaml:"max"`
}

// Node looks a node up by id in the snapshot.
func (s Snapshot) Node(id nodeid.ObjectID) (NodeSnapshot, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeSnapshot{}, false
}
