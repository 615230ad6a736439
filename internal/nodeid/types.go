// internal/nodeid/types.go
package nodeid

// ContextID identifies one BaseAudioContext in the inspected page.
type ContextID string

// ObjectID identifies a node, param or listener within its owning context.
type ObjectID string

// EdgeKind distinguishes the two kinds of connection a node can make.
type EdgeKind int

const (
	// NodeToNode connects a node output to another node's input.
	NodeToNode EdgeKind = iota
	// NodeToParam connects a node output to an AudioParam.
	NodeToParam
)

// NoInput is the Input index carried by node-to-param edges.
const NoInput = -1

// String returns the wire name of the edge kind.
func (k EdgeKind) String() string {
	switch k {
	case NodeToNode:
		return "node"
	case NodeToParam:
		return "param"
	default:
		return "unknown"
	}
}

// EdgeKey is the identity of a connection. Two connect events with the same
// key describe the same edge, and a disconnect matches on the full key.
type EdgeKey struct {
	Kind   EdgeKind `json:"kind" yaml:"kind"`
	Source ObjectID `json:"source" yaml:"source"`
	Output int      `json:"output" yaml:"output"`
	Target ObjectID `json:"target" yaml:"target"`
	Input  int      `json:"input" yaml:"input"`
}

// NewNodeEdge builds the key for a node-to-node connection.
func NewNodeEdge(source ObjectID, output int, target ObjectID, input int) EdgeKey {
	return EdgeKey{Kind: NodeToNode, Source: source, Output: output, Target: target, Input: input}
}

// NewParamEdge builds the key for a node-to-param connection.
func NewParamEdge(source ObjectID, output int, param ObjectID) EdgeKey {
	return EdgeKey{Kind: NodeToParam, Source: source, Output: output, Target: param, Input: NoInput}
}

// Touches reports whether id is either endpoint of the edge.
func (k EdgeKey) Touches(id ObjectID) bool {
	return k.Source == id || k.Target == id
}
