package topologystore

import "github.com/vk/audiograph/internal/nodeid"

// ContextChange describes what happened to the context record itself.
type ContextChange string

const (
	ContextUnchanged ContextChange = ""
	ContextAdded     ContextChange = "added"
	ContextUpdated   ContextChange = "updated"
	ContextClosed    ContextChange = "closed"
	ContextEvicted   ContextChange = "evicted"
)

// ChangeSet lists what a renderer must update after one event was applied.
// Seq is assigned by the reconciler and increases by one per published set.
type ChangeSet struct {
	Seq       uint64           `json:"seq" yaml:"seq"`
	ContextID nodeid.ContextID `json:"contextId" yaml:"contextId"`
	Cause     string           `json:"cause" yaml:"cause"`
	Context   ContextChange    `json:"context,omitempty" yaml:"context,omitempty"`

	NodesAdded   []nodeid.ObjectID `json:"nodesAdded,omitempty" yaml:"nodesAdded,omitempty"`
	NodesUpdated []nodeid.ObjectID `json:"nodesUpdated,omitempty" yaml:"nodesUpdated,omitempty"`
	NodesRemoved []nodeid.ObjectID `json:"nodesRemoved,omitempty" yaml:"nodesRemoved,omitempty"`

	ParamsAdded   []nodeid.ObjectID `json:"paramsAdded,omitempty" yaml:"paramsAdded,omitempty"`
	ParamsUpdated []nodeid.ObjectID `json:"paramsUpdated,omitempty" yaml:"paramsUpdated,omitempty"`
	ParamsRemoved []nodeid.ObjectID `json:"paramsRemoved,omitempty" yaml:"paramsRemoved,omitempty"`

	EdgesAdded   []nodeid.EdgeKey `json:"edgesAdded,omitempty" yaml:"edgesAdded,omitempty"`
	EdgesRemoved []nodeid.EdgeKey `json:"edgesRemoved,omitempty" yaml:"edgesRemoved,omitempty"`
}

// NewChangeSet starts an empty change-set for one context and cause.
func NewChangeSet(ctxID nodeid.ContextID, cause string) *ChangeSet {
	return &ChangeSet{ContextID: ctxID, Cause: cause}
}

// Empty reports whether applying the event changed nothing.
func (c *ChangeSet) Empty() bool {
	return c.Context == ContextUnchanged &&
		len(c.NodesAdded) == 0 && len(c.NodesUpdated) == 0 && len(c.NodesRemoved) == 0 &&
		len(c.ParamsAdded) == 0 && len(c.ParamsUpdated) == 0 && len(c.ParamsRemoved) == 0 &&
		len(c.EdgesAdded) == 0 && len(c.EdgesRemoved) == 0
}

// MarkContext records a context-level change. A stronger change is never
// downgraded: an added context that is also updated stays "added".
func (c *ChangeSet) MarkContext(change ContextChange) {
	if c.Context == ContextUnchanged || contextRank(change) > contextRank(c.Context) {
		c.Context = change
	}
}

func contextRank(c ContextChange) int {
	switch c {
	case ContextUpdated:
		return 1
	case ContextAdded:
		return 2
	case ContextClosed:
		return 3
	case ContextEvicted:
		return 4
	default:
		return 0
	}
}

// Clone returns a deep copy, so each subscriber can own its change-set.
func (c *ChangeSet) Clone() *ChangeSet {
	if c == nil {
		return nil
	}
	out := *c
	out.NodesAdded = cloneIDs(c.NodesAdded)
	out.NodesUpdated = cloneIDs(c.NodesUpdated)
	out.NodesRemoved = cloneIDs(c.NodesRemoved)
	out.ParamsAdded = cloneIDs(c.ParamsAdded)
	out.ParamsUpdated = cloneIDs(c.ParamsUpdated)
	out.ParamsRemoved = cloneIDs(c.ParamsRemoved)
	out.EdgesAdded = cloneEdges(c.EdgesAdded)
	out.EdgesRemoved = cloneEdges(c.EdgesRemoved)
	return &out
}

func cloneIDs(in []nodeid.ObjectID) []nodeid.ObjectID {
	if in == nil {
		return nil
	}
	return append([]nodeid.ObjectID(nil), in...)
}

func cloneEdges(in []nodeid.EdgeKey) []nodeid.EdgeKey {
	if in == nil {
		return nil
	}
	return append([]nodeid.EdgeKey(nil), in...)
}
