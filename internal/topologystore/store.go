// Package topologystore defines the interface for storing and mutating the
// structure of one audio graph: its nodes, params, listeners and the edges
// between them.
//
// # Why Topology Store Exists
//
// The topology store isolates the **structure** of a single BaseAudioContext
// from the context's own metadata (state, sample rate, realtime data), which
// lives on graph.Context. The reconciler is the only writer; HTTP handlers and
// the projection read snapshots concurrently.
//
// # Mutation Contract
//
// Every mutator is atomic with respect to one call: it checks all of its
// preconditions first and then either applies fully or not at all. Mutators
// never return errors for data inconsistency. Instead they report what they
// did by appending to the caller's ChangeSet and returning a bool that is
// false when the call was a no-op.
//
// # Pending Edges
//
// A connection whose endpoint has not been created yet is held in the store's
// pending set, indexed by each missing id. ResolvePending is called when an
// object appears and materializes every pending edge that has become complete.
// Pending edges live inside the store so they are discarded with it when the
// owning context is evicted.
package topologystore

import (
	"github.com/vk/audiograph/internal/node"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Store is the interface for the structure of one audio context.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use. Writes come from a single
// reconciler goroutine, but reads (Snapshot, Node, Edges) may come from any
// number of HTTP handlers and subscribers at the same time.
type Store interface {
	// AddNode inserts a node. Adding an id that already exists is a no-op.
	AddNode(n *node.Node, cs *ChangeSet) bool

	// AddParam inserts a param. The owner need not exist yet.
	AddParam(p *node.Param, cs *ChangeSet) bool

	// AddListener records an AudioListener id so params it owns can be
	// cascaded when it is destroyed.
	AddListener(id nodeid.ObjectID) bool

	// AddEdge materializes an edge. It is a no-op if the edge already exists
	// or if either endpoint is missing; callers use MissingEndpoints first.
	AddEdge(key nodeid.EdgeKey, cs *ChangeSet) bool

	// MissingEndpoints lists the endpoint ids of key that are not present.
	MissingEndpoints(key nodeid.EdgeKey) []nodeid.ObjectID

	// AddPending holds key until every id in missing has been created.
	AddPending(key nodeid.EdgeKey, missing []nodeid.ObjectID) bool

	// ResolvePending materializes pending edges that were waiting on id and
	// whose endpoints now all exist.
	ResolvePending(id nodeid.ObjectID, cs *ChangeSet) int

	// RemoveNode deletes a node, the params it owns and every incident edge.
	RemoveNode(id nodeid.ObjectID, cs *ChangeSet) bool

	// RemoveParam deletes a param and every edge targeting it.
	RemoveParam(id nodeid.ObjectID, cs *ChangeSet) bool

	// RemoveListener deletes a listener and the params it owns.
	RemoveListener(id nodeid.ObjectID, cs *ChangeSet) bool

	// RemoveEdge deletes exactly the edge matching key. If the edge is still
	// pending it is dropped from the pending set without a change entry.
	RemoveEdge(key nodeid.EdgeKey, cs *ChangeSet) bool

	// RemoveEdgesFrom deletes every edge, materialized or pending, sourced at
	// the given node and returns how many materialized edges were removed.
	RemoveEdgesFrom(source nodeid.ObjectID, cs *ChangeSet) int

	// UpdateProperty sets a node property, keeping its kind if it already
	// exists and using kind otherwise.
	UpdateProperty(nodeID nodeid.ObjectID, name string, kind node.PropertyKind, value cty.Value, cs *ChangeSet) bool

	// UpdateParamValue sets the current value of a param.
	UpdateParamValue(paramID nodeid.ObjectID, value float64, cs *ChangeSet) bool

	// Node returns a copy of the node with the given id.
	Node(id nodeid.ObjectID) (*node.Node, bool)

	// Param returns a copy of the param with the given id.
	Param(id nodeid.ObjectID) (*node.Param, bool)

	// HasObject reports whether id names a node, param or listener.
	HasObject(id nodeid.ObjectID) bool

	// Nodes returns copies of all nodes ordered by id.
	Nodes() []*node.Node

	// Params returns copies of all params ordered by id.
	Params() []*node.Param

	// Edges returns all materialized edges in a stable order.
	Edges() []nodeid.EdgeKey

	// PendingEdges returns all edges still waiting on an endpoint.
	PendingEdges() []nodeid.EdgeKey

	// Snapshot returns a plain, self-contained copy of the whole structure.
	Snapshot() Snapshot
}
