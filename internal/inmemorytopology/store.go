// Package inmemorytopology provides a simple, thread-safe, in-memory
// implementation of the topologystore.Store interface.
package inmemorytopology

import (
	"sort"
	"sync"

	"github.com/vk/audiograph/internal/node"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu        sync.RWMutex
	nodes     map[nodeid.ObjectID]*node.Node
	params    map[nodeid.ObjectID]*node.Param
	owned     map[nodeid.ObjectID][]nodeid.ObjectID // Key: owner ID, Value: param IDs in creation order
	listeners map[nodeid.ObjectID]struct{}
	edges     map[nodeid.EdgeKey]struct{}
	pending   map[nodeid.EdgeKey]struct{}
	waiting   map[nodeid.ObjectID]map[nodeid.EdgeKey]struct{} // Key: missing ID, Value: pending edges waiting on it
}

// New creates a new, empty in-memory topology store.
func New() topologystore.Store {
	return &Store{
		nodes:     make(map[nodeid.ObjectID]*node.Node),
		params:    make(map[nodeid.ObjectID]*node.Param),
		owned:     make(map[nodeid.ObjectID][]nodeid.ObjectID),
		listeners: make(map[nodeid.ObjectID]struct{}),
		edges:     make(map[nodeid.EdgeKey]struct{}),
		pending:   make(map[nodeid.EdgeKey]struct{}),
		waiting:   make(map[nodeid.ObjectID]map[nodeid.EdgeKey]struct{}),
	}
}

// AddNode adds a new node to the store.
func (s *Store) AddNode(n *node.Node, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasObjectLocked(n.ID) {
		// Adding the same node twice is not an error, it's idempotent.
		return false
	}
	stored := n.Clone()
	s.nodes[n.ID] = stored
	for _, pid := range s.owned[n.ID] {
		s.attachParamRefLocked(stored, s.params[pid])
	}
	cs.NodesAdded = append(cs.NodesAdded, n.ID)
	return true
}

// AddParam adds a param and links it to its owner node if that node exists.
func (s *Store) AddParam(p *node.Param, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasObjectLocked(p.ID) {
		return false
	}
	stored := p.Clone()
	s.params[p.ID] = stored
	s.owned[p.Owner] = append(s.owned[p.Owner], p.ID)
	if owner, ok := s.nodes[p.Owner]; ok {
		s.attachParamRefLocked(owner, stored)
		markNodeUpdated(cs, owner.ID)
	}
	cs.ParamsAdded = append(cs.ParamsAdded, p.ID)
	return true
}

// AddListener records a listener id.
func (s *Store) AddListener(id nodeid.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasObjectLocked(id) {
		return false
	}
	s.listeners[id] = struct{}{}
	return true
}

// AddEdge materializes an edge whose endpoints both exist.
func (s *Store) AddEdge(key nodeid.EdgeKey, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.edges[key]; exists {
		return false
	}
	if len(s.missingLocked(key)) > 0 {
		return false
	}
	s.edges[key] = struct{}{}
	cs.EdgesAdded = append(cs.EdgesAdded, key)
	return true
}

// MissingEndpoints lists the endpoints of key that are not in the store.
func (s *Store) MissingEndpoints(key nodeid.EdgeKey) []nodeid.ObjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.missingLocked(key)
}

// AddPending holds an edge until its missing endpoints are created.
func (s *Store) AddPending(key nodeid.EdgeKey, missing []nodeid.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.edges[key]; exists {
		return false
	}
	if _, exists := s.pending[key]; exists {
		return false
	}
	if len(missing) == 0 {
		return false
	}
	s.pending[key] = struct{}{}
	for _, id := range missing {
		if s.waiting[id] == nil {
			s.waiting[id] = make(map[nodeid.EdgeKey]struct{})
		}
		s.waiting[id][key] = struct{}{}
	}
	return true
}

// ResolvePending materializes the pending edges that were waiting on id and
// are now complete. Edges still missing another endpoint stay pending.
func (s *Store) ResolvePending(id nodeid.ObjectID, cs *topologystore.ChangeSet) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	waiting := s.waiting[id]
	if len(waiting) == 0 {
		return 0
	}
	delete(s.waiting, id)

	keys := make([]nodeid.EdgeKey, 0, len(waiting))
	for key := range waiting {
		keys = append(keys, key)
	}
	sortEdges(keys)

	resolved := 0
	for _, key := range keys {
		if _, stillPending := s.pending[key]; !stillPending {
			continue
		}
		if len(s.missingLocked(key)) > 0 {
			continue
		}
		s.dropPendingLocked(key)
		if _, exists := s.edges[key]; exists {
			continue
		}
		s.edges[key] = struct{}{}
		cs.EdgesAdded = append(cs.EdgesAdded, key)
		resolved++
	}
	return resolved
}

// RemoveNode removes a node together with its owned params and incident edges.
func (s *Store) RemoveNode(id nodeid.ObjectID, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[id]; !exists {
		return false
	}

	s.removeEdgesLocked(func(k nodeid.EdgeKey) bool { return k.Touches(id) }, cs)
	for _, pid := range append([]nodeid.ObjectID(nil), s.owned[id]...) {
		s.removeParamLocked(pid, cs, false)
	}
	delete(s.owned, id)
	s.dropPendingTouchingLocked(id)
	delete(s.nodes, id)
	cs.NodesRemoved = append(cs.NodesRemoved, id)
	return true
}

// RemoveParam removes a param and every edge targeting it.
func (s *Store) RemoveParam(id nodeid.ObjectID, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.params[id]; !exists {
		return false
	}
	s.removeParamLocked(id, cs, true)
	return true
}

// RemoveListener removes a listener and the params it owns.
func (s *Store) RemoveListener(id nodeid.ObjectID, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listeners[id]; !exists {
		return false
	}
	for _, pid := range append([]nodeid.ObjectID(nil), s.owned[id]...) {
		s.removeParamLocked(pid, cs, false)
	}
	delete(s.owned, id)
	delete(s.listeners, id)
	return true
}

// RemoveEdge removes the edge matching key. A matching pending edge is
// dropped silently and the call reports false.
func (s *Store) RemoveEdge(key nodeid.EdgeKey, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.edges[key]; exists {
		delete(s.edges, key)
		cs.EdgesRemoved = append(cs.EdgesRemoved, key)
		return true
	}
	if _, exists := s.pending[key]; exists {
		s.dropPendingLocked(key)
	}
	return false
}

// RemoveEdgesFrom removes every edge sourced at the given node.
func (s *Store) RemoveEdgesFrom(source nodeid.ObjectID, cs *topologystore.ChangeSet) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.pending {
		if key.Source == source {
			s.dropPendingLocked(key)
		}
	}
	return s.removeEdgesLocked(func(k nodeid.EdgeKey) bool { return k.Source == source }, cs)
}

// UpdateProperty sets the value of a node property.
func (s *Store) UpdateProperty(nodeID nodeid.ObjectID, name string, kind node.PropertyKind, value cty.Value, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.nodes[nodeID]
	if !exists {
		return false
	}
	if prev, ok := n.Properties[name]; ok {
		if prev.Value.RawEquals(value) {
			return false
		}
		kind = prev.Kind
	}
	n.Properties[name] = node.Property{Kind: kind, Value: value}
	markNodeUpdated(cs, nodeID)
	return true
}

// UpdateParamValue sets the current value of a param.
func (s *Store) UpdateParamValue(paramID nodeid.ObjectID, value float64, cs *topologystore.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.params[paramID]
	if !exists || p.Value == value {
		return false
	}
	p.Value = value
	cs.ParamsUpdated = appendUnique(cs.ParamsUpdated, paramID)
	return true
}

// Node retrieves a copy of a single node.
func (s *Store) Node(id nodeid.ObjectID) (*node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	return n.Clone(), ok
}

// Param retrieves a copy of a single param.
func (s *Store) Param(id nodeid.ObjectID) (*node.Param, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.params[id]
	return p.Clone(), ok
}

// HasObject reports whether id is a known node, param or listener.
func (s *Store) HasObject(id nodeid.ObjectID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasObjectLocked(id)
}

// Nodes returns copies of all nodes ordered by id.
func (s *Store) Nodes() []*node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n.Clone())
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Params returns copies of all params ordered by id.
func (s *Store) Params() []*node.Param {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := make([]*node.Param, 0, len(s.params))
	for _, p := range s.params {
		params = append(params, p.Clone())
	}
	sort.Slice(params, func(i, j int) bool { return params[i].ID < params[j].ID })
	return params
}

// Edges returns all materialized edges.
func (s *Store) Edges() []nodeid.EdgeKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keysOf(s.edges)
}

// PendingEdges returns all edges still waiting on an endpoint.
func (s *Store) PendingEdges() []nodeid.EdgeKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keysOf(s.pending)
}
