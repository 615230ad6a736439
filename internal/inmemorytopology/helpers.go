package inmemorytopology

import (
	"sort"

	"github.com/vk/audiograph/internal/node"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

func (s *Store) hasObjectLocked(id nodeid.ObjectID) bool {
	if _, ok := s.nodes[id]; ok {
		return true
	}
	if _, ok := s.params[id]; ok {
		return true
	}
	_, ok := s.listeners[id]
	return ok
}

// missingLocked returns the endpoints of key that do not exist with the
// right type: the source must be a node, the target a node or a param
// depending on the edge kind.
func (s *Store) missingLocked(key nodeid.EdgeKey) []nodeid.ObjectID {
	var missing []nodeid.ObjectID
	if _, ok := s.nodes[key.Source]; !ok {
		missing = append(missing, key.Source)
	}
	switch key.Kind {
	case nodeid.NodeToParam:
		if _, ok := s.params[key.Target]; !ok {
			missing = append(missing, key.Target)
		}
	default:
		if _, ok := s.nodes[key.Target]; !ok && key.Target != key.Source {
			missing = append(missing, key.Target)
		}
	}
	return missing
}

// removeEdgesLocked deletes every materialized edge matching pred.
func (s *Store) removeEdgesLocked(pred func(nodeid.EdgeKey) bool, cs *topologystore.ChangeSet) int {
	var removed []nodeid.EdgeKey
	for key := range s.edges {
		if pred(key) {
			removed = append(removed, key)
		}
	}
	sortEdges(removed)
	for _, key := range removed {
		delete(s.edges, key)
	}
	cs.EdgesRemoved = append(cs.EdgesRemoved, removed...)
	return len(removed)
}

// removeParamLocked deletes a param, the edges targeting it and any pending
// edge that names it. When detach is set the ParamRef property on the owner
// node is removed as well.
func (s *Store) removeParamLocked(id nodeid.ObjectID, cs *topologystore.ChangeSet, detach bool) {
	p, ok := s.params[id]
	if !ok {
		return
	}
	s.removeEdgesLocked(func(k nodeid.EdgeKey) bool {
		return k.Kind == nodeid.NodeToParam && k.Target == id
	}, cs)
	s.dropPendingTouchingLocked(id)

	siblings := s.owned[p.Owner]
	for i, pid := range siblings {
		if pid == id {
			s.owned[p.Owner] = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	if len(s.owned[p.Owner]) == 0 {
		delete(s.owned, p.Owner)
	}

	if detach {
		if owner, exists := s.nodes[p.Owner]; exists {
			name := paramRefName(p)
			if prop, has := owner.Properties[name]; has && prop.Kind == node.KindParamRef {
				delete(owner.Properties, name)
				markNodeUpdated(cs, owner.ID)
			}
		}
	}

	delete(s.params, id)
	cs.ParamsRemoved = append(cs.ParamsRemoved, id)
}

func (s *Store) attachParamRefLocked(owner *node.Node, p *node.Param) {
	if owner == nil || p == nil {
		return
	}
	owner.Properties[paramRefName(p)] = node.Property{
		Kind:  node.KindParamRef,
		Value: cty.StringVal(string(p.ID)),
	}
}

func (s *Store) dropPendingLocked(key nodeid.EdgeKey) {
	delete(s.pending, key)
	for _, id := range []nodeid.ObjectID{key.Source, key.Target} {
		if set, ok := s.waiting[id]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(s.waiting, id)
			}
		}
	}
}

func (s *Store) dropPendingTouchingLocked(id nodeid.ObjectID) {
	for key := range s.pending {
		if key.Touches(id) {
			s.dropPendingLocked(key)
		}
	}
}

func paramRefName(p *node.Param) string {
	if p.Type != "" {
		return p.Type
	}
	return string(p.ID)
}

// markNodeUpdated records an update unless the node was added in the same
// change-set, in which case the renderer already receives it in full.
func markNodeUpdated(cs *topologystore.ChangeSet, id nodeid.ObjectID) {
	for _, added := range cs.NodesAdded {
		if added == id {
			return
		}
	}
	cs.NodesUpdated = appendUnique(cs.NodesUpdated, id)
}

func appendUnique(ids []nodeid.ObjectID, id nodeid.ObjectID) []nodeid.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func keysOf(set map[nodeid.EdgeKey]struct{}) []nodeid.EdgeKey {
	keys := make([]nodeid.EdgeKey, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sortEdges(keys)
	return keys
}

func sortEdges(keys []nodeid.EdgeKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
