package inmemorytopology

import (
	"sort"

	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/topologystore"
)

// Snapshot copies the whole structure into plain values.
func (s *Store) Snapshot() topologystore.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := topologystore.Snapshot{
		Nodes:  make([]topologystore.NodeSnapshot, 0, len(s.nodes)),
		Params: make([]topologystore.ParamSnapshot, 0, len(s.params)),
		Edges:  keysOf(s.edges),
	}

	for _, n := range s.nodes {
		ns := topologystore.NodeSnapshot{
			ID:     n.ID,
			Type:   n.Type,
			Params: append([]nodeid.ObjectID(nil), s.owned[n.ID]...),
		}
		for _, name := range n.PropertyNames() {
			prop := n.Properties[name]
			ns.Properties = append(ns.Properties, topologystore.PropertySnapshot{
				Name:  name,
				Kind:  prop.Kind.String(),
				Value: prop.Native(),
			})
		}
		snap.Nodes = append(snap.Nodes, ns)
	}
	sort.Slice(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].ID < snap.Nodes[j].ID })

	for _, p := range s.params {
		snap.Params = append(snap.Params, topologystore.ParamSnapshot{
			ID:      p.ID,
			Owner:   p.Owner,
			Type:    p.Type,
			Rate:    p.Rate,
			Value:   p.Value,
			Default: p.Default,
			Min:     p.Min,
			Max:     p.Max,
		})
	}
	sort.Slice(snap.Params, func(i, j int) bool { return snap.Params[i].ID < snap.Params[j].ID })

	for id := range s.listeners {
		snap.Listeners = append(snap.Listeners, id)
	}
	sort.Slice(snap.Listeners, func(i, j int) bool { return snap.Listeners[i] < snap.Listeners[j] })

	if len(s.pending) > 0 {
		snap.Pending = keysOf(s.pending)
	}
	return snap
}
