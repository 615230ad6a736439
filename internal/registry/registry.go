package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/inmemorytopology"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/topologystore"
)

// StoreFactory creates the topology store for a new context.
type StoreFactory func() topologystore.Store

// Option configures a Registry.
type Option func(*Registry)

// WithStoreFactory replaces the default in-memory topology store.
func WithStoreFactory(f StoreFactory) Option {
	return func(r *Registry) { r.newStore = f }
}

// Registry maps context ids to context records.
type Registry struct {
	mu       sync.RWMutex
	contexts map[nodeid.ContextID]*graph.Context
	order    []nodeid.ContextID // creation order
	policy   Policy
	newStore StoreFactory
}

// New creates an empty registry with the given eviction policy.
func New(policy Policy, opts ...Option) *Registry {
	r := &Registry{
		contexts: make(map[nodeid.ContextID]*graph.Context),
		policy:   policy,
		newStore: inmemorytopology.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the eviction policy in use.
func (r *Registry) Policy() Policy {
	return r.policy
}

// Get looks a context up by id.
func (r *Registry) Get(id nodeid.ContextID) (*graph.Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contexts[id]
	return c, ok
}

// All returns every known context in creation order.
func (r *Registry) All() []*graph.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*graph.Context, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.contexts[id])
	}
	return out
}

// Len returns the number of known contexts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contexts)
}

// Ensure returns the context with the given id, creating a placeholder if it
// is unknown. The bool reports whether a placeholder was created.
func (r *Registry) Ensure(id nodeid.ContextID, now time.Time) (*graph.Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.contexts[id]; ok {
		return c, false
	}
	c := graph.NewPlaceholder(id, r.newStore(), now)
	r.addLocked(c)
	return c, true
}

// Create registers an announced context. If the id is already known the
// existing record is returned unchanged with false; the caller decides
// whether to enrich it.
func (r *Registry) Create(id nodeid.ContextID, meta graph.Metadata, now time.Time) (*graph.Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.contexts[id]; ok {
		return c, false
	}
	c := graph.New(id, r.newStore(), meta, now)
	r.addLocked(c)
	return c, true
}

func (r *Registry) addLocked(c *graph.Context) {
	r.contexts[c.ID()] = c
	r.order = append(r.order, c.ID())
}

// Close marks a known context closed. Unknown ids and already closed
// contexts are a no-op.
func (r *Registry) Close(id nodeid.ContextID, at time.Time) bool {
	c, ok := r.Get(id)
	if !ok {
		return false
	}
	return c.Close(at)
}

// Evict drops closed contexts beyond the retention bounds and returns their
// ids, oldest-closed first. Live contexts are never considered.
func (r *Registry) Evict(now time.Time) []nodeid.ContextID {
	r.mu.Lock()
	defer r.mu.Unlock()

	type candidate struct {
		id       nodeid.ContextID
		closedAt time.Time
		rank     int
	}
	var closed []candidate
	for i, id := range r.order {
		c := r.contexts[id]
		if !c.Closed() {
			continue
		}
		closed = append(closed, candidate{id: id, closedAt: c.ClosedAt(), rank: i})
	}
	if len(closed) == 0 {
		return nil
	}
	sort.SliceStable(closed, func(i, j int) bool {
		if !closed[i].closedAt.Equal(closed[j].closedAt) {
			return closed[i].closedAt.Before(closed[j].closedAt)
		}
		return closed[i].rank < closed[j].rank
	})

	var evicted []nodeid.ContextID
	keep := closed[:0:0]
	for _, c := range closed {
		if r.policy.MaxClosedAge > 0 && now.Sub(c.closedAt) > r.policy.MaxClosedAge {
			evicted = append(evicted, c.id)
			continue
		}
		keep = append(keep, c)
	}
	if r.policy.MaxClosed > 0 && len(keep) > r.policy.MaxClosed {
		for _, c := range keep[:len(keep)-r.policy.MaxClosed] {
			evicted = append(evicted, c.id)
		}
	}

	for _, id := range evicted {
		r.removeLocked(id)
	}
	return evicted
}

func (r *Registry) removeLocked(id nodeid.ContextID) {
	delete(r.contexts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
