// Package projection fans change-sets out to subscribers.
//
// Every subscriber first receives the current state of its scope, then one
// Update per change-set in publish order. Each subscription owns an unbounded
// mailbox drained by its own goroutine, so a slow or failing handler never
// delays the reconciler or another subscriber.
package projection

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/registry"
	"github.com/vk/audiograph/internal/topologystore"
)

var (
	// ErrUnknownScope is returned with a live subscription whose context has
	// not been seen yet. Updates start flowing once it appears.
	ErrUnknownScope = errors.New("unknown graph scope")

	// ErrClosed is returned by Subscribe after Close.
	ErrClosed = errors.New("projection closed")
)

// Scope selects which contexts a subscription follows.
type Scope struct {
	all bool
	id  nodeid.ContextID
}

// AllGraphs follows every context.
func AllGraphs() Scope { return Scope{all: true} }

// Graph follows a single context.
func Graph(id nodeid.ContextID) Scope { return Scope{id: id} }

// Matches reports whether a change to context id is in scope.
func (s Scope) Matches(id nodeid.ContextID) bool {
	return s.all || s.id == id
}

// ContextID returns the followed context, or "" for AllGraphs.
func (s Scope) ContextID() nodeid.ContextID { return s.id }

func (s Scope) String() string {
	if s.all {
		return "all"
	}
	return fmt.Sprintf("graph:%s", s.id)
}

// Update is one delivery to a subscriber. The first Update of a subscription
// carries Snapshots and no Change; every later one carries exactly one Change.
type Update struct {
	// Seq is the change-set sequence number, or for the initial update the
	// sequence number the snapshots are consistent with.
	Seq       uint64                   `json:"seq" yaml:"seq"`
	Snapshots []graph.ContextSnapshot  `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	Change    *topologystore.ChangeSet `json:"change,omitempty" yaml:"change,omitempty"`
}

// Initial reports whether u is the snapshot that opens a subscription.
func (u Update) Initial() bool { return u.Change == nil }

// Handler consumes updates. Calls for one subscription are sequential.
type Handler func(Update)

// Source is the read side of the reconciler: the registry to snapshot and a
// way to look at it between two events.
type Source interface {
	Registry() *registry.Registry
	View(fn func(seq uint64))
}

// Option configures a Projection.
type Option func(*Projection)

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Projection) { p.logger = l }
}

// Projection is the observable side of the registry. It implements
// reconciler.Publisher.
type Projection struct {
	source Source
	logger *slog.Logger

	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// New creates a projection reading from source.
func New(source Source, opts ...Option) *Projection {
	p := &Projection{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe registers handler for scope. The returned subscription is live
// even when the error is ErrUnknownScope.
func (p *Projection) Subscribe(scope Scope, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, errors.New("projection: nil handler")
	}

	var (
		sub *Subscription
		err error
	)
	// Snapshot and registration happen between two events, so the first
	// change-set the subscriber sees is the one right after its snapshot.
	p.source.View(func(seq uint64) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if p.closed {
			err = ErrClosed
			return
		}

		initial := Update{Seq: seq, Snapshots: p.snapshotLocked(scope)}
		if !scope.all && len(initial.Snapshots) == 0 {
			err = ErrUnknownScope
		}

		sub = newSubscription(uuid.NewString(), scope, handler, p)
		sub.enqueue(initial)
		p.subs = append(p.subs, sub)
		subscriptionsActive.Inc()
	})
	if sub == nil {
		return nil, err
	}

	go sub.run()
	p.logger.Debug("Subscription added.", "subscription", sub.id, "scope", scope.String())
	return sub, err
}

func (p *Projection) snapshotLocked(scope Scope) []graph.ContextSnapshot {
	reg := p.source.Registry()
	if !scope.all {
		c, ok := reg.Get(scope.id)
		if !ok {
			return nil
		}
		return []graph.ContextSnapshot{c.Snapshot()}
	}
	all := reg.All()
	out := make([]graph.ContextSnapshot, 0, len(all))
	for _, c := range all {
		out = append(out, c.Snapshot())
	}
	return out
}

// Publish enqueues cs for every subscriber whose scope matches, in
// registration order. It never waits on a handler.
func (p *Projection) Publish(cs *topologystore.ChangeSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sub := range p.subs {
		if !sub.scope.Matches(cs.ContextID) {
			continue
		}
		sub.enqueue(Update{Seq: cs.Seq, Change: cs.Clone()})
	}
	changeSetsPublished.Inc()
}

// Len returns the number of live subscriptions.
func (p *Projection) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close stops every subscription and waits for the handlers in flight to
// return. Do not call it from inside a handler.
func (p *Projection) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	subs := p.subs
	p.subs = nil
	p.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
		subscriptionsActive.Dec()
	}
	for _, sub := range subs {
		<-sub.Done()
	}
}

func (p *Projection) remove(sub *Subscription) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, s := range p.subs {
		if s == sub {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			subscriptionsActive.Dec()
			return true
		}
	}
	return false
}
