// Package reconciler applies lifecycle events to the Multi-Graph Registry one
// at a time and publishes what changed.
//
// The instrumentation source is racy by nature: events for a node can arrive
// before its context, connections before their endpoints, disconnects before
// connects. The reconciler absorbs all of that. Creates are idempotent,
// unknown parents become placeholders, connections with missing endpoints are
// held pending and disconnects of unknown edges do nothing. The only error
// Apply returns is a malformed event.
package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/event"
	"github.com/vk/audiograph/internal/registry"
	"github.com/vk/audiograph/internal/topologystore"
	"golang.org/x/time/rate"
)

// CauseEvicted is the change-set cause for contexts dropped by eviction.
const CauseEvicted = "Evicted"

// Publisher receives every non-empty change-set in application order.
// Publish must not block on slow consumers.
type Publisher interface {
	Publish(cs *topologystore.ChangeSet)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(cs *topologystore.ChangeSet)

// Publish calls f(cs).
func (f PublisherFunc) Publish(cs *topologystore.ChangeSet) { f(cs) }

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPublisher sets where change-sets go.
func WithPublisher(p Publisher) Option {
	return func(r *Reconciler) { r.publisher = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// Reconciler is the single writer of the registry.
type Reconciler struct {
	registry  *registry.Registry
	publisher Publisher
	now       func() time.Time

	mu  sync.Mutex
	seq uint64

	// Malformed input usually arrives in bursts; log a sample of it.
	malformedLog rate.Sometimes
}

// New creates a reconciler writing to reg.
func New(reg *registry.Registry, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry:     reg,
		publisher:    PublisherFunc(func(*topologystore.ChangeSet) {}),
		now:          time.Now,
		malformedLog: rate.Sometimes{First: 5, Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry this reconciler writes to.
func (r *Reconciler) Registry() *registry.Registry {
	return r.registry
}

// SetPublisher replaces the publisher. The projection needs the reconciler to
// exist before it can be built, so wiring happens after New.
func (r *Reconciler) SetPublisher(p Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publisher = p
}

// View runs fn between two events, with the sequence number of the last
// published change-set. fn must not call Apply.
func (r *Reconciler) View(fn func(seq uint64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.seq)
}

// Apply validates e and applies it fully. It returns the published
// change-set, or nil if the event changed nothing. The only error is a
// *event.MalformedEventError, in which case no state was touched.
func (r *Reconciler) Apply(ctx context.Context, e event.Event) (*topologystore.ChangeSet, error) {
	if err := event.Validate(e); err != nil {
		r.Reject(ctx, err)
		return nil, err
	}

	start := time.Now()
	defer func() { applyDuration.Observe(time.Since(start).Seconds()) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cs := topologystore.NewChangeSet(e.Context(), string(e.Kind()))
	r.apply(ctx, e, cs, now)

	var out *topologystore.ChangeSet
	if cs.Empty() {
		eventsTotal.WithLabelValues(string(e.Kind()), outcomeAbsorbed).Inc()
		ctxlog.FromContext(ctx).Debug("Event absorbed without changes.", "kind", e.Kind(), "context", e.Context())
	} else {
		eventsTotal.WithLabelValues(string(e.Kind()), outcomeChanged).Inc()
		r.publishLocked(cs)
		out = cs
	}

	switch e.(type) {
	case event.ContextCreated, event.ContextChanged, event.ContextDestroyed:
		r.evictLocked(ctx, now)
	}
	return out, nil
}

// Reject records input that never became a valid event, such as an envelope
// that failed to decode. It only logs and counts.
func (r *Reconciler) Reject(ctx context.Context, err error) {
	kind := "unknown"
	var me *event.MalformedEventError
	if errors.As(err, &me) && me.Kind != "" {
		kind = string(me.Kind)
	}
	eventsTotal.WithLabelValues(kind, outcomeMalformed).Inc()
	r.malformedLog.Do(func() {
		ctxlog.FromContext(ctx).Warn("Rejected malformed event.", "error", err)
	})
}

// Sweep runs the registry eviction pass without an event, so that the age
// bound applies even when the page goes quiet.
func (r *Reconciler) Sweep(ctx context.Context) []topologystore.ChangeSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked(ctx, r.now())
}

func (r *Reconciler) publishLocked(cs *topologystore.ChangeSet) {
	r.seq++
	cs.Seq = r.seq
	r.publisher.Publish(cs)
}

func (r *Reconciler) evictLocked(ctx context.Context, now time.Time) []topologystore.ChangeSet {
	ids := r.registry.Evict(now)
	if len(ids) == 0 {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	out := make([]topologystore.ChangeSet, 0, len(ids))
	for _, id := range ids {
		cs := topologystore.NewChangeSet(id, CauseEvicted)
		cs.MarkContext(topologystore.ContextEvicted)
		r.publishLocked(cs)
		evictionsTotal.Inc()
		logger.Info("Evicted closed context.", "context", id)
		out = append(out, *cs)
	}
	return out
}
