// Package localsession provides the in-process implementation of
// session.Session: a single ingest loop that drains every source and applies
// events to the reconciler one at a time.
package localsession

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/event"
	"github.com/vk/audiograph/internal/reconciler"
	"github.com/vk/audiograph/internal/session"
	"golang.org/x/sync/errgroup"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct {
	Reconciler *reconciler.Reconciler
}

// NewSession creates a session reading from sources.
func (f *SessionFactory) NewSession(ctx context.Context, sources ...session.Source) (session.Session, error) {
	if f.Reconciler == nil {
		return nil, errors.New("localsession: no reconciler configured")
	}
	ctxlog.FromContext(ctx).Debug("Creating local session.", "sources", len(sources))
	return New(f.Reconciler, sources...), nil
}

// Stats counts what a session has seen so far.
type Stats struct {
	Delivered uint64 `json:"delivered" yaml:"delivered"`
	Applied   uint64 `json:"applied" yaml:"applied"`
	Rejected  uint64 `json:"rejected" yaml:"rejected"`
}

// Session implements session.Session for local runs.
type Session struct {
	rec     *reconciler.Reconciler
	sources []session.Source

	delivered atomic.Uint64
	applied   atomic.Uint64
	rejected  atomic.Uint64
}

// New creates a session applying events from sources to rec.
func New(rec *reconciler.Reconciler, sources ...session.Source) *Session {
	return &Session{rec: rec, sources: sources}
}

type tagged struct {
	source string
	d      session.Delivery
}

// Run opens every source, merges their deliveries and applies them in
// arrival order on the calling goroutine. It returns nil when the sources
// are exhausted or ctx is cancelled, and an error only if a source fails to
// open.
func (s *Session) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	merged := make(chan tagged)

	channels := make([]<-chan session.Delivery, len(s.sources))
	for i, src := range s.sources {
		ch, err := src.Events(gctx)
		if err != nil {
			return fmt.Errorf("failed to open source %s: %w", src.Name(), err)
		}
		channels[i] = ch
		logger.Info("Source opened.", "source", src.Name())
	}

	for i, src := range s.sources {
		name, ch := src.Name(), channels[i]
		g.Go(func() error {
			forward(gctx, name, ch, merged)
			ctxlog.FromContext(ctx).Debug("Source finished.", "source", name)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Ingest stopped.", "reason", ctx.Err())
			_ = g.Wait()
			return nil
		case t, ok := <-merged:
			if !ok {
				logger.Info("All sources exhausted.", "stats", s.Stats())
				return nil
			}
			// The event in hand is applied fully; cancellation is honoured on
			// the next iteration.
			s.ingest(ctx, t)
		}
	}
}

func forward(ctx context.Context, name string, in <-chan session.Delivery, out chan<- tagged) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- tagged{source: name, d: d}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Session) ingest(ctx context.Context, t tagged) {
	s.delivered.Add(1)

	e := t.d.Event
	if e == nil {
		var err error
		e, err = event.DecodeEnvelope(t.d.Raw)
		if err != nil {
			s.rejected.Add(1)
			s.rec.Reject(ctxlog.With(ctx, "source", t.source), err)
			return
		}
	}

	if _, err := s.rec.Apply(ctxlog.With(ctx, "source", t.source), e); err != nil {
		s.rejected.Add(1)
		return
	}
	s.applied.Add(1)
}

// Stats returns the counters so far.
func (s *Session) Stats() Stats {
	return Stats{
		Delivered: s.delivered.Load(),
		Applied:   s.applied.Load(),
		Rejected:  s.rejected.Load(),
	}
}

// Close releases nothing; sources stop with the context passed to Run.
func (s *Session) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Local session closed.", "stats", s.Stats())
	return nil
}

var (
	_ session.Session        = (*Session)(nil)
	_ session.SessionFactory = (*SessionFactory)(nil)
)
