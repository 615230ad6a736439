// Package session defines the transport boundary: where lifecycle events come
// from and how a run over them is driven. It abstracts away whether events
// arrive from a socket, a websocket or a file.
package session

import (
	"context"

	"github.com/vk/audiograph/internal/event"
)

// Delivery is one message from a source. Exactly one of Raw and Event is
// set: Raw holds an undecoded envelope, Event one already decoded.
type Delivery struct {
	Raw   []byte
	Event event.Event
}

// Source produces lifecycle events. The channel returned by Events is closed
// when the source is exhausted or ctx is cancelled; a source is read once.
type Source interface {
	// Name identifies the source in logs, e.g. `replay.fixture`.
	Name() string
	Events(ctx context.Context) (<-chan Delivery, error)
}

// SessionFactory creates ingest sessions over a set of sources.
type SessionFactory interface {
	NewSession(ctx context.Context, sources ...Source) (Session, error)
}

// Session is a single ingest run and manages its lifecycle.
type Session interface {
	// Run applies events until every source is exhausted or ctx is
	// cancelled. Cancellation takes effect between two events.
	Run(ctx context.Context) error
	// Close releases any resources held by the session.
	Close(ctx context.Context) error
}
