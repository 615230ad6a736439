package httpapi

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"

	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/handlers"
	"github.com/vk/audiograph/internal/session"
)

// DefaultIngestBuffer is how many envelopes the ingest endpoint queues ahead
// of the session.
const DefaultIngestBuffer = 1024

// Ingest is the session source behind the /ingest endpoint. It becomes
// enabled once a `source "websocket"` block claims it.
type Ingest struct {
	out     *session.Outbox
	name    atomic.Value
	claimed atomic.Bool
	opened  atomic.Bool
}

// NewIngest creates an unclaimed ingest source.
func NewIngest(buffer int) *Ingest {
	if buffer <= 0 {
		buffer = DefaultIngestBuffer
	}
	i := &Ingest{out: session.NewOutbox(buffer)}
	i.name.Store("websocket")
	return i
}

// Name implements session.Source.
func (i *Ingest) Name() string { return i.name.Load().(string) }

// Enabled reports whether a source block claimed the ingest.
func (i *Ingest) Enabled() bool { return i.claimed.Load() }

// Events implements session.Source. The channel closes when ctx is done.
func (i *Ingest) Events(ctx context.Context) (<-chan session.Delivery, error) {
	if !i.opened.CompareAndSwap(false, true) {
		return nil, errors.New("websocket ingest is already open")
	}
	go func() {
		<-ctx.Done()
		i.out.Close()
	}()
	return i.out.C(), nil
}

// Push queues every non-blank line of msg. It reports false once the source
// is closed or ctx is done.
func (i *Ingest) Push(ctx context.Context, msg []byte) bool {
	for _, line := range bytes.Split(msg, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !i.out.Send(ctx, session.Delivery{Raw: line}) {
			return false
		}
		ingestMessages.Inc()
	}
	return true
}

// Input is the `source "websocket"` block. It takes no arguments.
type Input struct{}

// Register adds the "websocket" source type. At most one block may use it,
// since there is a single /ingest endpoint.
func (i *Ingest) Register(h *handlers.Handlers) {
	h.RegisterSource("websocket", func(ctx context.Context, cfg *config.Source) (session.Source, error) {
		var in Input
		if err := cfg.Body.Decode(ctx, &in); err != nil {
			return nil, err
		}
		if !i.claimed.CompareAndSwap(false, true) {
			return nil, errors.New("only one websocket source may be configured")
		}
		i.name.Store(cfg.String())
		return i, nil
	})
}

var (
	_ session.Source  = (*Ingest)(nil)
	_ handlers.Module = (*Ingest)(nil)
)
