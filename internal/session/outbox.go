package session

import (
	"context"
	"sync"
)

// Outbox is the channel behind a push-style source: callbacks Send into it
// from any goroutine while the owner may Close it at any time.
type Outbox struct {
	mu     sync.Mutex
	closed bool
	ch     chan Delivery
}

// NewOutbox creates an outbox holding up to buffer undelivered messages.
func NewOutbox(buffer int) *Outbox {
	return &Outbox{ch: make(chan Delivery, buffer)}
}

// C is the receive side, closed by Close.
func (o *Outbox) C() <-chan Delivery { return o.ch }

// Send blocks until d is queued, ctx is done or the outbox is closed. It
// reports whether d was queued. Concurrent sends are serialized, which keeps
// their order.
func (o *Outbox) Send(ctx context.Context, d Delivery) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	select {
	case o.ch <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close closes the channel. Later sends are dropped. Calling it twice is
// fine.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}
