package projection

import (
	"fmt"
	"sync"
)

// Subscription is one registered handler and its mailbox.
type Subscription struct {
	id      string
	scope   Scope
	handler Handler
	owner   *Projection

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Update
	stopped bool

	done chan struct{}
}

func newSubscription(id string, scope Scope, handler Handler, owner *Projection) *Subscription {
	s := &Subscription{
		id:      id,
		scope:   scope,
		handler: handler,
		owner:   owner,
		done:    make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ID returns the subscription id.
func (s *Subscription) ID() string { return s.id }

// Scope returns what the subscription follows.
func (s *Subscription) Scope() Scope { return s.scope }

// Done is closed once the mailbox goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Unsubscribe stops delivery. Updates still queued are dropped; a handler
// call in progress finishes. It is safe to call from inside the handler and
// more than once.
func (s *Subscription) Unsubscribe() {
	if s.owner.remove(s) {
		s.owner.logger.Debug("Subscription removed.", "subscription", s.id)
	}
	s.stop()
}

// Pending returns the number of queued updates not yet handled.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Subscription) enqueue(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.queue = append(s.queue, u)
	mailboxDepth.Inc()
	s.cond.Signal()
}

func (s *Subscription) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	mailboxDepth.Sub(float64(len(s.queue)))
	s.queue = nil
	s.cond.Broadcast()
}

func (s *Subscription) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.mu.Unlock()
			return
		}
		u := s.queue[0]
		s.queue[0] = Update{}
		s.queue = s.queue[1:]
		mailboxDepth.Dec()
		s.mu.Unlock()

		s.deliver(u)
	}
}

func (s *Subscription) deliver(u Update) {
	defer func() {
		if r := recover(); r != nil {
			handlerPanics.Inc()
			s.owner.logger.Error("Subscription handler panicked.",
				"subscription", s.id,
				"seq", u.Seq,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	s.handler(u)
	updatesDelivered.Inc()
}
