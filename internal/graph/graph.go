package graph

import (
	"sync"
	"time"

	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/topologystore"
)

// State is the lifecycle state of an audio context.
type State string

const (
	StateConstructed State = "constructed"
	StateRunning     State = "running"
	StateSuspended   State = "suspended"
	StateClosed      State = "closed"
)

// RealtimeData are the render statistics of a running context.
type RealtimeData struct {
	CurrentTime              float64 `json:"currentTime" yaml:"currentTime"`
	RenderCapacity           float64 `json:"renderCapacity" yaml:"renderCapacity"`
	CallbackIntervalMean     float64 `json:"callbackIntervalMean" yaml:"callbackIntervalMean"`
	CallbackIntervalVariance float64 `json:"callbackIntervalVariance" yaml:"callbackIntervalVariance"`
}

// Metadata is what the instrumentation reports about a context itself.
// An empty State leaves the current state untouched.
type Metadata struct {
	Offline               bool
	State                 State
	SampleRate            float64
	CallbackBufferSize    float64
	MaxOutputChannelCount float64
	Realtime              *RealtimeData
}

// Info is a detached copy of a context's metadata.
type Info struct {
	ID                    nodeid.ContextID `json:"id" yaml:"id"`
	Offline               bool             `json:"offline" yaml:"offline"`
	State                 State            `json:"state" yaml:"state"`
	Placeholder           bool             `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	SampleRate            float64          `json:"sampleRate" yaml:"sampleRate"`
	CallbackBufferSize    float64          `json:"callbackBufferSize" yaml:"callbackBufferSize"`
	MaxOutputChannelCount float64          `json:"maxOutputChannelCount" yaml:"maxOutputChannelCount"`
	Realtime              RealtimeData     `json:"realtime" yaml:"realtime"`
	CreatedAt             time.Time        `json:"createdAt" yaml:"createdAt"`
	ClosedAt              *time.Time       `json:"closedAt,omitempty" yaml:"closedAt,omitempty"`
}

// ContextSnapshot is the full plain-value view of one context.
type ContextSnapshot struct {
	Context Info                   `json:"context" yaml:"context"`
	Graph   topologystore.Snapshot `json:"graph" yaml:"graph"`
}

// Context is the record of one audio context.
type Context struct {
	id    nodeid.ContextID
	store topologystore.Store

	mu          sync.RWMutex
	meta        Metadata
	realtime    RealtimeData
	placeholder bool
	createdAt   time.Time
	closedAt    time.Time
}

// NewPlaceholder creates a record for a context that has not been announced
// yet. It starts in the constructed state.
func NewPlaceholder(id nodeid.ContextID, store topologystore.Store, now time.Time) *Context {
	return &Context{
		id:          id,
		store:       store,
		meta:        Metadata{State: StateConstructed},
		placeholder: true,
		createdAt:   now,
	}
}

// New creates a record from an announced context.
func New(id nodeid.ContextID, store topologystore.Store, meta Metadata, now time.Time) *Context {
	c := NewPlaceholder(id, store, now)
	c.Enrich(meta, now)
	return c
}

// ID returns the context id.
func (c *Context) ID() nodeid.ContextID { return c.id }

// Store returns the topology store holding the context's structure.
func (c *Context) Store() topologystore.Store { return c.store }

// Enrich fills a placeholder with announced metadata. It reports false, and
// does nothing, if the record is not a placeholder.
func (c *Context) Enrich(meta Metadata, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.placeholder {
		return false
	}
	c.placeholder = false
	c.applyLocked(meta, now)
	return true
}

// Update applies changed metadata and reports whether anything differed.
// A closed context stays closed.
func (c *Context) Update(meta Metadata, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.meta.State == StateClosed {
		return false
	}
	before, beforeRT, wasPlaceholder := c.meta, c.realtime, c.placeholder
	c.placeholder = false
	c.applyLocked(meta, now)
	return wasPlaceholder || before != c.meta || beforeRT != c.realtime
}

// applyLocked copies meta in. A state change to closed stamps the close time;
// a closed context never reopens.
func (c *Context) applyLocked(meta Metadata, now time.Time) {
	state := c.meta.State
	if meta.State != "" && state != StateClosed {
		state = meta.State
	}
	c.meta = Metadata{
		Offline:               meta.Offline,
		State:                 state,
		SampleRate:            meta.SampleRate,
		CallbackBufferSize:    meta.CallbackBufferSize,
		MaxOutputChannelCount: meta.MaxOutputChannelCount,
	}
	if meta.Realtime != nil {
		c.realtime = *meta.Realtime
	}
	if state == StateClosed && c.closedAt.IsZero() {
		c.closedAt = now
	}
}

// SetRealtime stores fresh render statistics.
func (c *Context) SetRealtime(rt RealtimeData) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.meta.State == StateClosed || c.realtime == rt {
		return false
	}
	c.realtime = rt
	return true
}

// Close marks the context closed at the given time. Closing twice is a no-op.
func (c *Context) Close(at time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.meta.State == StateClosed {
		return false
	}
	c.meta.State = StateClosed
	c.closedAt = at
	return true
}

// Closed reports whether the context is closed.
func (c *Context) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meta.State == StateClosed
}

// ClosedAt returns when the context was closed; zero while it is live.
func (c *Context) ClosedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closedAt
}

// Placeholder reports whether the context was never announced.
func (c *Context) Placeholder() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.placeholder
}

// Info returns a copy of the metadata.
func (c *Context) Info() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := Info{
		ID:                    c.id,
		Offline:               c.meta.Offline,
		State:                 c.meta.State,
		Placeholder:           c.placeholder,
		SampleRate:            c.meta.SampleRate,
		CallbackBufferSize:    c.meta.CallbackBufferSize,
		MaxOutputChannelCount: c.meta.MaxOutputChannelCount,
		Realtime:              c.realtime,
		CreatedAt:             c.createdAt,
	}
	if !c.closedAt.IsZero() {
		closed := c.closedAt
		info.ClosedAt = &closed
	}
	return info
}

// Snapshot returns the metadata and structure as plain values.
func (c *Context) Snapshot() ContextSnapshot {
	return ContextSnapshot{
		Context: c.Info(),
		Graph:   c.store.Snapshot(),
	}
}
