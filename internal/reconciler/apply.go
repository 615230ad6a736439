package reconciler

import (
	"context"
	"time"

	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/event"
	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/node"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

// apply dispatches one validated event. It never fails: every inconsistency
// resolves to a no-op, a placeholder or a pending edge.
func (r *Reconciler) apply(ctx context.Context, e event.Event, cs *topologystore.ChangeSet, now time.Time) {
	switch ev := e.(type) {
	case event.ContextCreated:
		r.contextCreated(ev, cs, now)
	case event.ContextChanged:
		r.contextChanged(ev, cs, now)
	case event.ContextDestroyed:
		if r.registry.Close(ev.ContextID, now) {
			cs.MarkContext(topologystore.ContextClosed)
		}
	case event.RealtimeDataUpdated:
		if c, ok := r.live(ev.ContextID); ok && c.SetRealtime(graph.RealtimeData(ev.Data)) {
			cs.MarkContext(topologystore.ContextUpdated)
		}

	case event.NodeCreated:
		c, ok := r.ensure(ctx, ev.ContextID, cs, now)
		if !ok {
			return
		}
		if c.Store().AddNode(newNode(ev), cs) {
			c.Store().ResolvePending(ev.NodeID, cs)
		}
	case event.ParamCreated:
		c, ok := r.ensure(ctx, ev.ContextID, cs, now)
		if !ok {
			return
		}
		p := &node.Param{
			ID:      ev.ParamID,
			Owner:   ev.OwnerID,
			Context: ev.ContextID,
			Type:    ev.ParamType,
			Rate:    ev.Rate,
			Value:   ev.Value,
			Default: ev.Default,
			Min:     ev.Min,
			Max:     ev.Max,
		}
		if c.Store().AddParam(p, cs) {
			c.Store().ResolvePending(ev.ParamID, cs)
		}
	case event.ListenerCreated:
		c, ok := r.ensure(ctx, ev.ContextID, cs, now)
		if ok && c.Store().AddListener(ev.ListenerID) {
			cs.MarkContext(topologystore.ContextUpdated)
		}

	case event.NodeToNodeConnected:
		r.connect(ctx, ev.ContextID, ev.Edge(), cs, now)
	case event.NodeToParamConnected:
		r.connect(ctx, ev.ContextID, ev.Edge(), cs, now)

	case event.NodeFromNodeDisconnected:
		if c, ok := r.live(ev.ContextID); ok {
			c.Store().RemoveEdge(ev.Edge(), cs)
		}
	case event.NodeFromParamDisconnected:
		if c, ok := r.live(ev.ContextID); ok {
			c.Store().RemoveEdge(ev.Edge(), cs)
		}
	case event.AllDisconnected:
		if c, ok := r.live(ev.ContextID); ok {
			c.Store().RemoveEdgesFrom(ev.SourceID, cs)
		}

	case event.NodeDestroyed:
		if c, ok := r.live(ev.ContextID); ok {
			c.Store().RemoveNode(ev.NodeID, cs)
		}
	case event.ParamDestroyed:
		if c, ok := r.live(ev.ContextID); ok {
			c.Store().RemoveParam(ev.ParamID, cs)
		}
	case event.ListenerDestroyed:
		if c, ok := r.live(ev.ContextID); ok && c.Store().RemoveListener(ev.ListenerID, cs) {
			cs.MarkContext(topologystore.ContextUpdated)
		}

	case event.ParamValueChanged:
		if c, ok := r.live(ev.ContextID); ok {
			c.Store().UpdateParamValue(ev.ParamID, ev.Value, cs)
		}
	case event.NodePropertyChanged:
		if c, ok := r.live(ev.ContextID); ok {
			kind, value := propertyValue(ev)
			c.Store().UpdateProperty(ev.NodeID, ev.Name, kind, value, cs)
		}

	default:
		ctxlog.FromContext(ctx).Warn("No reconciler case for event.", "kind", e.Kind())
	}
}

func (r *Reconciler) contextCreated(ev event.ContextCreated, cs *topologystore.ChangeSet, now time.Time) {
	meta := metadata(ev.Offline, ev.State, ev.SampleRate, ev.CallbackBufferSize, ev.MaxOutputChannelCount, ev.Realtime)
	c, created := r.registry.Create(ev.ContextID, meta, now)
	switch {
	case created:
		cs.MarkContext(topologystore.ContextAdded)
	case c.Enrich(meta, now):
		cs.MarkContext(topologystore.ContextUpdated)
	}
}

func (r *Reconciler) contextChanged(ev event.ContextChanged, cs *topologystore.ChangeSet, now time.Time) {
	meta := metadata(ev.Offline, ev.State, ev.SampleRate, ev.CallbackBufferSize, ev.MaxOutputChannelCount, ev.Realtime)
	c, created := r.registry.Create(ev.ContextID, meta, now)
	if created {
		cs.MarkContext(topologystore.ContextAdded)
		return
	}
	wasClosed := c.Closed()
	if !c.Update(meta, now) {
		return
	}
	if !wasClosed && c.Closed() {
		cs.MarkContext(topologystore.ContextClosed)
		return
	}
	cs.MarkContext(topologystore.ContextUpdated)
}

// ensure returns the live context for a creating event, making a placeholder
// when the context has not been announced yet. Closed contexts absorb the
// event.
func (r *Reconciler) ensure(ctx context.Context, id nodeid.ContextID, cs *topologystore.ChangeSet, now time.Time) (*graph.Context, bool) {
	c, created := r.registry.Ensure(id, now)
	if created {
		placeholdersTotal.Inc()
		cs.MarkContext(topologystore.ContextAdded)
		ctxlog.FromContext(ctx).Debug("Created placeholder context.", "context", id, "cause", cs.Cause)
	}
	if c.Closed() {
		return nil, false
	}
	return c, true
}

// live returns a known, open context. Destructive events for unknown or
// closed contexts have nothing to act on.
func (r *Reconciler) live(id nodeid.ContextID) (*graph.Context, bool) {
	c, ok := r.registry.Get(id)
	if !ok || c.Closed() {
		return nil, false
	}
	return c, true
}

func (r *Reconciler) connect(ctx context.Context, id nodeid.ContextID, key nodeid.EdgeKey, cs *topologystore.ChangeSet, now time.Time) {
	c, ok := r.ensure(ctx, id, cs, now)
	if !ok {
		return
	}
	store := c.Store()
	if missing := store.MissingEndpoints(key); len(missing) > 0 {
		if store.AddPending(key, missing) {
			pendingEdgesTotal.Inc()
			ctxlog.FromContext(ctx).Debug("Holding edge until its endpoints exist.", "context", id, "edge", key.String(), "missing", missing)
		}
		return
	}
	store.AddEdge(key, cs)
}

func newNode(ev event.NodeCreated) *node.Node {
	n := node.New(ev.ContextID, ev.NodeID, ev.NodeType)
	n.Properties["numberOfInputs"] = node.NumberProperty(node.KindReadOnly, float64(ev.NumberOfInputs))
	n.Properties["numberOfOutputs"] = node.NumberProperty(node.KindReadOnly, float64(ev.NumberOfOutputs))
	n.Properties["channelCount"] = node.NumberProperty(node.KindNumber, float64(ev.ChannelCount))
	if ev.ChannelCountMode != "" {
		n.Properties["channelCountMode"] = node.StringProperty(node.KindEnum, ev.ChannelCountMode)
	}
	if ev.ChannelInterpretation != "" {
		n.Properties["channelInterpretation"] = node.StringProperty(node.KindEnum, ev.ChannelInterpretation)
	}
	return n
}

func propertyValue(ev event.NodePropertyChanged) (node.PropertyKind, cty.Value) {
	if ev.Number != nil {
		return node.KindNumber, cty.NumberFloatVal(*ev.Number)
	}
	return node.KindEnum, cty.StringVal(*ev.Text)
}

func metadata(offline bool, state string, sampleRate, bufferSize, maxChannels float64, rt *event.RealtimeData) graph.Metadata {
	meta := graph.Metadata{
		Offline:               offline,
		State:                 graph.State(state),
		SampleRate:            sampleRate,
		CallbackBufferSize:    bufferSize,
		MaxOutputChannelCount: maxChannels,
	}
	if rt != nil {
		converted := graph.RealtimeData(*rt)
		meta.Realtime = &converted
	}
	return meta
}
