package event

import "github.com/vk/audiograph/internal/nodeid"

// Kind tags every event with its variant name.
type Kind string

const (
	KindContextCreated            Kind = "ContextCreated"
	KindContextChanged            Kind = "ContextChanged"
	KindContextDestroyed          Kind = "ContextDestroyed"
	KindNodeCreated               Kind = "NodeCreated"
	KindNodeDestroyed             Kind = "NodeDestroyed"
	KindParamCreated              Kind = "ParamCreated"
	KindParamDestroyed            Kind = "ParamDestroyed"
	KindListenerCreated           Kind = "ListenerCreated"
	KindListenerDestroyed         Kind = "ListenerDestroyed"
	KindNodeToNodeConnected       Kind = "NodeToNodeConnected"
	KindNodeToParamConnected      Kind = "NodeToParamConnected"
	KindAllDisconnected           Kind = "AllDisconnected"
	KindNodeFromNodeDisconnected  Kind = "NodeFromNodeDisconnected"
	KindNodeFromParamDisconnected Kind = "NodeFromParamDisconnected"
	KindParamValueChanged         Kind = "ParamValueChanged"
	KindNodePropertyChanged       Kind = "NodePropertyChanged"
	KindRealtimeDataUpdated       Kind = "RealtimeDataUpdated"
)

// Event is one lifecycle event. Every event names the context it belongs to.
type Event interface {
	Kind() Kind
	Context() nodeid.ContextID
}

// Context states as reported by the instrumentation.
const (
	StateConstructed = "constructed"
	StateRunning     = "running"
	StateSuspended   = "suspended"
	StateClosed      = "closed"
)

// ContextCreated announces a new BaseAudioContext.
type ContextCreated struct {
	ContextID             nodeid.ContextID `json:"contextId" validate:"required"`
	Offline               bool             `json:"offline"`
	State                 string           `json:"state" validate:"omitempty,oneof=constructed running suspended closed"`
	SampleRate            float64          `json:"sampleRate" validate:"gte=0"`
	CallbackBufferSize    float64          `json:"callbackBufferSize" validate:"gte=0"`
	MaxOutputChannelCount float64          `json:"maxOutputChannelCount" validate:"gte=0"`
	Realtime              *RealtimeData    `json:"realtime,omitempty"`
}

// ContextChanged carries a new state and metadata for a known context.
type ContextChanged struct {
	ContextID             nodeid.ContextID `json:"contextId" validate:"required"`
	Offline               bool             `json:"offline"`
	State                 string           `json:"state" validate:"omitempty,oneof=constructed running suspended closed"`
	SampleRate            float64          `json:"sampleRate" validate:"gte=0"`
	CallbackBufferSize    float64          `json:"callbackBufferSize" validate:"gte=0"`
	MaxOutputChannelCount float64          `json:"maxOutputChannelCount" validate:"gte=0"`
	Realtime              *RealtimeData    `json:"realtime,omitempty"`
}

// ContextDestroyed announces that a context is going away.
type ContextDestroyed struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
}

// NodeCreated announces a new AudioNode.
type NodeCreated struct {
	ContextID             nodeid.ContextID `json:"contextId" validate:"required"`
	NodeID                nodeid.ObjectID  `json:"nodeId" validate:"required"`
	NodeType              string           `json:"nodeType" validate:"required"`
	NumberOfInputs        int              `json:"numberOfInputs" validate:"gte=0"`
	NumberOfOutputs       int              `json:"numberOfOutputs" validate:"gte=0"`
	ChannelCount          int              `json:"channelCount" validate:"gte=0"`
	ChannelCountMode      string           `json:"channelCountMode,omitempty"`
	ChannelInterpretation string           `json:"channelInterpretation,omitempty"`
}

// NodeDestroyed announces that a node was garbage collected or released.
type NodeDestroyed struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	NodeID    nodeid.ObjectID  `json:"nodeId" validate:"required"`
}

// ParamCreated announces an AudioParam owned by a node or a listener.
type ParamCreated struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	ParamID   nodeid.ObjectID  `json:"paramId" validate:"required"`
	OwnerID   nodeid.ObjectID  `json:"ownerId" validate:"required"`
	ParamType string           `json:"paramType"`
	Rate      string           `json:"rate,omitempty" validate:"omitempty,oneof=a-rate k-rate"`
	Value     float64          `json:"value"`
	Default   float64          `json:"defaultValue"`
	Min       float64          `json:"minValue"`
	Max       float64          `json:"maxValue" validate:"gtefield=Min"`
}

// ParamDestroyed announces that a param is gone.
type ParamDestroyed struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	OwnerID   nodeid.ObjectID  `json:"ownerId"`
	ParamID   nodeid.ObjectID  `json:"paramId" validate:"required"`
}

// ListenerCreated announces the AudioListener of a context.
type ListenerCreated struct {
	ContextID  nodeid.ContextID `json:"contextId" validate:"required"`
	ListenerID nodeid.ObjectID  `json:"listenerId" validate:"required"`
}

// ListenerDestroyed announces that a listener is gone.
type ListenerDestroyed struct {
	ContextID  nodeid.ContextID `json:"contextId" validate:"required"`
	ListenerID nodeid.ObjectID  `json:"listenerId" validate:"required"`
}

// NodeToNodeConnected reports source.connect(destination, output, input).
type NodeToNodeConnected struct {
	ContextID     nodeid.ContextID `json:"contextId" validate:"required"`
	SourceID      nodeid.ObjectID  `json:"sourceId" validate:"required"`
	DestinationID nodeid.ObjectID  `json:"destinationId" validate:"required"`
	Output        int              `json:"sourceOutputIndex" validate:"gte=0"`
	Input         int              `json:"destinationInputIndex" validate:"gte=0"`
}

// NodeToParamConnected reports source.connect(param, output).
type NodeToParamConnected struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	SourceID  nodeid.ObjectID  `json:"sourceId" validate:"required"`
	ParamID   nodeid.ObjectID  `json:"paramId" validate:"required"`
	Output    int              `json:"sourceOutputIndex" validate:"gte=0"`
}

// AllDisconnected reports source.disconnect() with no arguments.
type AllDisconnected struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	SourceID  nodeid.ObjectID  `json:"sourceId" validate:"required"`
}

// NodeFromNodeDisconnected reports the removal of one node to node edge.
type NodeFromNodeDisconnected struct {
	ContextID     nodeid.ContextID `json:"contextId" validate:"required"`
	SourceID      nodeid.ObjectID  `json:"sourceId" validate:"required"`
	DestinationID nodeid.ObjectID  `json:"destinationId" validate:"required"`
	Output        int              `json:"sourceOutputIndex" validate:"gte=0"`
	Input         int              `json:"destinationInputIndex" validate:"gte=0"`
}

// NodeFromParamDisconnected reports the removal of one node to param edge.
type NodeFromParamDisconnected struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	SourceID  nodeid.ObjectID  `json:"sourceId" validate:"required"`
	ParamID   nodeid.ObjectID  `json:"paramId" validate:"required"`
	Output    int              `json:"sourceOutputIndex" validate:"gte=0"`
}

// ParamValueChanged reports a new current value for a param.
type ParamValueChanged struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	ParamID   nodeid.ObjectID  `json:"paramId" validate:"required"`
	Value     float64          `json:"value"`
}

// NodePropertyChanged reports a new value for a non-param node property.
// Exactly one of Number and Text is set.
type NodePropertyChanged struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	NodeID    nodeid.ObjectID  `json:"nodeId" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	Number    *float64         `json:"number,omitempty" validate:"required_without=Text,excluded_with=Text"`
	Text      *string          `json:"text,omitempty" validate:"required_without=Number"`
}

// RealtimeData are the render statistics of a running context.
type RealtimeData struct {
	CurrentTime              float64 `json:"currentTime" yaml:"currentTime" validate:"gte=0"`
	RenderCapacity           float64 `json:"renderCapacity" yaml:"renderCapacity" validate:"gte=0"`
	CallbackIntervalMean     float64 `json:"callbackIntervalMean" yaml:"callbackIntervalMean" validate:"gte=0"`
	CallbackIntervalVariance float64 `json:"callbackIntervalVariance" yaml:"callbackIntervalVariance" validate:"gte=0"`
}

// RealtimeDataUpdated pushes fresh render statistics for a context.
type RealtimeDataUpdated struct {
	ContextID nodeid.ContextID `json:"contextId" validate:"required"`
	Data      RealtimeData     `json:"realtimeData"`
}

func (ContextCreated) Kind() Kind            { return KindContextCreated }
func (ContextChanged) Kind() Kind            { return KindContextChanged }
func (ContextDestroyed) Kind() Kind          { return KindContextDestroyed }
func (NodeCreated) Kind() Kind               { return KindNodeCreated }
func (NodeDestroyed) Kind() Kind             { return KindNodeDestroyed }
func (ParamCreated) Kind() Kind              { return KindParamCreated }
func (ParamDestroyed) Kind() Kind            { return KindParamDestroyed }
func (ListenerCreated) Kind() Kind           { return KindListenerCreated }
func (ListenerDestroyed) Kind() Kind         { return KindListenerDestroyed }
func (NodeToNodeConnected) Kind() Kind       { return KindNodeToNodeConnected }
func (NodeToParamConnected) Kind() Kind      { return KindNodeToParamConnected }
func (AllDisconnected) Kind() Kind           { return KindAllDisconnected }
func (NodeFromNodeDisconnected) Kind() Kind  { return KindNodeFromNodeDisconnected }
func (NodeFromParamDisconnected) Kind() Kind { return KindNodeFromParamDisconnected }
func (ParamValueChanged) Kind() Kind         { return KindParamValueChanged }
func (NodePropertyChanged) Kind() Kind       { return KindNodePropertyChanged }
func (RealtimeDataUpdated) Kind() Kind       { return KindRealtimeDataUpdated }

func (e ContextCreated) Context() nodeid.ContextID            { return e.ContextID }
func (e ContextChanged) Context() nodeid.ContextID            { return e.ContextID }
func (e ContextDestroyed) Context() nodeid.ContextID          { return e.ContextID }
func (e NodeCreated) Context() nodeid.ContextID               { return e.ContextID }
func (e NodeDestroyed) Context() nodeid.ContextID             { return e.ContextID }
func (e ParamCreated) Context() nodeid.ContextID              { return e.ContextID }
func (e ParamDestroyed) Context() nodeid.ContextID            { return e.ContextID }
func (e ListenerCreated) Context() nodeid.ContextID           { return e.ContextID }
func (e ListenerDestroyed) Context() nodeid.ContextID         { return e.ContextID }
func (e NodeToNodeConnected) Context() nodeid.ContextID       { return e.ContextID }
func (e NodeToParamConnected) Context() nodeid.ContextID      { return e.ContextID }
func (e AllDisconnected) Context() nodeid.ContextID           { return e.ContextID }
func (e NodeFromNodeDisconnected) Context() nodeid.ContextID  { return e.ContextID }
func (e NodeFromParamDisconnected) Context() nodeid.ContextID { return e.ContextID }
func (e ParamValueChanged) Context() nodeid.ContextID         { return e.ContextID }
func (e NodePropertyChanged) Context() nodeid.ContextID       { return e.ContextID }
func (e RealtimeDataUpdated) Context() nodeid.ContextID       { return e.ContextID }

// Edge returns the edge identity the event names.
func (e NodeToNodeConnected) Edge() nodeid.EdgeKey {
	return nodeid.NewNodeEdge(e.SourceID, e.Output, e.DestinationID, e.Input)
}

// Edge returns the edge identity the event names.
func (e NodeToParamConnected) Edge() nodeid.EdgeKey {
	return nodeid.NewParamEdge(e.SourceID, e.Output, e.ParamID)
}

// Edge returns the edge identity the event names.
func (e NodeFromNodeDisconnected) Edge() nodeid.EdgeKey {
	return nodeid.NewNodeEdge(e.SourceID, e.Output, e.DestinationID, e.Input)
}

// Edge returns the edge identity the event names.
func (e NodeFromParamDisconnected) Edge() nodeid.EdgeKey {
	return nodeid.NewParamEdge(e.SourceID, e.Output, e.ParamID)
}
