package event

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/webaudio"
	"github.com/vk/audiograph/internal/nodeid"
)

// Extension methods for values the WebAudio protocol domain does not push.
const (
	MethodParamValueChanged   = "Audiograph.paramValueChanged"
	MethodNodePropertyChanged = "Audiograph.nodePropertyChanged"
	MethodRealtimeData        = "Audiograph.realtimeData"
)

// Envelope is the wire form of one event.
type Envelope struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// DecodeEnvelope parses one JSON envelope into a validated Event.
func DecodeEnvelope(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &MalformedEventError{Reason: "invalid envelope", Err: err}
	}
	if env.Method == "" {
		return nil, &MalformedEventError{Field: "method", Reason: "missing"}
	}
	return Decode(env.Method, env.Params)
}

// Decode converts the params of a known method into a validated Event.
func Decode(method string, params []byte) (Event, error) {
	if len(params) == 0 {
		return nil, &MalformedEventError{Method: method, Field: "params", Reason: "missing"}
	}

	e, err := decodeParams(method, params)
	if err != nil {
		return nil, err
	}
	if err := Validate(e); err != nil {
		if me, ok := err.(*MalformedEventError); ok {
			me.Method = method
		}
		return nil, err
	}
	return e, nil
}

func decodeParams(method string, params []byte) (Event, error) {
	unmarshal := func(v any) error {
		if err := json.Unmarshal(params, v); err != nil {
			return &MalformedEventError{Method: method, Reason: "invalid params", Err: err}
		}
		return nil
	}

	switch cdproto.MethodType(method) {
	case cdproto.EventWebAudioContextCreated:
		var ev webaudio.EventContextCreated
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		if ev.Context == nil {
			return nil, &MalformedEventError{Method: method, Field: "context", Reason: "missing"}
		}
		c := contextFields(ev.Context)
		return ContextCreated(c), nil

	case cdproto.EventWebAudioContextChanged:
		var ev webaudio.EventContextChanged
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		if ev.Context == nil {
			return nil, &MalformedEventError{Method: method, Field: "context", Reason: "missing"}
		}
		c := contextFields(ev.Context)
		return ContextChanged(c), nil

	case cdproto.EventWebAudioContextWillBeDestroyed:
		var ev webaudio.EventContextWillBeDestroyed
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		return ContextDestroyed{ContextID: nodeid.ContextID(ev.ContextID)}, nil

	case cdproto.EventWebAudioAudioListenerCreated:
		var ev webaudio.EventAudioListenerCreated
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		if ev.Listener == nil {
			return nil, &MalformedEventError{Method: method, Field: "listener", Reason: "missing"}
		}
		return ListenerCreated{
			ContextID:  nodeid.ContextID(ev.Listener.ContextID),
			ListenerID: nodeid.ObjectID(ev.Listener.ListenerID),
		}, nil

	case cdproto.EventWebAudioAudioListenerWillBeDestroyed:
		var ev webaudio.EventAudioListenerWillBeDestroyed
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		return ListenerDestroyed{
			ContextID:  nodeid.ContextID(ev.ContextID),
			ListenerID: nodeid.ObjectID(ev.ListenerID),
		}, nil

	case cdproto.EventWebAudioAudioNodeCreated:
		var ev audioNodeCreated
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		if ev.Node == nil {
			return nil, &MalformedEventError{Method: method, Field: "node", Reason: "missing"}
		}
		n := ev.Node
		inputs, err := count(method, "numberOfInputs", n.NumberOfInputs)
		if err != nil {
			return nil, err
		}
		outputs, err := count(method, "numberOfOutputs", n.NumberOfOutputs)
		if err != nil {
			return nil, err
		}
		channels, err := count(method, "channelCount", n.ChannelCount)
		if err != nil {
			return nil, err
		}
		return NodeCreated{
			ContextID:             nodeid.ContextID(n.ContextID),
			NodeID:                nodeid.ObjectID(n.NodeID),
			NodeType:              n.NodeType,
			NumberOfInputs:        inputs,
			NumberOfOutputs:       outputs,
			ChannelCount:          channels,
			ChannelCountMode:      string(n.ChannelCountMode),
			ChannelInterpretation: string(n.ChannelInterpretation),
		}, nil

	case cdproto.EventWebAudioAudioNodeWillBeDestroyed:
		var ev webaudio.EventAudioNodeWillBeDestroyed
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		return NodeDestroyed{
			ContextID: nodeid.ContextID(ev.ContextID),
			NodeID:    nodeid.ObjectID(ev.NodeID),
		}, nil

	case cdproto.EventWebAudioAudioParamCreated:
		var ev webaudio.EventAudioParamCreated
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		if ev.Param == nil {
			return nil, &MalformedEventError{Method: method, Field: "param", Reason: "missing"}
		}
		p := ev.Param
		// The protocol reports no current value; a fresh param sits at its default.
		return ParamCreated{
			ContextID: nodeid.ContextID(p.ContextID),
			ParamID:   nodeid.ObjectID(p.ParamID),
			OwnerID:   nodeid.ObjectID(p.NodeID),
			ParamType: string(p.ParamType),
			Rate:      string(p.Rate),
			Value:     p.DefaultValue,
			Default:   p.DefaultValue,
			Min:       p.MinValue,
			Max:       p.MaxValue,
		}, nil

	case cdproto.EventWebAudioAudioParamWillBeDestroyed:
		var ev webaudio.EventAudioParamWillBeDestroyed
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		return ParamDestroyed{
			ContextID: nodeid.ContextID(ev.ContextID),
			OwnerID:   nodeid.ObjectID(ev.NodeID),
			ParamID:   nodeid.ObjectID(ev.ParamID),
		}, nil

	case cdproto.EventWebAudioNodesConnected:
		var ev webaudio.EventNodesConnected
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		out, in, err := terminals(method, ev.SourceOutputIndex, ev.DestinationInputIndex)
		if err != nil {
			return nil, err
		}
		return NodeToNodeConnected{
			ContextID:     nodeid.ContextID(ev.ContextID),
			SourceID:      nodeid.ObjectID(ev.SourceID),
			DestinationID: nodeid.ObjectID(ev.DestinationID),
			Output:        out,
			Input:         in,
		}, nil

	case cdproto.EventWebAudioNodesDisconnected:
		var ev webaudio.EventNodesDisconnected
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		// disconnect() without arguments reports no destination.
		if ev.DestinationID == "" {
			return AllDisconnected{
				ContextID: nodeid.ContextID(ev.ContextID),
				SourceID:  nodeid.ObjectID(ev.SourceID),
			}, nil
		}
		out, in, err := terminals(method, ev.SourceOutputIndex, ev.DestinationInputIndex)
		if err != nil {
			return nil, err
		}
		return NodeFromNodeDisconnected{
			ContextID:     nodeid.ContextID(ev.ContextID),
			SourceID:      nodeid.ObjectID(ev.SourceID),
			DestinationID: nodeid.ObjectID(ev.DestinationID),
			Output:        out,
			Input:         in,
		}, nil

	case cdproto.EventWebAudioNodeParamConnected:
		var ev webaudio.EventNodeParamConnected
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		out, _, err := terminals(method, ev.SourceOutputIndex, 0)
		if err != nil {
			return nil, err
		}
		return NodeToParamConnected{
			ContextID: nodeid.ContextID(ev.ContextID),
			SourceID:  nodeid.ObjectID(ev.SourceID),
			ParamID:   nodeid.ObjectID(ev.DestinationID),
			Output:    out,
		}, nil

	case cdproto.EventWebAudioNodeParamDisconnected:
		var ev webaudio.EventNodeParamDisconnected
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		out, _, err := terminals(method, ev.SourceOutputIndex, 0)
		if err != nil {
			return nil, err
		}
		return NodeFromParamDisconnected{
			ContextID: nodeid.ContextID(ev.ContextID),
			SourceID:  nodeid.ObjectID(ev.SourceID),
			ParamID:   nodeid.ObjectID(ev.DestinationID),
			Output:    out,
		}, nil
	}

	switch method {
	case MethodParamValueChanged:
		var ev ParamValueChanged
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MethodNodePropertyChanged:
		var ev NodePropertyChanged
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MethodRealtimeData:
		var ev RealtimeDataUpdated
		if err := unmarshal(&ev); err != nil {
			return nil, err
		}
		return ev, nil
	}

	return nil, &MalformedEventError{Method: method, Reason: "unknown method"}
}

// contextPayload is the shared shape of ContextCreated and ContextChanged.
type contextPayload struct {
	ContextID             nodeid.ContextID
	Offline               bool
	State                 string
	SampleRate            float64
	CallbackBufferSize    float64
	MaxOutputChannelCount float64
	Realtime              *RealtimeData
}

func contextFields(c *webaudio.BaseAudioContext) contextPayload {
	out := contextPayload{
		ContextID:             nodeid.ContextID(c.ContextID),
		Offline:               c.ContextType == webaudio.ContextTypeOffline,
		State:                 string(c.ContextState),
		SampleRate:            c.SampleRate,
		CallbackBufferSize:    c.CallbackBufferSize,
		MaxOutputChannelCount: c.MaxOutputChannelCount,
	}
	if rt := c.RealtimeData; rt != nil {
		out.Realtime = &RealtimeData{
			CurrentTime:              rt.CurrentTime,
			RenderCapacity:           rt.RenderCapacity,
			CallbackIntervalMean:     rt.CallbackIntervalMean,
			CallbackIntervalVariance: rt.CallbackIntervalVariance,
		}
	}
	return out
}

// count converts a protocol number into a non-negative integer.
func count(method, field string, v float64) (int, error) {
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, &MalformedEventError{Method: method, Field: field, Reason: fmt.Sprintf("not a valid count: %v", v)}
	}
	return int(v), nil
}

func terminals(method string, output, input float64) (int, int, error) {
	out, err := count(method, "sourceOutputIndex", output)
	if err != nil {
		return 0, 0, err
	}
	in, err := count(method, "destinationInputIndex", input)
	if err != nil {
		return 0, 0, err
	}
	return out, in, nil
}
