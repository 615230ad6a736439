package event

import (
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/webaudio"
)

// Encode produces the envelope form of e, the inverse of DecodeEnvelope.
func Encode(e Event) ([]byte, error) {
	method, params, err := encodeParams(e)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", method, err)
	}
	return json.Marshal(Envelope{Method: method, Params: raw})
}

func encodeParams(e Event) (string, any, error) {
	switch ev := e.(type) {
	case ContextCreated:
		return string(cdproto.EventWebAudioContextCreated),
			&webaudio.EventContextCreated{Context: baseContext(contextPayload(ev))}, nil
	case ContextChanged:
		return string(cdproto.EventWebAudioContextChanged),
			&webaudio.EventContextChanged{Context: baseContext(contextPayload(ev))}, nil
	case ContextDestroyed:
		return string(cdproto.EventWebAudioContextWillBeDestroyed),
			&webaudio.EventContextWillBeDestroyed{ContextID: webaudio.GraphObjectID(ev.ContextID)}, nil
	case ListenerCreated:
		return string(cdproto.EventWebAudioAudioListenerCreated),
			&webaudio.EventAudioListenerCreated{Listener: &webaudio.AudioListener{
				ListenerID: webaudio.GraphObjectID(ev.ListenerID),
				ContextID:  webaudio.GraphObjectID(ev.ContextID),
			}}, nil
	case ListenerDestroyed:
		return string(cdproto.EventWebAudioAudioListenerWillBeDestroyed),
			&webaudio.EventAudioListenerWillBeDestroyed{
				ContextID:  webaudio.GraphObjectID(ev.ContextID),
				ListenerID: webaudio.GraphObjectID(ev.ListenerID),
			}, nil
	case NodeCreated:
		return string(cdproto.EventWebAudioAudioNodeCreated),
			&audioNodeCreated{Node: &audioNode{
				NodeID:                webaudio.GraphObjectID(ev.NodeID),
				ContextID:             webaudio.GraphObjectID(ev.ContextID),
				NodeType:              ev.NodeType,
				NumberOfInputs:        float64(ev.NumberOfInputs),
				NumberOfOutputs:       float64(ev.NumberOfOutputs),
				ChannelCount:          float64(ev.ChannelCount),
				ChannelCountMode:      webaudio.ChannelCountMode(orDefault(ev.ChannelCountMode, string(webaudio.ChannelCountModeMax))),
				ChannelInterpretation: webaudio.ChannelInterpretation(orDefault(ev.ChannelInterpretation, string(webaudio.ChannelInterpretationSpeakers))),
			}}, nil
	case NodeDestroyed:
		return string(cdproto.EventWebAudioAudioNodeWillBeDestroyed),
			&webaudio.EventAudioNodeWillBeDestroyed{
				ContextID: webaudio.GraphObjectID(ev.ContextID),
				NodeID:    webaudio.GraphObjectID(ev.NodeID),
			}, nil
	case ParamCreated:
		return string(cdproto.EventWebAudioAudioParamCreated),
			&webaudio.EventAudioParamCreated{Param: &webaudio.AudioParam{
				ParamID:      webaudio.GraphObjectID(ev.ParamID),
				NodeID:       webaudio.GraphObjectID(ev.OwnerID),
				ContextID:    webaudio.GraphObjectID(ev.ContextID),
				ParamType:    webaudio.ParamType(ev.ParamType),
				Rate:         webaudio.AutomationRate(orDefault(ev.Rate, string(webaudio.AutomationRateARate))),
				DefaultValue: ev.Default,
				MinValue:     ev.Min,
				MaxValue:     ev.Max,
			}}, nil
	case ParamDestroyed:
		return string(cdproto.EventWebAudioAudioParamWillBeDestroyed),
			&webaudio.EventAudioParamWillBeDestroyed{
				ContextID: webaudio.GraphObjectID(ev.ContextID),
				NodeID:    webaudio.GraphObjectID(ev.OwnerID),
				ParamID:   webaudio.GraphObjectID(ev.ParamID),
			}, nil
	case NodeToNodeConnected:
		return string(cdproto.EventWebAudioNodesConnected),
			&webaudio.EventNodesConnected{
				ContextID:             webaudio.GraphObjectID(ev.ContextID),
				SourceID:              webaudio.GraphObjectID(ev.SourceID),
				DestinationID:         webaudio.GraphObjectID(ev.DestinationID),
				SourceOutputIndex:     float64(ev.Output),
				DestinationInputIndex: float64(ev.Input),
			}, nil
	case NodeFromNodeDisconnected:
		return string(cdproto.EventWebAudioNodesDisconnected),
			&webaudio.EventNodesDisconnected{
				ContextID:             webaudio.GraphObjectID(ev.ContextID),
				SourceID:              webaudio.GraphObjectID(ev.SourceID),
				DestinationID:         webaudio.GraphObjectID(ev.DestinationID),
				SourceOutputIndex:     float64(ev.Output),
				DestinationInputIndex: float64(ev.Input),
			}, nil
	case AllDisconnected:
		return string(cdproto.EventWebAudioNodesDisconnected),
			&webaudio.EventNodesDisconnected{
				ContextID: webaudio.GraphObjectID(ev.ContextID),
				SourceID:  webaudio.GraphObjectID(ev.SourceID),
			}, nil
	case NodeToParamConnected:
		return string(cdproto.EventWebAudioNodeParamConnected),
			&webaudio.EventNodeParamConnected{
				ContextID:         webaudio.GraphObjectID(ev.ContextID),
				SourceID:          webaudio.GraphObjectID(ev.SourceID),
				DestinationID:     webaudio.GraphObjectID(ev.ParamID),
				SourceOutputIndex: float64(ev.Output),
			}, nil
	case NodeFromParamDisconnected:
		return string(cdproto.EventWebAudioNodeParamDisconnected),
			&webaudio.EventNodeParamDisconnected{
				ContextID:         webaudio.GraphObjectID(ev.ContextID),
				SourceID:          webaudio.GraphObjectID(ev.SourceID),
				DestinationID:     webaudio.GraphObjectID(ev.ParamID),
				SourceOutputIndex: float64(ev.Output),
			}, nil
	case ParamValueChanged:
		return MethodParamValueChanged, ev, nil
	case NodePropertyChanged:
		return MethodNodePropertyChanged, ev, nil
	case RealtimeDataUpdated:
		return MethodRealtimeData, ev, nil
	}
	return "", nil, fmt.Errorf("cannot encode event of type %T", e)
}

// baseContext builds the protocol context. The protocol has no
// "constructed" state; a context that has not started rendering is reported
// as suspended by browsers, so that is what goes on the wire.
func baseContext(c contextPayload) *webaudio.BaseAudioContext {
	state := c.State
	if state == "" || state == StateConstructed {
		state = StateSuspended
	}
	ctxType := webaudio.ContextTypeRealtime
	if c.Offline {
		ctxType = webaudio.ContextTypeOffline
	}
	out := &webaudio.BaseAudioContext{
		ContextID:             webaudio.GraphObjectID(c.ContextID),
		ContextType:           ctxType,
		ContextState:          webaudio.ContextState(state),
		CallbackBufferSize:    c.CallbackBufferSize,
		MaxOutputChannelCount: c.MaxOutputChannelCount,
		SampleRate:            c.SampleRate,
	}
	if rt := c.Realtime; rt != nil {
		out.RealtimeData = &webaudio.ContextRealtimeData{
			CurrentTime:              rt.CurrentTime,
			RenderCapacity:           rt.RenderCapacity,
			CallbackIntervalMean:     rt.CallbackIntervalMean,
			CallbackIntervalVariance: rt.CallbackIntervalVariance,
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
