package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/audiograph/internal/event"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/testutil"
)

func TestDecodeEnvelope_Fixture(t *testing.T) {
	lines := testutil.OscillatorGainParamEvents()
	require.Len(t, lines, 28)

	counts := map[event.Kind]int{}
	var events []event.Event
	for i, line := range lines {
		e, err := event.DecodeEnvelope([]byte(line))
		require.NoError(t, err, "line %d", i+1)
		assert.Equal(t, nodeid.ContextID(testutil.FixtureContextID), e.Context())
		counts[e.Kind()]++
		events = append(events, e)
	}

	assert.Equal(t, map[event.Kind]int{
		event.KindContextCreated:       1,
		event.KindNodeCreated:          6,
		event.KindListenerCreated:      1,
		event.KindParamCreated:         15,
		event.KindNodeToNodeConnected:  3,
		event.KindNodeToParamConnected: 1,
		event.KindContextDestroyed:     1,
	}, counts)

	created, ok := events[0].(event.ContextCreated)
	require.True(t, ok)
	assert.False(t, created.Offline)
	assert.Equal(t, event.StateSuspended, created.State)
	assert.Equal(t, 48000.0, created.SampleRate)
	assert.Equal(t, 256.0, created.CallbackBufferSize)

	dest, ok := events[1].(event.NodeCreated)
	require.True(t, ok)
	assert.Equal(t, "AudioDestination", dest.NodeType)
	assert.Equal(t, 1, dest.NumberOfInputs)
	assert.Equal(t, 0, dest.NumberOfOutputs)
	assert.Equal(t, "explicit", dest.ChannelCountMode)

	listenerParam, ok := events[3].(event.ParamCreated)
	require.True(t, ok)
	assert.Equal(t, nodeid.ObjectID(testutil.FixtureListener), listenerParam.OwnerID)
	assert.Equal(t, "positionX", listenerParam.ParamType)

	paramEdge, ok := events[26].(event.NodeToParamConnected)
	require.True(t, ok)
	assert.Equal(t, nodeid.NewParamEdge(testutil.FixtureDepthGain, 0, testutil.FixtureDelayTime), paramEdge.Edge())
}

func TestDecodeEnvelope_Disconnects(t *testing.T) {
	e, err := event.DecodeEnvelope([]byte(`{"method":"WebAudio.nodesDisconnected","params":{"contextId":"c1","sourceId":"a","destinationId":""}}`))
	require.NoError(t, err)
	assert.Equal(t, event.AllDisconnected{ContextID: "c1", SourceID: "a"}, e)

	e, err = event.DecodeEnvelope([]byte(`{"method":"WebAudio.nodesDisconnected","params":{"contextId":"c1","sourceId":"a","destinationId":"b","sourceOutputIndex":1,"destinationInputIndex":2}}`))
	require.NoError(t, err)
	assert.Equal(t, event.NodeFromNodeDisconnected{ContextID: "c1", SourceID: "a", DestinationID: "b", Output: 1, Input: 2}, e)

	e, err = event.DecodeEnvelope([]byte(`{"method":"WebAudio.nodeParamDisconnected","params":{"contextId":"c1","sourceId":"a","destinationId":"p"}}`))
	require.NoError(t, err)
	assert.Equal(t, event.NodeFromParamDisconnected{ContextID: "c1", SourceID: "a", ParamID: "p"}, e)
}

func TestDecodeEnvelope_Extensions(t *testing.T) {
	e, err := event.DecodeEnvelope([]byte(`{"method":"Audiograph.paramValueChanged","params":{"contextId":"c1","paramId":"p1","value":0.25}}`))
	require.NoError(t, err)
	assert.Equal(t, event.ParamValueChanged{ContextID: "c1", ParamID: "p1", Value: 0.25}, e)

	e, err = event.DecodeEnvelope([]byte(`{"method":"Audiograph.nodePropertyChanged","params":{"contextId":"c1","nodeId":"n1","name":"type","text":"square"}}`))
	require.NoError(t, err)
	prop, ok := e.(event.NodePropertyChanged)
	require.True(t, ok)
	require.NotNil(t, prop.Text)
	assert.Equal(t, "square", *prop.Text)
	assert.Nil(t, prop.Number)

	e, err = event.DecodeEnvelope([]byte(`{"method":"Audiograph.realtimeData","params":{"contextId":"c1","realtimeData":{"currentTime":1.5,"renderCapacity":0.1}}}`))
	require.NoError(t, err)
	rt, ok := e.(event.RealtimeDataUpdated)
	require.True(t, ok)
	assert.Equal(t, 1.5, rt.Data.CurrentTime)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `{"method":`},
		{name: "missing method", input: `{"params":{}}`},
		{name: "missing params", input: `{"method":"WebAudio.contextCreated"}`},
		{name: "unknown method", input: `{"method":"WebAudio.somethingElse","params":{}}`},
		{name: "missing context object", input: `{"method":"WebAudio.contextCreated","params":{}}`},
		{name: "missing node id", input: `{"method":"WebAudio.audioNodeCreated","params":{"node":{"contextId":"c1","nodeType":"Gain","channelCountMode":"max","channelInterpretation":"speakers"}}}`},
		{name: "fractional index", input: `{"method":"WebAudio.nodesConnected","params":{"contextId":"c1","sourceId":"a","destinationId":"b","sourceOutputIndex":0.5}}`},
		{name: "missing context id", input: `{"method":"WebAudio.contextWillBeDestroyed","params":{}}`},
		{name: "property without value", input: `{"method":"Audiograph.nodePropertyChanged","params":{"contextId":"c1","nodeId":"n1","name":"type"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := event.DecodeEnvelope([]byte(tc.input))
			require.Error(t, err)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, event.ErrMalformedEvent)
		})
	}
}

func TestDecodeEnvelope_NodeTypeIsInterfaceName(t *testing.T) {
	line := `{"method":"WebAudio.audioNodeCreated","params":{"node":{"nodeId":"n1","contextId":"c1","nodeType":"Oscillator","numberOfInputs":0,"numberOfOutputs":1,"channelCount":2,"channelCountMode":"max","channelInterpretation":"speakers"}}}`

	e, err := event.DecodeEnvelope([]byte(line))
	require.NoError(t, err)

	created, ok := e.(event.NodeCreated)
	require.True(t, ok)
	assert.Equal(t, event.NodeCreated{
		ContextID:             "c1",
		NodeID:                "n1",
		NodeType:              "Oscillator",
		NumberOfOutputs:       1,
		ChannelCount:          2,
		ChannelCountMode:      "max",
		ChannelInterpretation: "speakers",
	}, created)

	data, err := event.Encode(created)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nodeType":"Oscillator"`)
}

func TestEncode_RoundTrip(t *testing.T) {
	freq := 880.0
	events := []event.Event{
		event.ContextCreated{ContextID: "c1", Offline: true, State: event.StateRunning, SampleRate: 44100, CallbackBufferSize: 128, MaxOutputChannelCount: 2},
		event.ContextChanged{ContextID: "c1", State: event.StateClosed, SampleRate: 44100, Realtime: &event.RealtimeData{CurrentTime: 3}},
		event.ContextDestroyed{ContextID: "c1"},
		event.NodeCreated{ContextID: "c1", NodeID: "n1", NodeType: "Oscillator", NumberOfOutputs: 1, ChannelCount: 2, ChannelCountMode: "max", ChannelInterpretation: "speakers"},
		event.NodeDestroyed{ContextID: "c1", NodeID: "n1"},
		event.ParamCreated{ContextID: "c1", ParamID: "p1", OwnerID: "n1", ParamType: "frequency", Rate: "a-rate", Value: 440, Default: 440, Min: -24000, Max: 24000},
		event.ParamDestroyed{ContextID: "c1", OwnerID: "n1", ParamID: "p1"},
		event.ListenerCreated{ContextID: "c1", ListenerID: "l1"},
		event.ListenerDestroyed{ContextID: "c1", ListenerID: "l1"},
		event.NodeToNodeConnected{ContextID: "c1", SourceID: "a", DestinationID: "b", Output: 1, Input: 0},
		event.NodeToParamConnected{ContextID: "c1", SourceID: "a", ParamID: "p1", Output: 0},
		event.AllDisconnected{ContextID: "c1", SourceID: "a"},
		event.NodeFromNodeDisconnected{ContextID: "c1", SourceID: "a", DestinationID: "b", Output: 1, Input: 0},
		event.NodeFromParamDisconnected{ContextID: "c1", SourceID: "a", ParamID: "p1"},
		event.ParamValueChanged{ContextID: "c1", ParamID: "p1", Value: 0.5},
		event.NodePropertyChanged{ContextID: "c1", NodeID: "n1", Name: "frequency", Number: &freq},
		event.RealtimeDataUpdated{ContextID: "c1", Data: event.RealtimeData{CurrentTime: 2, RenderCapacity: 0.3}},
	}

	for _, e := range events {
		t.Run(string(e.Kind()), func(t *testing.T) {
			data, err := event.Encode(e)
			require.NoError(t, err)

			got, err := event.DecodeEnvelope(data)
			require.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}
}

func TestEncode_ConstructedStateGoesOutAsSuspended(t *testing.T) {
	data, err := event.Encode(event.ContextCreated{ContextID: "c1", State: event.StateConstructed})
	require.NoError(t, err)

	got, err := event.DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, event.StateSuspended, got.(event.ContextCreated).State)
}
