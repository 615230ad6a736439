package testutil

import "strings"

// Ids used by the oscillator/gain/param fixture.
const (
	FixtureContextID   = "9d36b0e0-4251-41a6-89cb-876b0fbe1b62"
	FixtureDestination = "57a4d84b-6165-495e-9ad7-2ad82497d423"
	FixtureListener    = "bb5255e5-5bd3-4290-b714-ecd3ff57be28"
	FixtureDelay       = "e5bd5ec5-abb8-426a-bad8-65f723970c76"
	FixtureDelayTime   = "a88ea483-fc15-4c2b-ab0c-597af8e069b9"
	FixtureInputGain   = "61b107eb-24ad-4f11-b811-72b2c5e7e79f"
	FixtureOutputGain  = "78b78fae-b32e-4993-a2b4-7523c08e16c0"
	FixtureDepthGain   = "d8ac44f0-f099-40ff-9cf4-949148fca53f"
	FixtureOscillator  = "59200b98-60e1-43cf-88f6-d0a33d5643cf"
)

// OscillatorGainParamNDJSON is the event sequence a page produces for
//
//	const ctx = new AudioContext();
//	const delay = new DelayNode(ctx, {delayTime});
//	const input = new GainNode(ctx);
//	const output = new GainNode(ctx);
//	const depth = new GainNode(ctx, {gain: width});
//	const osc = new OscillatorNode(ctx, {type: "sine", frequency: speed});
//	input.connect(delay);
//	delay.connect(output);
//	osc.connect(depth);
//	depth.connect(delay.delayTime);
//
// followed by the context being torn down. One envelope per line.
const OscillatorGainParamNDJSON = `{"method":"WebAudio.contextCreated","params":{"context":{"callbackBufferSize":256,"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","contextState":"suspended","contextType":"realtime","maxOutputChannelCount":2,"sampleRate":48000}}}
{"method":"WebAudio.audioNodeCreated","params":{"node":{"channelCount":2,"channelCountMode":"explicit","channelInterpretation":"speakers","contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","nodeId":"57a4d84b-6165-495e-9ad7-2ad82497d423","nodeType":"AudioDestination","numberOfInputs":1,"numberOfOutputs":0}}}
{"method":"WebAudio.audioListenerCreated","params":{"listener":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","listenerId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"63a77a6c-1779-42df-bedc-c68c5171722f","paramType":"positionX","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"e15f2c0e-f466-4d2a-92a2-c3fe23e591f5","paramType":"positionY","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"bbabbcc8-91eb-4014-9351-43e1742644e9","paramType":"positionZ","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"4e3f5c2d-6b59-4a69-ab4f-da62db30e7db","paramType":"forwardX","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"d2425aaa-dc91-4e60-ba57-22be7b26f941","paramType":"forwardY","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":-1,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"1842fc18-6b51-402b-97f1-c56d4681866a","paramType":"forwardZ","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"872a56b9-ed99-47ea-9957-bda9307fac5b","paramType":"upX","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":1,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"4acf61c7-363f-44af-9857-c5e8c8ea5629","paramType":"upY","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"bb5255e5-5bd3-4290-b714-ecd3ff57be28","paramId":"4b818074-5b96-42c3-b2e6-fcdd350e37bb","paramType":"upZ","rate":"a-rate"}}}
{"method":"WebAudio.audioNodeCreated","params":{"node":{"channelCount":2,"channelCountMode":"max","channelInterpretation":"speakers","contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","nodeId":"e5bd5ec5-abb8-426a-bad8-65f723970c76","nodeType":"Delay","numberOfInputs":1,"numberOfOutputs":1}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":1,"minValue":0,"nodeId":"e5bd5ec5-abb8-426a-bad8-65f723970c76","paramId":"a88ea483-fc15-4c2b-ab0c-597af8e069b9","paramType":"delayTime","rate":"a-rate"}}}
{"method":"WebAudio.audioNodeCreated","params":{"node":{"channelCount":2,"channelCountMode":"max","channelInterpretation":"speakers","contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","nodeId":"61b107eb-24ad-4f11-b811-72b2c5e7e79f","nodeType":"Gain","numberOfInputs":1,"numberOfOutputs":1}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":1,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"61b107eb-24ad-4f11-b811-72b2c5e7e79f","paramId":"03e13b59-a58f-4883-8479-d7a048ebe80a","paramType":"gain","rate":"a-rate"}}}
{"method":"WebAudio.audioNodeCreated","params":{"node":{"channelCount":2,"channelCountMode":"max","channelInterpretation":"speakers","contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","nodeId":"78b78fae-b32e-4993-a2b4-7523c08e16c0","nodeType":"Gain","numberOfInputs":1,"numberOfOutputs":1}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":1,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"78b78fae-b32e-4993-a2b4-7523c08e16c0","paramId":"b6ea1b98-2dda-43d0-8a52-49492fcafdde","paramType":"gain","rate":"a-rate"}}}
{"method":"WebAudio.audioNodeCreated","params":{"node":{"channelCount":2,"channelCountMode":"max","channelInterpretation":"speakers","contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","nodeId":"d8ac44f0-f099-40ff-9cf4-949148fca53f","nodeType":"Gain","numberOfInputs":1,"numberOfOutputs":1}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":1,"maxValue":3.4028234663852886e38,"minValue":-3.4028234663852886e38,"nodeId":"d8ac44f0-f099-40ff-9cf4-949148fca53f","paramId":"38ec329f-650c-4c35-805c-32c559b47ea7","paramType":"gain","rate":"a-rate"}}}
{"method":"WebAudio.audioNodeCreated","params":{"node":{"channelCount":2,"channelCountMode":"max","channelInterpretation":"speakers","contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","nodeId":"59200b98-60e1-43cf-88f6-d0a33d5643cf","nodeType":"Oscillator","numberOfInputs":0,"numberOfOutputs":1}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":0,"maxValue":153600,"minValue":-153600,"nodeId":"59200b98-60e1-43cf-88f6-d0a33d5643cf","paramId":"0b2b73d2-bc98-423b-a19c-1a0651e06d20","paramType":"detune","rate":"a-rate"}}}
{"method":"WebAudio.audioParamCreated","params":{"param":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","defaultValue":440,"maxValue":24000,"minValue":-24000,"nodeId":"59200b98-60e1-43cf-88f6-d0a33d5643cf","paramId":"42dddc62-c058-473e-9f48-a678a708c001","paramType":"frequency","rate":"a-rate"}}}
{"method":"WebAudio.nodesConnected","params":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","destinationId":"e5bd5ec5-abb8-426a-bad8-65f723970c76","destinationInputIndex":0,"sourceId":"61b107eb-24ad-4f11-b811-72b2c5e7e79f","sourceOutputIndex":0}}
{"method":"WebAudio.nodesConnected","params":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","destinationId":"78b78fae-b32e-4993-a2b4-7523c08e16c0","destinationInputIndex":0,"sourceId":"e5bd5ec5-abb8-426a-bad8-65f723970c76","sourceOutputIndex":0}}
{"method":"WebAudio.nodesConnected","params":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","destinationId":"d8ac44f0-f099-40ff-9cf4-949148fca53f","destinationInputIndex":0,"sourceId":"59200b98-60e1-43cf-88f6-d0a33d5643cf","sourceOutputIndex":0}}
{"method":"WebAudio.nodeParamConnected","params":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62","destinationId":"a88ea483-fc15-4c2b-ab0c-597af8e069b9","sourceId":"d8ac44f0-f099-40ff-9cf4-949148fca53f","sourceOutputIndex":0}}
{"method":"WebAudio.contextWillBeDestroyed","params":{"contextId":"9d36b0e0-4251-41a6-89cb-876b0fbe1b62"}}
`

// OscillatorGainParamEvents returns the fixture as one envelope per element.
func OscillatorGainParamEvents() []string {
	return strings.Split(strings.TrimSpace(OscillatorGainParamNDJSON), "\n")
}
