package event

import "github.com/chromedp/cdproto/webaudio"

// audioNode mirrors webaudio.AudioNode except for nodeType. cdproto types
// that field as the DOM node type enum (an integer) while the WebAudio
// domain sends the node's interface name, e.g. "Oscillator".
type audioNode struct {
	NodeID                webaudio.GraphObjectID         `json:"nodeId"`
	ContextID             webaudio.GraphObjectID         `json:"contextId"`
	NodeType              string                         `json:"nodeType"`
	NumberOfInputs        float64                        `json:"numberOfInputs"`
	NumberOfOutputs       float64                        `json:"numberOfOutputs"`
	ChannelCount          float64                        `json:"channelCount"`
	ChannelCountMode      webaudio.ChannelCountMode      `json:"channelCountMode"`
	ChannelInterpretation webaudio.ChannelInterpretation `json:"channelInterpretation"`
}

type audioNodeCreated struct {
	Node *audioNode `json:"node"`
}
