// Package event defines the closed set of audio-graph lifecycle events the
// reconciler understands, together with boundary validation and the wire
// envelope used by every transport.
//
// # Event Model
//
// Each kind of event is its own struct implementing the Event interface. The
// reconciler switches on the concrete type, so adding a kind means adding a
// struct here and a case there; nothing is dispatched by string at runtime.
//
// # Wire Format
//
// Transports deliver Chrome DevTools Protocol style envelopes:
//
//	{"method": "WebAudio.audioNodeCreated", "params": {"node": {...}}}
//
// WebAudio.* methods are decoded through github.com/chromedp/cdproto/webaudio.
// A few values the protocol does not carry (param values, node property
// changes, realtime data pushes) use the Audiograph.* extension methods.
//
// Anything that cannot be decoded into a valid event is reported as a
// *MalformedEventError, which matches ErrMalformedEvent with errors.Is.
package event
