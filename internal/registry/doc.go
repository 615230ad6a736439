// Package registry provides the Multi-Graph Registry: the set of audio
// contexts known in one inspection session, keyed by context id.
//
// The registry is the sole shared mutable structure of the core. Only the
// reconciler adds, closes and evicts contexts; the projection and the HTTP
// layer read through Get and All.
//
// Eviction is the only place where data is dropped without a destructive
// event. It only ever touches closed contexts: once more than MaxClosed are
// retained, or once one has been closed longer than MaxClosedAge, the
// oldest-closed records go first. Live contexts are never evicted, however
// old they are.
package registry
