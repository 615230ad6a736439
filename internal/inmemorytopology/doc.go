// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. One store holds the structure of one
// audio context for the lifetime of an inspection session; nothing is
// persisted.
package inmemorytopology
