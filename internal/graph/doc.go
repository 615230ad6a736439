// Package graph holds the AudioContext record: the metadata of one
// BaseAudioContext in the inspected page together with the topology store
// that owns its nodes, params and edges.
//
// # Why Graph Package Exists
//
// A context has two halves that change at very different rates. Its
// structure (nodes, params, edges) is mutated by almost every event and lives
// in a topologystore.Store. Its metadata (state, sample rate, realtime data,
// placeholder flag, close time) changes rarely but is what the registry needs
// for eviction and what a renderer shows in its header.
//
// The Context type is a thin facade that keeps both halves together so the
// reconciler, the registry and the HTTP layer deal with one value per
// context:
//
//	┌─────────────────────────────────────┐
//	│           graph.Context             │
//	│  (state, sample rate, realtime,     │
//	│   placeholder, created/closed at)   │
//	└─────────────────┬───────────────────┘
//	                  │
//	                  ▼
//	         ┌─────────────────┐
//	         │  Topology Store │
//	         │   (Structure)   │
//	         └─────────────────┘
//
// # Lifecycle
//
//  1. **Creation:** by the registry, either from ContextCreated or as a
//     placeholder when a child event arrives first.
//  2. **Enrichment:** a placeholder is filled in when its ContextCreated
//     finally arrives.
//  3. **Closing:** ContextDestroyed marks the record closed; its structure is
//     kept read-only for inspection.
//  4. **Eviction:** the registry drops closed records past its retention
//     bounds. Nothing else ever removes a record.
//
// # Thread-Safety
//
// Metadata is guarded by its own RWMutex and the store by its own, so HTTP
// handlers can read a context while the reconciler writes to it.
package graph
