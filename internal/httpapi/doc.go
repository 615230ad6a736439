// Package httpapi serves the registry and the projection over HTTP: JSON
// snapshots and layouts of every graph, a websocket stream of projection
// updates, a websocket ingest endpoint that feeds the session, and the
// health and metrics endpoints.
package httpapi
