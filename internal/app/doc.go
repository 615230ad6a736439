// Package app contains the core application logic. It wires configuration,
// sources, the reconciler, the projection and the HTTP API into one App and
// owns its lifecycle, decoupled from any specific entrypoint like a CLI.
package app
