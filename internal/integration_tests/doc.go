// Package integration_tests drives the whole binary surface: configuration
// files, sources, the reconciler, the projection and the HTTP API together.
package integration_tests
