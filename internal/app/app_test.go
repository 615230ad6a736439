package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/hcl_adapter"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/session"
	"github.com/vk/audiograph/internal/testutil"
	"github.com/vk/audiograph/modules/replay"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// fixtureConfig writes the oscillator fixture and a config replaying it.
func fixtureConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "osc.ndjson", testutil.OscillatorGainParamNDJSON)
	return writeFile(t, dir, "main.hcl", `
log { level = "debug" }

registry {
  max_closed     = 2
  max_closed_age = "1h"
}

source "replay" "fixture" {
  path = "`+filepath.Join(dir, "osc.ndjson")+`"
}
`)
}

func setupApp(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer) {
	t.Helper()
	logs := &testutil.SafeBuffer{}
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	a, err := New(logs, c, hcl_adapter.NewLoader())
	require.NoError(t, err)
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, logs
}

func TestDrain_ReplaysConfiguredSource(t *testing.T) {
	a, logs := setupApp(t, Config{ConfigPaths: []string{fixtureConfig(t)}})

	require.NoError(t, a.Drain(context.Background()))

	snaps := a.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, nodeid.ContextID(testutil.FixtureContextID), snaps[0].Context.ID)
	assert.Equal(t, graph.StateClosed, snaps[0].Context.State)
	assert.Contains(t, logs.String(), "Source opened.")
}

func TestDrain_ExtraSources(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "osc.ndjson", testutil.OscillatorGainParamNDJSON)

	a, _ := setupApp(t, Config{
		LogLevel: "DEBUG",
		Sources:  []session.Source{replay.New("replay.cli", path, 0)},
	})
	require.NoError(t, a.Drain(context.Background()))

	snaps := a.Snapshots()
	require.Len(t, snaps, 1)
	assert.Len(t, snaps[0].Graph.Nodes, 6)
	assert.Len(t, snaps[0].Graph.Edges, 4)
}

func TestRun_ServesAndStops(t *testing.T) {
	port := 0
	a, logs := setupApp(t, Config{ConfigPaths: []string{fixtureConfig(t)}, Port: &port})

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	assert.Eventually(t, func() bool { return a.Registry().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(srv.URL + "/graphs/" + testutil.FixtureContextID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Contains(t, logs.String(), "HTTP API not started: disabled")
}

func TestNew_OverridesFileSettings(t *testing.T) {
	port := 0
	a, _ := setupApp(t, Config{
		ConfigPaths: []string{fixtureConfig(t)},
		LogLevel:    "warn",
		LogFormat:   "json",
		Port:        &port,
	})
	assert.Equal(t, "warn", a.model.Log.Level)
	assert.Equal(t, "json", a.model.Log.Format)
	assert.Equal(t, 2, a.registry.Policy().MaxClosed)
	assert.Equal(t, time.Hour, a.registry.Policy().MaxClosedAge)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `log {`, "failed to load configuration"},
		{"unknown source type", `source "carrier_pigeon" "p" {}`, `unknown type "carrier_pigeon"`},
		{"bad source body", `source "replay" "r" { delay = "1s" }`, `missing required argument "path"`},
		{"two websocket sources", `
source "websocket" "a" {}
source "websocket" "b" {}
`, "only one websocket source"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "main.hcl", tc.src)
			cfg, err := NewConfig(Config{ConfigPaths: []string{path}})
			require.NoError(t, err)

			_, err = New(&testutil.SafeBuffer{}, cfg, hcl_adapter.NewLoader())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{LogLevel: "INFO", LogFormat: "Text"})
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	_, err = NewConfig(Config{LogLevel: "loud"})
	assert.ErrorContains(t, err, "invalid log-level")
	_, err = NewConfig(Config{LogFormat: "xml"})
	assert.ErrorContains(t, err, "invalid log-format")
	port := 70000
	_, err = NewConfig(Config{Port: &port})
	assert.ErrorContains(t, err, "invalid port")
}
