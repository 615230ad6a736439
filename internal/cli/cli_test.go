package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/testutil"
	"gopkg.in/yaml.v3"
)

func fixtureFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osc.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(testutil.OscillatorGainParamNDJSON), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
	assert.Equal(t, code, exitErr.Code)
}

func TestReplay_JSON(t *testing.T) {
	out, _, err := execute(t, "replay", fixtureFile(t))
	require.NoError(t, err)

	var snaps []graph.ContextSnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	require.Len(t, snaps, 1)
	assert.EqualValues(t, testutil.FixtureContextID, snaps[0].Context.ID)
	assert.Len(t, snaps[0].Graph.Nodes, 6)
	assert.Len(t, snaps[0].Graph.Params, 15)
}

func TestReplay_YAML(t *testing.T) {
	out, _, err := execute(t, "replay", "--format", "yaml", fixtureFile(t))
	require.NoError(t, err)

	var snaps []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &snaps))
	require.Len(t, snaps, 1)
	ctx, ok := snaps[0]["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testutil.FixtureContextID, ctx["id"])
	assert.Equal(t, "closed", ctx["state"])
}

func TestReplay_LogsGoToStderr(t *testing.T) {
	out, errOut, err := execute(t, "replay", "--log-level", "debug", fixtureFile(t))
	require.NoError(t, err)
	assert.Contains(t, errOut, "Source opened.")
	assert.NotContains(t, out, "Source opened.")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"replay"}, "accepts 1 arg(s)"},
		{"bad format", []string{"replay", "--format", "xml", "x.ndjson"}, "invalid format"},
		{"bad flag", []string{"serve", "--this-is-not-a-valid-flag"}, "unknown flag"},
		{"bad level", []string{"serve", "--log-level", "loud"}, "invalid log-level"},
		{"bad port", []string{"serve", "--port", "70000"}, "invalid port"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			require.Error(t, err)
			requireExitCode(t, err, 2)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestServe_ConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`log {`), 0o600))

	_, _, err := execute(t, "serve", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "configuration errors are not usage errors")
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := Execute(ctx, []string{"serve", "--port", "0", "--log-level", "debug"}, &out, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "HTTP API not started: disabled")
}

func TestHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "replay")
	assert.Contains(t, out, "serve")
}
