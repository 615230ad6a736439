package integration_tests

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/vk/audiograph/internal/app"
	"github.com/vk/audiograph/internal/hcl_adapter"
	"github.com/vk/audiograph/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// harness is a running app behind an httptest server.
type harness struct {
	app  *app.App
	srv  *httptest.Server
	logs *testutil.SafeBuffer

	ctx     context.Context
	done    chan error
	started bool
}

// writeFiles lays files out under a fresh temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(content, "$DIR", dir)), 0o600))
	}
	return dir
}

// start builds the app from configPaths. The app runs once run is called
// and stops when the test ends.
func start(t *testing.T, configPaths ...string) *harness {
	t.Helper()

	logs := &testutil.SafeBuffer{}
	port := 0
	cfg, err := app.NewConfig(app.Config{ConfigPaths: configPaths, Port: &port})
	require.NoError(t, err)
	a, err := app.New(logs, cfg, hcl_adapter.NewLoader())
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	h := &harness{app: a, srv: srv, logs: logs, ctx: ctx, done: done}

	t.Cleanup(func() {
		cancel()
		if h.started {
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Error("app did not stop")
			}
		}
		srv.Close()
		if t.Failed() || os.Getenv("AUDIOGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return h
}

func (h *harness) run() {
	h.started = true
	go func() { h.done <- h.app.Run(h.ctx) }()
}

func (h *harness) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + path
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}
