package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/handlers"
	"github.com/vk/audiograph/internal/session"
	"github.com/vk/audiograph/internal/testutil"
)

func drain(t *testing.T, ch <-chan session.Delivery) []string {
	t.Helper()
	var out []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case d, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, string(d.Raw))
		case <-timeout:
			t.Fatal("replay did not finish")
		}
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestReplay_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osc.ndjson")
	write(t, path, testutil.OscillatorGainParamNDJSON+"\n\n")

	ch, err := New("replay.osc", path, 0).Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutil.OscillatorGainParamEvents(), drain(t, ch))
}

func TestReplay_DirectoryInOrder(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "02.ndjson"), `{"n":2}`)
	write(t, filepath.Join(dir, "01.ndjson"), `{"n":1}`+"\n"+`{"n":1.5}`)
	write(t, filepath.Join(dir, "README.md"), "ignored")

	ch, err := New("replay.dir", dir, 0).Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{`{"n":1}`, `{"n":1.5}`, `{"n":2}`}, drain(t, ch))
}

func TestReplay_Delay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "three.ndjson")
	write(t, path, strings.Join([]string{`{}`, `{}`, `{}`}, "\n"))

	start := time.Now()
	ch, err := New("replay.slow", path, 20*time.Millisecond).Events(context.Background())
	require.NoError(t, err)
	assert.Len(t, drain(t, ch), 3)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestReplay_Cancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slow.ndjson")
	write(t, path, strings.Repeat("{}\n", 100))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := New("replay.cancel", path, time.Hour).Events(ctx)
	require.NoError(t, err)

	<-ch
	cancel()
	assert.Empty(t, drain(t, ch))
}

func TestReplay_Errors(t *testing.T) {
	_, err := New("x", filepath.Join(t.TempDir(), "missing.ndjson"), 0).Events(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = New("x", t.TempDir(), 0).Events(context.Background())
	assert.ErrorContains(t, err, "no .ndjson files")
}

// stubBody decodes by assigning a prepared Input.
type stubBody struct{ in Input }

func (b stubBody) Decode(_ context.Context, target any) error {
	*target.(*Input) = b.in
	return nil
}

func TestRegister(t *testing.T) {
	h := handlers.New()
	(&Module{}).Register(h)

	src, err := h.Build(context.Background(), []*config.Source{
		{Type: "replay", Name: "fixture", Body: stubBody{Input{Path: "x.ndjson", Delay: time.Millisecond}}},
	})
	require.NoError(t, err)
	require.Len(t, src, 1)
	assert.Equal(t, "replay.fixture", src[0].Name())

	_, err = h.Build(context.Background(), []*config.Source{
		{Type: "replay", Name: "bad", Body: stubBody{Input{Path: "x", Delay: -time.Second}}},
	})
	assert.ErrorContains(t, err, "must not be negative")
}
