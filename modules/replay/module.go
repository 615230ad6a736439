// Package replay plays newline-delimited CDP envelopes from files, for
// fixtures and for reproducing captured sessions offline.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/fsutil"
	"github.com/vk/audiograph/internal/handlers"
	"github.com/vk/audiograph/internal/session"
)

// maxLine bounds a single envelope. Large graphs produce long
// NodeCreated payloads but nothing near this.
const maxLine = 4 << 20

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `source "replay"` block.
type Input struct {
	// Path is a file, or a directory whose .ndjson files play in lexical
	// order.
	Path  string        `cfg:"path"`
	Delay time.Duration `cfg:"delay,optional"`
}

// Source replays envelopes from disk.
type Source struct {
	name  string
	path  string
	delay time.Duration
}

// New creates a replay source. delay is waited between two envelopes.
func New(name, path string, delay time.Duration) *Source {
	return &Source{name: name, path: path, delay: delay}
}

// Name implements session.Source.
func (s *Source) Name() string { return s.name }

// Events implements session.Source. Missing files are reported here, before
// anything is sent.
func (s *Source) Events(ctx context.Context) (<-chan session.Delivery, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	out := make(chan session.Delivery)
	go func() {
		defer close(out)
		logger := ctxlog.FromContext(ctx).With("source", s.name)
		sent := 0
		for _, f := range files {
			n, err := s.play(ctx, f, out, sent > 0)
			sent += n
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("Replay stopped.", "file", f, "error", err)
				}
				return
			}
			logger.Debug("Replayed file.", "file", f, "envelopes", n)
		}
	}()
	return out, nil
}

func (s *Source) files() ([]string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{s.path}, nil
	}
	files, err := fsutil.FindFilesByExtension(s.path, ".ndjson")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .ndjson files under %s", s.path)
	}
	return files, nil
}

// play streams one file. Blank lines are skipped.
func (s *Source) play(ctx context.Context, path string, out chan<- session.Delivery, delayFirst bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	sent := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if (sent > 0 || delayFirst) && s.delay > 0 {
			if err := sleep(ctx, s.delay); err != nil {
				return sent, err
			}
		}
		select {
		case out <- session.Delivery{Raw: bytes.Clone(line)}:
			sent++
		case <-ctx.Done():
			return sent, ctx.Err()
		}
	}
	return sent, scanner.Err()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register registers the replay source type.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterSource("replay", func(ctx context.Context, cfg *config.Source) (session.Source, error) {
		var in Input
		if err := cfg.Body.Decode(ctx, &in); err != nil {
			return nil, err
		}
		if in.Delay < 0 {
			return nil, fmt.Errorf("delay must not be negative, got %s", in.Delay)
		}
		return New(cfg.String(), in.Path, in.Delay), nil
	})
}
