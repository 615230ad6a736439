package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vk/audiograph/internal/app"
	"github.com/vk/audiograph/internal/graph"
	replaysrc "github.com/vk/audiograph/modules/replay"
	"gopkg.in/yaml.v3"
)

type replayOptions struct {
	path  string
	delay time.Duration
}

// replay drains the file plus any configured sources without serving HTTP.
func replay(ctx context.Context, logW io.Writer, cfg *app.Config, opts replayOptions) ([]graph.ContextSnapshot, error) {
	disabled := 0
	cfg.Port = &disabled
	cfg.Sources = append(cfg.Sources, replaysrc.New("replay.cli", opts.path, opts.delay))

	a, err := app.New(logW, cfg, newLoader())
	if err != nil {
		return nil, err
	}
	if err := a.Drain(ctx); err != nil {
		return nil, err
	}
	return a.Snapshots(), nil
}

type encoder func(w io.Writer, snaps []graph.ContextSnapshot) error

func newEncoder(format string) (encoder, error) {
	switch strings.ToLower(format) {
	case "json":
		return func(w io.Writer, snaps []graph.ContextSnapshot) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snaps)
		}, nil
	case "yaml", "yml":
		return func(w io.Writer, snaps []graph.ContextSnapshot) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(snaps); err != nil {
				return err
			}
			return enc.Close()
		}, nil
	default:
		return nil, fmt.Errorf("invalid format %q: must be 'json' or 'yaml'", format)
	}
}
