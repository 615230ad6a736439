package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/audiograph/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

const minSweepInterval = time.Second

// Run serves the HTTP API, ingests every source and sweeps expired graphs
// until ctx is done. Sources running dry does not stop the server.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.proj.Close()

	g, gctx := errgroup.WithContext(ctx)

	if port := a.model.HTTP.Port; port > 0 {
		g.Go(func() error {
			return a.api.Serve(gctx, fmt.Sprintf(":%d", port))
		})
	} else {
		a.logger.Warn("HTTP API not started: disabled")
	}

	g.Go(func() error {
		if err := a.ingest(gctx); err != nil {
			return err
		}
		a.logger.Info("All sources drained.")
		return nil
	})

	g.Go(func() error {
		a.sweep(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// Drain ingests every source until they are exhausted or ctx is done, without
// serving HTTP. It is how fixtures are replayed.
func (a *App) Drain(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defer a.proj.Close()
	return a.ingest(ctx)
}

func (a *App) ingest(ctx context.Context) error {
	sess, err := a.sessions.NewSession(ctx, a.sources...)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		if err := sess.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Session close failed.", "error", err)
		}
	}()

	a.logger.Info("🚀 Ingest starting.", "sources", len(a.sources))
	if err := sess.Run(ctx); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

// sweep evicts graphs that outlived the closed-age bound. Count-bound
// eviction happens on every close, so nothing runs without an age bound.
func (a *App) sweep(ctx context.Context) {
	age := a.model.Registry.MaxClosedAge
	if age <= 0 {
		return
	}
	interval := max(age/4, minSweepInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := a.rec.Sweep(ctx); len(evicted) > 0 {
				a.logger.Debug("Swept expired graphs.", "count", len(evicted))
			}
		}
	}
}
