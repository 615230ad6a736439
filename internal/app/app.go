package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/handlers"
	"github.com/vk/audiograph/internal/httpapi"
	"github.com/vk/audiograph/internal/localsession"
	"github.com/vk/audiograph/internal/projection"
	"github.com/vk/audiograph/internal/reconciler"
	"github.com/vk/audiograph/internal/registry"
	"github.com/vk/audiograph/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger   *slog.Logger
	model    *config.Model
	registry *registry.Registry
	rec      *reconciler.Reconciler
	proj     *projection.Projection
	api      *httpapi.Server
	sessions session.SessionFactory
	sources  []session.Source
}

// New loads the configuration, builds every configured source and wires the
// reconciler, projection and HTTP API together. With no modules given the
// core modules are registered.
func New(outW io.Writer, cfg *Config, loader config.Loader, modules ...handlers.Module) (*App, error) {
	// Configuration errors are logged with a provisional logger, since the
	// real one depends on the configuration.
	bootLogger, err := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	if err != nil {
		return nil, err
	}
	bootCtx := ctxlog.WithLogger(context.Background(), bootLogger)

	model, err := loader.Load(bootCtx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.apply(model)
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(model.Log.Level, model.Log.Format, outW)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	policy := registry.Policy{
		MaxClosed:    model.Registry.MaxClosed,
		MaxClosedAge: model.Registry.MaxClosedAge,
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry policy: %w", err)
	}
	reg := registry.New(policy)
	rec := reconciler.New(reg)
	proj := projection.New(rec, projection.WithLogger(logger))
	rec.SetPublisher(proj)

	ingest := httpapi.NewIngest(httpapi.DefaultIngestBuffer)
	hs := handlers.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(hs)
	}
	ingest.Register(hs)
	logger.Debug("Source modules registered.", "types", hs.Types())

	sources, err := hs.Build(ctx, model.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to build sources: %w", err)
	}
	sources = append(sources, cfg.Sources...)
	if len(sources) == 0 {
		logger.Warn("No sources configured; graphs will stay empty.")
	}

	api := httpapi.New(rec, proj, httpapi.WithIngest(ingest), httpapi.WithLogger(logger))

	return &App{
		logger:   logger,
		model:    model,
		registry: reg,
		rec:      rec,
		proj:     proj,
		api:      api,
		sessions: &localsession.SessionFactory{Reconciler: rec},
		sources:  sources,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Projection returns the application's projection, for in-process
// subscribers.
func (a *App) Projection() *projection.Projection {
	return a.proj
}

// Handler returns the HTTP API handler.
func (a *App) Handler() http.Handler {
	return a.api.Handler()
}

// Snapshots returns every known graph in creation order.
func (a *App) Snapshots() []graph.ContextSnapshot {
	all := a.registry.All()
	out := make([]graph.ContextSnapshot, 0, len(all))
	for _, c := range all {
		out = append(out, c.Snapshot())
	}
	return out
}
