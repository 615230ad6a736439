// Package handlers maps source block types to the Go factories that build
// them. Modules register themselves here; the app looks factories up by the
// type label of each `source` block.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/session"
)

// Factory builds a source from its configuration block.
type Factory func(ctx context.Context, cfg *config.Source) (session.Source, error)

// Module is implemented by every package that contributes source types.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered source factories.
type Handlers struct {
	all map[string]Factory
}

// New creates an empty set of handlers.
func New() *Handlers {
	return &Handlers{
		all: make(map[string]Factory),
	}
}

// RegisterSource registers the factory for a source type. Registering the
// same type twice is a programming error and panics.
func (h *Handlers) RegisterSource(sourceType string, factory Factory) {
	if _, exists := h.all[sourceType]; exists {
		panic(fmt.Sprintf("source handler with type '%s' already registered", sourceType))
	}
	slog.Debug("Registering source handler.", "type", sourceType)
	h.all[sourceType] = factory
}

// Types returns the registered source types in sorted order.
func (h *Handlers) Types() []string {
	out := make([]string, 0, len(h.all))
	for t := range h.all {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Build creates one source per block. It reports every failing block, not
// only the first.
func (h *Handlers) Build(ctx context.Context, blocks []*config.Source) ([]session.Source, error) {
	logger := ctxlog.FromContext(ctx)

	var (
		sources []session.Source
		errs    []error
	)
	for _, b := range blocks {
		factory, ok := h.all[b.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("source %s: unknown type %q (registered: %v)", b, b.Type, h.Types()))
			continue
		}
		src, err := factory(ctx, b)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", b, err))
			continue
		}
		logger.Debug("Source built.", "source", b.String())
		sources = append(sources, src)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return sources, nil
}
