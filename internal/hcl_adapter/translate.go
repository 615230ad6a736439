package hcl_adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/ctxlog"
)

// translate merges one decoded file into model.
func (l *Loader) translate(ctx context.Context, root *fileRoot, evalCtx *hcl.EvalContext, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	if b := root.Log; b != nil {
		if b.Level != nil {
			model.Log.Level = strings.ToLower(*b.Level)
		}
		if b.Format != nil {
			model.Log.Format = strings.ToLower(*b.Format)
		}
	}

	if b := root.Registry; b != nil {
		if b.MaxClosed != nil {
			if *b.MaxClosed < 0 {
				return fmt.Errorf("registry: max_closed must not be negative, got %d", *b.MaxClosed)
			}
			model.Registry.MaxClosed = *b.MaxClosed
		}
		if b.MaxClosedAge != nil {
			age, err := time.ParseDuration(*b.MaxClosedAge)
			if err != nil {
				return fmt.Errorf("registry: invalid max_closed_age: %w", err)
			}
			if age < 0 {
				return fmt.Errorf("registry: max_closed_age must not be negative, got %s", age)
			}
			model.Registry.MaxClosedAge = age
		}
	}

	if b := root.HTTP; b != nil && b.Port != nil {
		model.HTTP.Port = *b.Port
	}

	for _, s := range root.Sources {
		logger.Debug("Translating source block.", "type", s.Type, "name", s.Name)
		model.Sources = append(model.Sources, &config.Source{
			Type: s.Type,
			Name: s.Name,
			Body: &body{hcl: s.Body, evalCtx: evalCtx},
		})
	}
	return nil
}
