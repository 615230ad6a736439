package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	environ func() []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEnviron replaces os.Environ as the source of `env.NAME` values.
func WithEnviron(environ func() []string) LoaderOption {
	return func(l *Loader) { l.environ = environ }
}

// NewLoader creates a new HCL configuration loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{environ: os.Environ}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses every .hcl file found under paths, in order, and merges them
// into one model on top of config.Default. Settings blocks in later files
// override earlier ones; source blocks accumulate. A path that does not
// exist is skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	evalCtx := newEvalContext(l.environ())
	parser := hclparse.NewParser()
	model := config.Default()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.merge(ctx, file, hclFile, evalCtx, model); err != nil {
			return nil, err
		}
	}

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("HCL loading complete.", "files", len(files), "sources", len(model.Sources))
	return model, nil
}

// findAllHCLFiles expands directories and drops duplicates, keeping the
// order the paths were given in.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		for _, f := range found {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	return all, nil
}

// ParseFile parses and loads a single in-memory HCL document.
func (l *Loader) ParseFile(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	model := config.Default()
	if err := l.merge(ctx, filename, hclFile, newEvalContext(l.environ()), model); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return model, nil
}

func (l *Loader) merge(ctx context.Context, filename string, f *hcl.File, evalCtx *hcl.EvalContext, model *config.Model) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, evalCtx, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if err := l.translate(ctx, &root, evalCtx, model); err != nil {
		return fmt.Errorf("in %s: %w", filename, err)
	}
	return nil
}

var _ config.Loader = (*Loader)(nil)
