package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given files or directories and
	// returns it translated into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Body is the undecoded content of a source block.
type Body interface {
	// Decode fills target, a non-nil pointer to a struct whose fields carry
	// `cfg:"name"` tags. A field tagged `cfg:"name,optional"` keeps its
	// current value when the attribute is absent.
	Decode(ctx context.Context, target any) error
}
