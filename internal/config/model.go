package config

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied before any file is read.
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultMaxClosed    = 16
	DefaultMaxClosedAge = 10 * time.Minute
)

// Model is the unified, format-agnostic representation of the whole
// configuration.
type Model struct {
	Log      Log
	Registry Registry
	HTTP     HTTP
	Sources  []*Source
}

// Log configures the process logger.
type Log struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Registry bounds how many closed contexts are kept, and for how long.
// Zero disables a bound.
type Registry struct {
	MaxClosed    int
	MaxClosedAge time.Duration
}

// HTTP configures the API listener. Port 0 disables it.
type HTTP struct {
	Port int
}

// Source is one `source "<type>" "<name>"` block.
type Source struct {
	Type string
	Name string
	Body Body
}

// String returns the block address, e.g. `socketio.relay`.
func (s *Source) String() string {
	return s.Type + "." + s.Name
}

// Default returns a model with every default filled in and no sources.
func Default() *Model {
	return &Model{
		Log:      Log{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Registry: Registry{MaxClosed: DefaultMaxClosed, MaxClosedAge: DefaultMaxClosedAge},
	}
}

// Validate reports every problem in m at once.
func (m *Model) Validate() error {
	var errs []error

	switch m.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", m.Log.Level))
	}
	switch m.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", m.Log.Format))
	}
	if m.HTTP.Port < 0 || m.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid http port %d", m.HTTP.Port))
	}

	seen := make(map[string]struct{}, len(m.Sources))
	for _, s := range m.Sources {
		if s.Type == "" || s.Name == "" {
			errs = append(errs, errors.New("source blocks need both a type and a name"))
			continue
		}
		if _, dup := seen[s.String()]; dup {
			errs = append(errs, fmt.Errorf("duplicate source %q", s.String()))
		}
		seen[s.String()] = struct{}{}
	}
	return errors.Join(errs...)
}
