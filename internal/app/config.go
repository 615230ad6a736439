package app

import (
	"fmt"
	"strings"

	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/session"
)

// Config is what an entrypoint hands the app. Zero values leave the
// configuration files in charge.
type Config struct {
	// ConfigPaths are .hcl files or directories, read in order.
	ConfigPaths []string

	LogLevel  string
	LogFormat string
	// Port overrides http.port when set. 0 disables the API.
	Port *int

	// Sources are run next to the ones the configuration declares.
	Sources []session.Source
}

// NewConfig validates the overrides in cfg.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.Port != nil && (*cfg.Port < 0 || *cfg.Port > 65535) {
		return nil, fmt.Errorf("invalid port %d", *cfg.Port)
	}
	return &cfg, nil
}

// apply writes the overrides onto a loaded model.
func (c *Config) apply(m *config.Model) {
	if c.LogLevel != "" {
		m.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		m.Log.Format = c.LogFormat
	}
	if c.Port != nil {
		m.HTTP.Port = *c.Port
	}
}
