// Package config loads client settings from the process environment.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries everything the CLI and session need to talk to a prediction
// service and shape its output.
type Config struct {
	// BaseURL is the root of the prediction service.
	BaseURL string `env:"PREDICT_BASE_URL,default=http://localhost:5000"`

	// Timeout bounds each HTTP request. Zero disables the client-level bound.
	Timeout time.Duration `env:"PREDICT_TIMEOUT,default=30s"`

	// Renderer selects the registered output renderer by name.
	Renderer string `env:"PREDICT_RENDERER,default=text"`

	// Theme and ThemeVariant pick the token set renderers style output with.
	Theme        string `env:"PREDICT_THEME,default=classic"`
	ThemeVariant string `env:"PREDICT_THEME_VARIANT"`

	// Verbose switches structured logging to debug level.
	Verbose bool `env:"PREDICT_VERBOSE,default=false"`
}

// Load resolves the configuration from environment variables, falling back to
// struct defaults for anything unset.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:           cfg,
		DefaultOverwrite: true,
	})
	if err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Renderer = strings.TrimSpace(c.Renderer)
	c.Theme = strings.TrimSpace(c.Theme)
	c.ThemeVariant = strings.TrimSpace(c.ThemeVariant)
}

// Validate reports configuration values that cannot possibly work.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base URL must not be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("config: base URL %q must start with http:// or https://", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative")
	}
	return nil
}
