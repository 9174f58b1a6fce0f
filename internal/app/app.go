package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/vk/adsorbgridgo/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// RequestPath is a .hcl request file or a directory of them.
	RequestPath string
	// OutPath receives the workflow JSON; empty means stdout.
	OutPath string

	LogFormat string
	LogLevel  string
}

// NewConfig validates the raw CLI configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RequestPath == "" {
		return nil, errors.New("RequestPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	loader config.Loader
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	return &App{outW: outW, logger: logger, loader: loader}
}
