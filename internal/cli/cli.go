// Package cli implements the cornerpin command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cornerpin/pkg/config"
	"github.com/matzehuels/cornerpin/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "cornerpin"

	// formatTable and friends are the --format values shared by commands.
	formatTable = "table"
	formatCSS   = "css"
	formatJSON  = "json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string

	// Verbose forces debug logging regardless of the configured level.
	Verbose bool

	cfg    config.Config
	loaded bool

	// openBackend is swapped out in tests.
	openBackend func(ctx context.Context, cfg store.Config) (store.Backend, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(w, level),
		cfg:         config.Default(),
		openBackend: store.Open,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file once and applies its log level.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.loaded {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, err
	}
	c.cfg, c.loaded = cfg, true

	if c.Verbose {
		c.SetLogLevel(LogDebug)
	} else if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		c.SetLogLevel(level)
	}
	return cfg, nil
}

// openPoints opens the configured point store.
func (c *CLI) openPoints(ctx context.Context) (*store.Points, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	backend, err := c.openBackend(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", cfg.Store.Backend, "namespace", cfg.Store.Namespace)
	return store.NewPoints(backend, store.PointsOptions{
		TTL:       cfg.Store.TTL,
		Namespace: cfg.Store.Namespace,
		Logger:    c.Logger,
	}), nil
}
