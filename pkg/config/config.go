// Package config loads the cornerpin configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/cornerpin/config.toml
// (falling back to ~/.config/cornerpin/config.toml). Every field is
// optional; a missing file yields [Default].
//
//	log_level = "info"
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//
//	[editor]
//	step = 1
//	big_step = 10
//	width = 640
//	height = 360
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	cperrors "github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/store"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string       `toml:"log_level"`
	Store    store.Config `toml:"store"`
	Server   Server       `toml:"server"`
	Editor   Editor       `toml:"editor"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Editor configures the terminal handle editor.
type Editor struct {
	// Step and BigStep are the handle nudge distances in pixels.
	Step    float64 `toml:"step"`
	BigStep float64 `toml:"big_step"`

	// Width and Height are the element size used when none is given.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store:    store.DefaultConfig(),
		Server:   Server{Addr: ":8080"},
		Editor: Editor{
			Step:    1,
			BigStep: 10,
			Width:   640,
			Height:  360,
		},
	}
}

// DefaultPath returns the config file location using the XDG standard.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "cornerpin", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cornerpin", "config.toml"), nil
}

// Load reads the file at path over the defaults and validates the result.
// An empty path means DefaultPath. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, cperrors.Wrap(cperrors.ErrCodeInvalidConfig, err, "read config")
	}

	cfg, err = Parse(data)
	if err != nil {
		return cfg, cperrors.Wrap(cperrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, cperrors.New(cperrors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the tool cannot use.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return cperrors.New(cperrors.ErrCodeInvalidConfig, "log_level: %v", err)
	}

	switch c.Store.Backend {
	case "", store.BackendFile, store.BackendMemory, store.BackendNone:
	case store.BackendRedis:
		if c.Store.RedisAddr == "" {
			return cperrors.New(cperrors.ErrCodeInvalidConfig, "store.redis_addr is required for the redis backend")
		}
	case store.BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			return cperrors.New(cperrors.ErrCodeInvalidConfig, "store.mongo_uri, mongo_database and mongo_collection are required for the mongo backend")
		}
	default:
		return cperrors.New(cperrors.ErrCodeInvalidConfig, "unknown store.backend %q", c.Store.Backend)
	}
	if strings.Contains(c.Store.Namespace, store.NamespaceSeparator) {
		return cperrors.New(cperrors.ErrCodeInvalidConfig, "store.namespace must not contain %q", store.NamespaceSeparator)
	}
	if c.Store.TTL < 0 {
		return cperrors.New(cperrors.ErrCodeInvalidConfig, "store.ttl must not be negative")
	}

	if c.Server.Addr == "" {
		return cperrors.New(cperrors.ErrCodeInvalidConfig, "server.addr is required")
	}

	if c.Editor.Step <= 0 || c.Editor.BigStep <= 0 {
		return cperrors.New(cperrors.ErrCodeInvalidConfig, "editor.step and editor.big_step must be positive")
	}
	if err := cperrors.ValidateDimensions(c.Editor.Width, c.Editor.Height); err != nil {
		return cperrors.Wrap(cperrors.ErrCodeInvalidConfig, err, "editor size")
	}
	return nil
}

// Encode returns c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
