package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cperrors "github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/store"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
log_level = "debug"

[store]
backend = "redis"
redis_addr = "cache:6379"
namespace = "stage"
ttl = "1h"

[server]
addr = "127.0.0.1:9000"

[editor]
step = 0.5
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Store.Backend != store.BackendRedis || cfg.Store.RedisAddr != "cache:6379" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Namespace != "stage" || cfg.Store.TTL != time.Hour {
		t.Errorf("Store namespace/ttl = %q/%v", cfg.Store.Namespace, cfg.Store.TTL)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	// Unset keys keep their defaults.
	if cfg.Editor.Step != 0.5 || cfg.Editor.BigStep != 10 || cfg.Editor.Width != 640 {
		t.Errorf("Editor = %+v", cfg.Editor)
	}
	if cfg.Store.MongoDatabase != "cornerpin" {
		t.Errorf("untouched store default lost: %+v", cfg.Store)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `log_level = `},
		{"bad level", `log_level = "loud"`},
		{"unknown backend", "[store]\nbackend = \"etcd\""},
		{"redis without addr", "[store]\nbackend = \"redis\"\nredis_addr = \"\""},
		{"namespace separator", "[store]\nnamespace = \"a:b\""},
		{"negative ttl", "[store]\nttl = \"-1h\""},
		{"zero step", "[editor]\nstep = 0"},
		{"zero width", "[editor]\nwidth = 0"},
		{"empty addr", "[server]\naddr = \"\""},
		{"unknown key", `colour = "red"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) should fail", tt.data)
			}
		})
	}
}

func TestLoadInvalidFileHasConfigCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`log_level = "loud"`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !cperrors.Is(err, cperrors.ErrCodeInvalidConfig) {
		t.Errorf("Load error = %v, want INVALID_CONFIG", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = store.BackendMemory
	cfg.Editor.BigStep = 25

	data, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Encode()) = %v\n%s", err, data)
	}
	if back != cfg {
		t.Errorf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/tmp/cfg", "cornerpin", "config.toml") {
		t.Errorf("DefaultPath() = %q", p)
	}
}
