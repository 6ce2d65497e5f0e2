package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/store"
)

// testCLI returns a CLI whose store is the given memory backend.
func testCLI(backend store.Backend) *CLI {
	var logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	c.openBackend = func(context.Context, store.Config) (store.Backend, error) {
		return backend, nil
	}
	return c
}

// execute runs the root command with args against a missing config file.
func execute(t *testing.T, c *CLI, args ...string) (string, string, error) {
	t.Helper()
	root := c.RootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	for _, name := range []string{"matrix", "points", "edit", "render", "serve", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestMatrixCommand(t *testing.T) {
	const translated = "matrix3d(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 10, 10, 0, 1)\n"

	tests := []struct {
		name     string
		args     []string
		want     string
		wantCode errors.Code
	}{
		{
			name: "css",
			args: []string{"matrix", "--width", "100", "--height", "50", "--points", "10,10,110,10,10,60,110,60", "--format", "css"},
			want: translated,
		},
		{
			name: "ring order",
			args: []string{"matrix", "--width", "100", "--height", "50", "--points", "10,10,110,10,110,60,10,60", "--ring", "-f", "css"},
			want: translated,
		},
		{
			name:     "collinear",
			args:     []string{"matrix", "--width", "100", "--height", "50", "--points", "0,0,10,0,20,0,30,0"},
			wantCode: errors.ErrCodeDegenerateGeometry,
		},
		{
			name:     "bad points",
			args:     []string{"matrix", "--width", "100", "--height", "50", "--points", "1,2,3"},
			wantCode: errors.ErrCodeInvalidPoints,
		},
		{
			name:     "bad size",
			args:     []string{"matrix", "--width", "0", "--height", "50", "--points", "0,0,1,0,0,1,1,1"},
			wantCode: errors.ErrCodeInvalidDimensions,
		},
		{
			name:     "bad format",
			args:     []string{"matrix", "--width", "1", "--height", "1", "--points", "0,0,1,0,0,1,1,1", "-f", "yaml"},
			wantCode: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, testCLI(store.NewMemoryBackend()), tt.args...)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestMatrixCommandJSON(t *testing.T) {
	out, _, err := execute(t, testCLI(store.NewMemoryBackend()),
		"matrix", "--width", "100", "--height", "50", "--points", "10,10,110,10,10,60,110,60", "-f", "json")
	if err != nil {
		t.Fatal(err)
	}

	var res matrixResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !res.Affine {
		t.Error("translation should be affine")
	}
	if math.Abs(res.Matrix[3]-10) > 1e-9 || math.Abs(res.Matrix[7]-10) > 1e-9 {
		t.Errorf("translation = (%v, %v), want (10, 10)", res.Matrix[3], res.Matrix[7])
	}
	if res.Points[3] != [2]float64{110, 60} {
		t.Errorf("points[3] = %v", res.Points[3])
	}
}

func TestMatrixCommandTable(t *testing.T) {
	out, _, err := execute(t, testCLI(store.NewMemoryBackend()),
		"matrix", "--width", "100", "--height", "50", "--points", "0,0,100,0,0,50,100,50")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Transform", "affine", "matrix3d("} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestPointsCommands(t *testing.T) {
	backend := store.NewMemoryBackend()
	c := testCLI(backend)

	if _, _, err := execute(t, c, "points", "set", "video", "--points", "0,0,100,0,0,50,100,50", "--width", "100", "--height", "50"); err != nil {
		t.Fatalf("set: %v", err)
	}

	out, _, err := execute(t, c, "points", "get", "video", "-f", "raw")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "0,0,100,0,0,50,100,50\n" {
		t.Errorf("get = %q", out)
	}

	out, _, err = execute(t, c, "points", "get", "video", "-f", "json")
	if err != nil {
		t.Fatalf("get json: %v", err)
	}
	if !strings.Contains(out, `"key": "video"`) {
		t.Errorf("get json = %q", out)
	}

	if _, _, err := execute(t, c, "points", "set", "wall", "--points", "0,0,10,0,10,10,0,10", "--ring"); err != nil {
		t.Fatalf("set ring: %v", err)
	}
	out, _, err = execute(t, c, "points", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "video\nwall\n" {
		t.Errorf("list = %q", out)
	}

	if _, _, err := execute(t, c, "points", "delete", "video"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := execute(t, c, "points", "get", "video"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get after delete error = %v, want NOT_FOUND", err)
	}
}

func TestPointsSetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"bad key", []string{"points", "set", "../x", "--points", "0,0,1,0,0,1,1,1"}, errors.ErrCodeInvalidKey},
		{"bad points", []string{"points", "set", "k", "--points", "0,0"}, errors.ErrCodeInvalidPoints},
		{"degenerate", []string{"points", "set", "k", "--points", "0,0,0,0,0,0,0,0", "--width", "10", "--height", "10"}, errors.ErrCodeDegenerateGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := store.NewMemoryBackend()
			_, _, err := execute(t, testCLI(backend), tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %s", err, tt.want)
			}
			keys, _ := backend.Keys(context.Background(), "")
			if len(keys) != 0 {
				t.Errorf("rejected input was stored: %v", keys)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	backend := store.NewMemoryBackend()
	c := testCLI(backend)
	if _, _, err := execute(t, c, "points", "set", "video", "--points", "0,0,100,10,0,50,90,60"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"svg from store", []string{"render", "video", "--width", "100", "--height", "50"}, "<svg"},
		{"html from points", []string{"render", "--points", "0,0,100,0,0,50,100,50", "--width", "100", "--height", "50", "-f", "html"}, "matrix3d("},
		{"dot", []string{"render", "video", "-f", "dot"}, "graph G"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, c, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q", tt.want)
			}
		})
	}
}

func TestRenderCommandToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	_, stderr, err := execute(t, testCLI(store.NewMemoryBackend()),
		"render", "--points", "0,0,100,0,0,50,100,50", "--width", "100", "--height", "50", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output file is not SVG")
	}
	if !strings.Contains(stderr, path) {
		t.Errorf("stderr %q does not name the output file", stderr)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"no source", []string{"render"}, errors.ErrCodeInvalidInput},
		{"missing key", []string{"render", "nothing"}, errors.ErrCodeNotFound},
		{"bad format", []string{"render", "--points", "0,0,1,0,0,1,1,1", "-f", "gif"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, testCLI(store.NewMemoryBackend()), tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	c := testCLI(store.NewMemoryBackend())

	out, _, err := execute(t, c, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`log_level = "info"`, "[store]", "[editor]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, c, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "config.toml") {
		t.Errorf("config path = %q", out)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := testCLI(store.NewMemoryBackend())
	root := c.RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "config", "show"})
	if err := root.ExecuteContext(context.Background()); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{0.25, "0.25"},
		{-3, "-3"},
		{-0.00001, "0"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
