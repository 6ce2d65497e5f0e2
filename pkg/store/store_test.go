package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/cornerpin/pkg/projective"
)

func TestNullBackend(t *testing.T) {
	ctx := context.Background()
	b := NewNullBackend()
	defer b.Close()

	if err := b.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := b.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullBackend should not store data")
	}
	keys, err := b.Keys(ctx, "")
	if err != nil || len(keys) != 0 {
		t.Errorf("Keys = %v, %v", keys, err)
	}
	if err := b.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// backendContract runs the behavior every persistent backend shares.
func backendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := b.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := b.Set(ctx, "p:a", []byte("1"), 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(ctx, "p:b", []byte("2"), 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(ctx, "q:c", []byte("3"), 0); err != nil {
		t.Fatal(err)
	}

	data, hit, err := b.Get(ctx, "p:a")
	if err != nil || !hit || string(data) != "1" {
		t.Fatalf("Get(p:a) = %q, %v, %v", data, hit, err)
	}

	// Overwrite replaces the value.
	if err := b.Set(ctx, "p:a", []byte("one"), 0); err != nil {
		t.Fatal(err)
	}
	data, _, _ = b.Get(ctx, "p:a")
	if string(data) != "one" {
		t.Errorf("after overwrite Get = %q", data)
	}

	keys, err := b.Keys(ctx, "p:")
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(keys)
	if !slices.Equal(keys, []string{"p:a", "p:b"}) {
		t.Errorf("Keys(p:) = %v", keys)
	}

	if err := b.Delete(ctx, "p:a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := b.Get(ctx, "p:a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := b.Delete(ctx, "p:a"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestMemoryBackend(t *testing.T) {
	backendContract(t, NewMemoryBackend())
}

func TestMemoryBackendTTL(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := b.Get(ctx, "k"); !hit {
		t.Fatal("entry should be live before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := b.Get(ctx, "k"); hit {
		t.Error("entry should expire after ttl")
	}
	if keys, _ := b.Keys(ctx, ""); len(keys) != 0 {
		t.Errorf("expired entry listed: %v", keys)
	}
}

func TestMemoryBackendCopiesData(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	buf := []byte("abc")
	_ = b.Set(ctx, "k", buf, 0)
	buf[0] = 'X'

	data, _, _ := b.Get(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("stored data aliased caller buffer: %q", data)
	}
}

func TestFileBackend(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	backendContract(t, b)
}

func TestFileBackendExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Set(ctx, "old", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := b.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}

	path := b.path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := b.Get(ctx, "broken"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileBackendPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b1, _ := NewFileBackend(dir)
	if err := b1.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	b2, _ := NewFileBackend(dir)
	if data, hit, _ := b2.Get(ctx, "k"); !hit || string(data) != "v" {
		t.Errorf("reopened backend Get = %q, %v", data, hit)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr error
	}{
		{"memory", Config{Backend: BackendMemory}, &MemoryBackend{}, nil},
		{"none", Config{Backend: BackendNone}, &NullBackend{}, nil},
		{"file", Config{Backend: BackendFile, Dir: t.TempDir()}, &FileBackend{}, nil},
		{"unknown", Config{Backend: "etcd"}, nil, ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer b.Close()
			switch tt.want.(type) {
			case *MemoryBackend:
				_, ok := b.(*MemoryBackend)
				if !ok {
					t.Errorf("Open returned %T", b)
				}
			case *NullBackend:
				_, ok := b.(*NullBackend)
				if !ok {
					t.Errorf("Open returned %T", b)
				}
			case *FileBackend:
				fb, ok := b.(*FileBackend)
				if !ok || fb.Dir() != tt.cfg.Dir {
					t.Errorf("Open returned %T", b)
				}
			}
		})
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "cornerpin", "points") {
		t.Errorf("DataDir() = %q", dir)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct{ in, want string }{
		{"__cornerpin-", "__cornerpin-"},
		{"a*b", `a\*b`},
		{"[x]?", `\[x\]\?`},
		{`a\b`, `a\\b`},
	}
	for _, tt := range tests {
		if got := escapeGlob(tt.in); got != tt.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedisErrorClassification(t *testing.T) {
	if redisError(nil) != nil {
		t.Error("nil should stay nil")
	}
	if err := redisError(io.EOF); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("EOF should be a retryable network error: %v", err)
	}
	plain := errors.New("WRONGTYPE")
	if err := redisError(plain); err != plain {
		t.Errorf("server errors pass through: %v", err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry then succeed: err %v, calls %d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

// flakyBackend fails the first n calls with a retryable error.
type flakyBackend struct {
	*MemoryBackend
	failures int
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failures > 0 {
		f.failures--
		return nil, false, Retryable(ErrNetwork)
	}
	return f.MemoryBackend.Get(ctx, key)
}

func TestPointsRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPoints(NewMemoryBackend(), PointsOptions{})

	q := projective.Quad{{10, 10}, {210, 0}, {0, 120}, {220, 110}}
	if err := p.Set(ctx, "video", q); err != nil {
		t.Fatal(err)
	}
	got, ok, err := p.Get(ctx, "video")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if got != q {
		t.Errorf("Get = %v, want %v", got, q)
	}

	if _, ok, _ := p.Get(ctx, "other"); ok {
		t.Error("unknown key should miss")
	}
	if _, err := p.MustGet(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MustGet(other) = %v, want ErrNotFound", err)
	}

	if err := p.Delete(ctx, "video"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "video"); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestPointsValueFormat(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	p := NewPoints(b, PointsOptions{})

	if err := p.Set(ctx, "el", projective.RectQuad(0, 0, 100, 50)); err != nil {
		t.Fatal(err)
	}
	data, ok, _ := b.Get(ctx, "__cornerpin-el")
	if !ok {
		t.Fatal("value not stored under prefixed key")
	}
	if string(data) != "0,0,100,0,0,50,100,50" {
		t.Errorf("stored value = %q", data)
	}
}

func TestPointsMalformedValueIsMiss(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	p := NewPoints(b, PointsOptions{})

	for _, v := range []string{"", "1,2,3", "a,b,c,d,e,f,g,h", "1,2,3,4,5,6,7,8,9"} {
		_ = b.Set(ctx, p.Key("el"), []byte(v), 0)
		if _, ok, err := p.Get(ctx, "el"); ok || err != nil {
			t.Errorf("value %q: ok %v, err %v", v, ok, err)
		}
	}
}

func TestPointsNamespaceAndList(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	stage := NewPoints(b, PointsOptions{Namespace: "stage"})
	lobby := NewPoints(b, PointsOptions{Namespace: "lobby"})

	q := projective.RectQuad(0, 0, 1, 1)
	for _, k := range []string{"b", "a", "c"} {
		if err := stage.Set(ctx, k, q); err != nil {
			t.Fatal(err)
		}
	}
	_ = lobby.Set(ctx, "z", q)

	keys, err := stage.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(keys, []string{"a", "b", "c"}) {
		t.Errorf("List = %v", keys)
	}
	if _, ok, _ := lobby.Get(ctx, "a"); ok {
		t.Error("namespaces should not share keys")
	}
	if stage.Key("a") != "__cornerpin-stage:a" {
		t.Errorf("Key = %q", stage.Key("a"))
	}
}

func TestPointsNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	plain := NewPoints(b, PointsOptions{})
	stage := NewPoints(b, PointsOptions{Namespace: "stage"})

	q := projective.RectQuad(0, 0, 10, 10)
	if err := stage.Set(ctx, "banner", q); err != nil {
		t.Fatal(err)
	}
	if err := plain.Set(ctx, "floor", q); err != nil {
		t.Fatal(err)
	}

	keys, err := plain.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(keys, []string{"floor"}) {
		t.Errorf("plain List = %v, want [floor]", keys)
	}
	keys, _ = stage.List(ctx)
	if !slices.Equal(keys, []string{"banner"}) {
		t.Errorf("stage List = %v, want [banner]", keys)
	}

	if _, ok, err := plain.Get(ctx, "stage:banner"); ok || !errors.Is(err, ErrInvalidKey) {
		t.Errorf("plain Get(stage:banner) = ok %v, err %v; want ErrInvalidKey", ok, err)
	}
	if err := plain.Set(ctx, "stage:banner", q); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("plain Set(stage:banner) = %v, want ErrInvalidKey", err)
	}
	if err := plain.Delete(ctx, "stage:banner"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("plain Delete(stage:banner) = %v, want ErrInvalidKey", err)
	}
	if _, ok, _ := stage.Get(ctx, "banner"); !ok {
		t.Error("stage points should be untouched")
	}
}

func TestPointsRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	p := NewPoints(NewMemoryBackend(), PointsOptions{})
	for _, key := range []string{"", "a:b", ":"} {
		if err := p.Set(ctx, key, projective.RectQuad(0, 0, 1, 1)); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set(%q) = %v, want ErrInvalidKey", key, err)
		}
		if _, err := p.MustGet(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("MustGet(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestPointsRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	fb := &flakyBackend{MemoryBackend: NewMemoryBackend(), failures: 2}
	p := NewPoints(fb, PointsOptions{RetryDelay: time.Millisecond})

	_ = p.Set(ctx, "el", projective.RectQuad(0, 0, 1, 1))
	if _, ok, err := p.Get(ctx, "el"); err != nil || !ok {
		t.Fatalf("Get after two transient failures: ok %v, err %v", ok, err)
	}

	fb.failures = 5
	_, _, err := p.Get(ctx, "el")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("exhausted retries: err %v, want ErrNetwork", err)
	}
}
