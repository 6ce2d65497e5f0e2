package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cornerpin/pkg/observability"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

// KeyPrefix is prepended to every element key before it reaches the backend.
const KeyPrefix = "__cornerpin-"

// NamespaceSeparator ends the namespace part of a backend key. Element keys
// and namespaces may not contain it.
const NamespaceSeparator = ":"

// PointsOptions configures a Points store.
type PointsOptions struct {
	// TTL is applied to every write. Zero keeps points forever.
	TTL time.Duration

	// Namespace separates several setups sharing one backend.
	Namespace string

	// Logger receives warnings about unreadable values. Nil uses log.Default().
	Logger *log.Logger

	// Attempts and RetryDelay control retries of transient backend
	// failures. Zero values mean 3 attempts starting at 1 second.
	Attempts   int
	RetryDelay time.Duration
}

// Points loads and saves corner points by element key.
type Points struct {
	backend Backend
	opts    PointsOptions
	prefix  string
}

// NewPoints wraps backend with the point codec.
func NewPoints(backend Backend, opts PointsOptions) *Points {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	prefix := KeyPrefix
	if opts.Namespace != "" {
		prefix += opts.Namespace + NamespaceSeparator
	}
	return &Points{backend: backend, opts: opts, prefix: prefix}
}

// Key returns the backend key under which points for key are stored.
func (p *Points) Key(key string) string {
	return p.prefix + key
}

// checkKey rejects keys that would land in another namespace.
func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.Contains(key, NamespaceSeparator) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidKey, key, NamespaceSeparator)
	}
	return nil
}

// Get returns the stored points for key. A missing or unparseable value
// reports ok == false with a nil error.
func (p *Points) Get(ctx context.Context, key string) (projective.Quad, bool, error) {
	if err := checkKey(key); err != nil {
		return projective.Quad{}, false, err
	}
	var (
		data []byte
		ok   bool
	)
	err := p.retry(ctx, func() error {
		var err error
		data, ok, err = p.backend.Get(ctx, p.Key(key))
		return err
	})
	if err != nil {
		observability.Store().OnError(ctx, "get", key, err)
		return projective.Quad{}, false, fmt.Errorf("load points %q: %w", key, err)
	}
	if !ok {
		observability.Store().OnLoad(ctx, key, false)
		return projective.Quad{}, false, nil
	}

	q, err := projective.ParseQuad(string(data))
	if err != nil {
		p.opts.Logger.Warn("ignoring stored points", "key", key, "value", string(data), "err", err)
		observability.Store().OnLoad(ctx, key, false)
		return projective.Quad{}, false, nil
	}
	observability.Store().OnLoad(ctx, key, true)
	return q, true, nil
}

// MustGet is like Get but reports a missing value as ErrNotFound.
func (p *Points) MustGet(ctx context.Context, key string) (projective.Quad, error) {
	q, ok, err := p.Get(ctx, key)
	if err != nil {
		return q, err
	}
	if !ok {
		return q, fmt.Errorf("points %q: %w", key, ErrNotFound)
	}
	return q, nil
}

// Set stores q under key, replacing any previous value.
func (p *Points) Set(ctx context.Context, key string, q projective.Quad) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data := []byte(q.String())
	err := p.retry(ctx, func() error {
		return p.backend.Set(ctx, p.Key(key), data, p.opts.TTL)
	})
	if err != nil {
		observability.Store().OnError(ctx, "set", key, err)
		return fmt.Errorf("save points %q: %w", key, err)
	}
	observability.Store().OnSave(ctx, key, len(data))
	return nil
}

// Delete removes the points for key.
func (p *Points) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := p.retry(ctx, func() error {
		return p.backend.Delete(ctx, p.Key(key))
	})
	if err != nil {
		observability.Store().OnError(ctx, "delete", key, err)
		return fmt.Errorf("delete points %q: %w", key, err)
	}
	return nil
}

// List returns the sorted element keys that have stored points.
func (p *Points) List(ctx context.Context) ([]string, error) {
	var raw []string
	err := p.retry(ctx, func() error {
		var err error
		raw, err = p.backend.Keys(ctx, p.prefix)
		return err
	})
	if err != nil {
		observability.Store().OnError(ctx, "list", "", err)
		return nil, fmt.Errorf("list points: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		// Without a namespace the prefix also matches namespaced keys.
		k = strings.TrimPrefix(k, p.prefix)
		if strings.Contains(k, NamespaceSeparator) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close closes the underlying backend.
func (p *Points) Close() error {
	return p.backend.Close()
}

func (p *Points) retry(ctx context.Context, fn func() error) error {
	return Retry(ctx, p.opts.Attempts, p.opts.RetryDelay, fn)
}
