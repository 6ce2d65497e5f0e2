package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Backend is a byte-oriented key/value store.
type Backend interface {
	// Get returns the value for key. A missing or expired key is a miss
	// (ok == false), not an error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the live keys starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

// Config selects and configures a Backend.
type Config struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`

	// Namespace is appended to the key prefix so several setups can share
	// one backend.
	Namespace string `toml:"namespace"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// DefaultConfig returns the file backend in the default data directory.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendFile,
		RedisAddr:       "localhost:6379",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "cornerpin",
		MongoCollection: "points",
	}
}

// Open creates the backend named by cfg.Backend. An empty name selects the
// file backend.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DataDir()
			if err != nil {
				return nil, fmt.Errorf("data dir: %w", err)
			}
			dir = d
		}
		return NewFileBackend(dir)
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendNone:
		return NewNullBackend(), nil
	case BackendRedis:
		return NewRedisBackend(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case BackendMongo:
		return NewMongoBackend(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// DataDir returns the points directory using the XDG standard
// (~/.local/share/cornerpin/points).
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "cornerpin", "points"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "cornerpin", "points"), nil
}
