package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileBackend implements a file-based backend for CLI usage.
// Entries are stored as JSON files in a directory with metadata (key, expiration).
type FileBackend struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBackend creates a file-based backend in the given directory.
// The directory will be created if it doesn't exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e fileEntry) expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Get retrieves a value from the store.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	path := b.path(key)
	entry, err := readEntry(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		// Invalid entry - treat as miss
		_ = os.Remove(path)
		return nil, false, nil
	}

	if entry.expired() {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores a value.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := fileEntry{
		Key:  key,
		Data: data,
	}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, entryData, 0644)
}

// Delete removes a value.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys walks the store directory and returns the keys of live entries.
func (b *FileBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var keys []string
	err := filepath.WalkDir(b.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := readEntry(path)
		if err != nil || entry.expired() {
			return nil
		}
		if strings.HasPrefix(entry.Key, prefix) {
			keys = append(keys, entry.Key)
		}
		return nil
	})
	return keys, err
}

// Close does nothing for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// Dir returns the directory holding the entries.
func (b *FileBackend) Dir() string {
	return b.dir
}

// path converts a key to a file path.
// Uses a simple hash-based directory structure to avoid too many files in one dir.
func (b *FileBackend) path(key string) string {
	hash := Hash([]byte(key))
	// Use first 2 chars as subdirectory for distribution
	subdir := hash[:2]
	filename := hash[2:] + ".json"
	return filepath.Join(b.dir, subdir, filename)
}

func readEntry(path string) (fileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileEntry{}, err
	}
	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return fileEntry{}, err
	}
	return entry, nil
}

// Ensure FileBackend implements Backend.
var _ Backend = (*FileBackend)(nil)
