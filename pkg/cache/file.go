package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores each entry as a JSON file holding the data and its expiry.
// Files are sharded into subdirectories by the first two hex digits of the
// hashed key.
type FileCache struct {
	dir   string
	clock Clock
}

// NewFileCache creates a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string, opts ...Option) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &FileCache{dir: dir, clock: o.clock}, nil
}

type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value. Corrupt and expired entries are removed and reported
// as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if expired(c.clock, entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores a value.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entryData, err := json.Marshal(fileEntry{Data: data, ExpiresAt: expiry(c.clock, ttl)})
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, entryData, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete removes a value.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry and returns how many files were deleted. Empty
// shard directories are removed too.
func (c *FileCache) Clear() (int, error) {
	count := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".json" {
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	entries, _ := os.ReadDir(c.dir)
	for _, e := range entries {
		if e.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return count, nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
