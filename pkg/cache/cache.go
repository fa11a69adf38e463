// Package cache provides the byte cache used for HTTP responses, catalog
// snapshots and rendered chart artifacts, and the key scheme for each.
//
// Backends:
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [MemoryCache]: in-process map with TTLs driven by a [Clock]
//   - [FileCache]: JSON entries on disk, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// All backends treat a TTL of zero as "never expires".
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for each kind of cached value.
type Keyer interface {
	// HTTPKey is the key of a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// CatalogKey is the key of a decoded catalog snapshot.
	CatalogKey(backend, query string) string
	// ArtifactKey is the key of a rendered chart.
	ArtifactKey(boardHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Mode      string  `json:"mode"`
	Height    int     `json:"height"`
	Title     string  `json:"title,omitempty"`
	Watermark string  `json:"watermark,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Grid      bool    `json:"grid"`
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// CatalogKey hashes the query so arbitrary search strings make safe keys.
func (DefaultKeyer) CatalogKey(backend, query string) string {
	return hashKey("catalog:"+backend, query)
}

// ArtifactKey hashes the board content hash together with the options.
func (DefaultKeyer) ArtifactKey(boardHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", boardHash, opts)
}

var _ Keyer = DefaultKeyer{}
