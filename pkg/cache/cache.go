// Package cache provides byte-level caching for catalog responses and
// rendered artifacts.
//
// Implementations:
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [NullCache]: never stores anything, for tests and --no-cache
//
// Keys are built by a [Keyer] so that every caller namespaces its entries the
// same way:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api.example.com:")
//	key := keyer.HTTPKey("my-project", "/product-types?limit=200")
//
// Failed network calls are retried with [RetryWithBackoff]; only errors
// wrapped with [Retryable] are retried.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry TTL.
type Cache interface {
	// Get returns the cached data and whether it was present.
	// Expired and corrupt entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default TTLs.
const (
	// CatalogTTL is how long catalog responses are reused.
	CatalogTTL = 10 * time.Minute

	// RenderTTL is how long rendered diagrams are reused.
	RenderTTL = 24 * time.Hour
)

// RenderKeyOpts are the inputs that change a rendered artifact.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Layout string `json:"layout,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// RenderKey keys an artifact rendered from a snapshot with the given hash.
	RenderKey(snapshotHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// RenderKey returns "render:<hash of inputs>".
func (DefaultKeyer) RenderKey(snapshotHash string, opts RenderKeyOpts) string {
	return hashKey("render", snapshotHash, opts)
}
