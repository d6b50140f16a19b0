// Package cache provides pluggable caching for translation and raster
// results.
//
// The Cache interface abstracts over storage backends (file, Redis, null)
// so the translation orchestrator and render pipeline can run with or
// without a cache. Keys are produced by a Keyer so backends never see
// raw user text.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface for cached byte payloads.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was found; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RasterKeyOpts capture the parameters that affect a rendered image,
// so distinct render settings never collide in the cache.
type RasterKeyOpts struct {
	Width         int
	Height        int
	Scale         float64
	BlurIntensity float64
}

// Keyer generates cache keys for the different cached artifact kinds.
type Keyer interface {
	// HTTPKey generates a key for a cached HTTP response.
	HTTPKey(namespace, key string) string

	// TranslationKey generates a key for a translated text value.
	// The text itself is hashed, never embedded.
	TranslationKey(backend, source, target, text string) string

	// RasterKey generates a key for a rasterized document.
	RasterKey(docHash string, opts RasterKeyOpts) string
}

// DefaultKeyer is the standard key generator. Keys are sha256 hashes
// with a readable prefix, safe for any backend.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// The key stays readable, namespaced under "http:".
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// TranslationKey generates a key for a translated text value.
func (k *DefaultKeyer) TranslationKey(backend, source, target, text string) string {
	return hashKey("translate:"+backend, source, target, Hash([]byte(text)))
}

// RasterKey generates a key for a rasterized document.
func (k *DefaultKeyer) RasterKey(docHash string, opts RasterKeyOpts) string {
	return hashKey("raster", docHash, opts.Width, opts.Height, opts.Scale, opts.BlurIntensity)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
