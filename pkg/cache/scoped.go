package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Different editor sessions or deployments can share one backend
// without key collisions.
//
// Example usage:
//
//	// Session-specific keys
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// TranslationKey generates a prefixed key for translation caching.
func (k *ScopedKeyer) TranslationKey(backend, source, target, text string) string {
	return k.prefix + k.inner.TranslationKey(backend, source, target, text)
}

// RasterKey generates a prefixed key for raster caching.
func (k *ScopedKeyer) RasterKey(docHash string, opts RasterKeyOpts) string {
	return k.prefix + k.inner.RasterKey(docHash, opts)
}
