package cache

import (
	"context"
	"time"
)

// NullCache discards writes and misses every read. It backs the
// --no-cache flag and keeps call sites free of nil checks.
type NullCache struct{}

// NewNullCache creates a cache that stores nothing.
func NewNullCache() Cache {
	return &NullCache{}
}

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
