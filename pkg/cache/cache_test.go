package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get before Set should miss")
	}

	// Round trip
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != "value" {
		t.Errorf("Get = %q, %v; want value, true", data, hit)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "expired", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "expired")
	if hit {
		t.Error("expired entry should miss")
	}

	// Delete
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing key error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// HTTPKey
	httpKey := k.HTTPKey("translate", "abc")
	if httpKey != "http:translate:abc" {
		t.Errorf("HTTPKey unexpected: %s", httpKey)
	}

	// TranslationKey should differ by backend, languages, and text
	tk1 := k.TranslationKey("google", "en", "de", "Install Now")
	tk2 := k.TranslationKey("google", "en", "fr", "Install Now")
	tk3 := k.TranslationKey("libre", "en", "de", "Install Now")
	tk4 := k.TranslationKey("google", "en", "de", "Download")
	if tk1 == tk2 || tk1 == tk3 || tk1 == tk4 {
		t.Error("TranslationKey should vary with backend, target, and text")
	}

	// Raw text must never appear in the key
	if strings.Contains(tk1, "Install Now") {
		t.Error("TranslationKey should not embed raw text")
	}

	// RasterKey should include options in hash
	rk1 := k.RasterKey("hash123", RasterKeyOpts{Width: 1200, Height: 1200, Scale: 2})
	rk2 := k.RasterKey("hash123", RasterKeyOpts{Width: 1200, Height: 628, Scale: 2})
	if rk1 == rk2 {
		t.Error("Different RasterKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "session:123:")

	// All keys should be prefixed
	httpKey := scoped.HTTPKey("translate", "abc")
	if httpKey != "session:123:http:translate:abc" {
		t.Errorf("ScopedKeyer HTTPKey unexpected: %s", httpKey)
	}

	tk := scoped.TranslationKey("google", "en", "de", "hello")
	if !strings.HasPrefix(tk, "session:123:") {
		t.Errorf("ScopedKeyer TranslationKey should be prefixed: %s", tk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.HTTPKey("test", "key")
	if key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

