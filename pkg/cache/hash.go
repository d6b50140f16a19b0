package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a "prefix:hash(parts...)" key. Parts go through JSON
// so ints, floats, and strings hash stably across runs.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data. The full 64-character digest is
// kept; raster documents differ by single attribute values and short
// prefixes would collide.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
