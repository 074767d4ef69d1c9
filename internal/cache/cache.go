// Package cache provides an in-memory TTL cache for generation responses,
// keyed by a hash of the full request. Re-running a batch or refreshing a
// dashboard view hits the cache instead of the generation backend.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for response caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// RequestKey generates a cache key from the generation request parts.
// Identical system/user/model triples always produce the same key.
func RequestKey(system, user, model string) string {
	h := sha256.New()
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	h.Write([]byte{0})
	h.Write([]byte(model))
	return "claimassist:v1:" + hex.EncodeToString(h.Sum(nil))
}
