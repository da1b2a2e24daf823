// Package cache memoizes extracted documents for the lifetime of a process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// CacheKey generates a cache key from a URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "impactlens:v1:" + hex.EncodeToString(hash[:])
}
