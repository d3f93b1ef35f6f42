// Package cache stores fetched product pages so interrupted or
// repeated runs don't refetch the marketplace.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the page cache interface
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PageKey derives the cache key for a product page URL
func PageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "claimpipe:page:v1:" + hex.EncodeToString(hash[:])
}
