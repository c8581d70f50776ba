// Package cache stores model outputs keyed by a hash of the inputs that
// produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache defines the interface for caching generated text
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string)
	Delete(key string)
	Clear()
}

// Key derives a content-addressed key from a prompt template and the content
// it is applied to.
func Key(template, content string) string {
	h := sha256.New()
	h.Write([]byte(template))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return "paper-assistant:v1:" + hex.EncodeToString(h.Sum(nil))
}

// MemoryCache is an in-memory cache with per-entry expiry.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl. Expired
// entries are purged every cleanupInterval. A ttl of zero or less keeps
// entries until Clear.
func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{cache: gocache.New(ttl, cleanupInterval)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(string), true
	}
	return "", false
}

func (c *MemoryCache) Set(key string, value string) {
	c.cache.SetDefault(key, value)
}

func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
