package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/ppiankov/impactlens/internal/model"
	"golang.org/x/sync/singleflight"
)

// MemoryCache holds documents in memory keyed by URL. Concurrent loads of
// the same uncached URL share one call.
type MemoryCache struct {
	cache *gocache.Cache
	group singleflight.Group
}

// NewMemoryCache creates a new memory cache; ttl <= 0 keeps entries until cleared
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cleanup := ttl * 2
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &MemoryCache{
		cache: gocache.New(ttl, cleanup),
	}
}

// Get retrieves a document from the cache
func (c *MemoryCache) Get(url string) (model.Document, bool) {
	if val, found := c.cache.Get(CacheKey(url)); found {
		return val.(model.Document), true
	}
	return model.Document{}, false
}

// Set stores a document under the default TTL
func (c *MemoryCache) Set(url string, doc model.Document) {
	c.cache.SetDefault(CacheKey(url), doc)
}

// Clear removes all documents from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of cached documents
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Load returns the cached document for url or populates it with fn.
// hit is true when this caller did not run fn itself. Errors are not cached.
func (c *MemoryCache) Load(ctx context.Context, url string, fn func() (model.Document, error)) (doc model.Document, hit bool, err error) {
	if doc, ok := c.Get(url); ok {
		return doc, true, nil
	}

	ran := false
	ch := c.group.DoChan(CacheKey(url), func() (interface{}, error) {
		if doc, ok := c.Get(url); ok {
			return doc, nil
		}
		ran = true
		doc, err := fn()
		if err != nil {
			return nil, err
		}
		c.Set(url, doc)
		return doc, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return model.Document{}, false, res.Err
		}
		return res.Val.(model.Document), !ran, nil
	case <-ctx.Done():
		return model.Document{}, false, ctx.Err()
	}
}
