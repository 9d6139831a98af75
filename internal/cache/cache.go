// Package cache wraps a Searcher with an in-memory LRU of responses.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/srndpty/j-law-grep/internal/api"
)

// DefaultSize is the default number of responses kept.
const DefaultSize = 64

// CachedSearcher wraps a Searcher with LRU caching keyed by the
// canonical request. Identical requests return the stored response
// without a round trip; failed searches are never cached.
type CachedSearcher struct {
	inner api.Searcher
	cache *lru.Cache[string, *api.SearchResponse]
}

// New creates a cached searcher wrapping the given searcher.
func New(inner api.Searcher, size int) *CachedSearcher {
	if size <= 0 {
		size = DefaultSize
	}
	cache, _ := lru.New[string, *api.SearchResponse](size)
	return &CachedSearcher{
		inner: inner,
		cache: cache,
	}
}

// cacheKey hashes the canonical request JSON for a fixed-length key.
func cacheKey(req api.SearchRequest) string {
	sum := sha256.Sum256([]byte(req.Key()))
	return hex.EncodeToString(sum[:])
}

// Search returns a cached response if available, otherwise delegates and
// caches the result.
func (c *CachedSearcher) Search(ctx context.Context, req api.SearchRequest) (*api.SearchResponse, error) {
	key := cacheKey(req)

	if resp, ok := c.cache.Get(key); ok {
		return resp, nil
	}

	resp, err := c.inner.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, resp)
	return resp, nil
}

// Purge drops all cached responses.
func (c *CachedSearcher) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached responses.
func (c *CachedSearcher) Len() int {
	return c.cache.Len()
}

// Ensure CachedSearcher implements Searcher.
var _ api.Searcher = (*CachedSearcher)(nil)
