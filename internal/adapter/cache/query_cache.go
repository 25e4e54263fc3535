package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"caselaw/internal/domain"
)

const keyPrefix = "search:"

// Key builds the cache key for one page request. The query text must already
// be normalized by the caller.
func Key(query string, mode domain.QueryMode, offset, limit int) string {
	raw := fmt.Sprintf("%s\x00mode=%s\x00offset=%d\x00limit=%d", query, mode, offset, limit)
	hash := sha256.Sum256([]byte(raw))
	return keyPrefix + hex.EncodeToString(hash[:16])
}

// QueryCache is an in-process LRU of search pages. Entries expire after ttl
// and are dropped wholesale when the index generation moves on.
type QueryCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
	group    singleflight.Group
}

type cacheEntry struct {
	page      *domain.SearchPage
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *QueryCache) Get(key string) (*domain.SearchPage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.indexGen != c.indexGen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return entry.page, true
}

func (c *QueryCache) Put(key string, page *domain.SearchPage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{
		page:      page,
		timestamp: time.Now(),
		indexGen:  c.indexGen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// GetOrCompute returns the cached page for key or runs fn, sharing one run
// among concurrent callers with the same key. The shared run is detached
// from the cancellation of the caller that started it.
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, fn func(context.Context) (*domain.SearchPage, error)) (*domain.SearchPage, bool, error) {
	if page, ok := c.Get(key); ok {
		return page, true, nil
	}
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if page, ok := c.Get(key); ok {
			return page, nil
		}
		page, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Put(key, page)
		return page, nil
	})
	return wait(ctx, ch)
}

// wait blocks until the shared run finishes or ctx ends.
func wait(ctx context.Context, ch <-chan singleflight.Result) (*domain.SearchPage, bool, error) {
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*domain.SearchPage), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Invalidate drops every entry and starts a new index generation.
func (c *QueryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
	return nil
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
