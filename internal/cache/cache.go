// Package cache keeps recent store reads in memory. Concurrent misses for
// the same key share a single load.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSize = 256
	loadTimeout = 10 * time.Second
)

type Cache[V any] struct {
	name  string
	lru   *expirable.LRU[string, V]
	group singleflight.Group

	mu       sync.Mutex
	gen      uint64 // bumped by Purge and Remove
	inflight map[string]int
}

// New returns a cache holding at most size entries for ttl. A ttl of zero
// or less disables caching and every Get loads.
func New[V any](name string, size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = defaultSize
	}
	c := &Cache[V]{name: name, inflight: make(map[string]int)}
	if ttl > 0 {
		c.lru = expirable.NewLRU[string, V](size, nil, ttl)
	}
	return c
}

// Get returns the cached value for key or calls load. Errors are returned
// to every waiting caller and not cached.
//
// The load is shared by every caller waiting on key, so it runs detached
// from the first caller's cancellation, bounded by loadTimeout. A result
// that was loaded across a Purge or Remove is returned but not stored.
func (c *Cache[V]) Get(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if c.lru != nil {
		if v, ok := c.lru.Get(key); ok {
			metrics.RecordCacheLookup(c.name, true)
			return v, nil
		}
	}
	metrics.RecordCacheLookup(c.name, false)

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		gen := c.begin(key)
		defer c.end(key)

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.store(gen, key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *Cache[V]) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]++
	return c.gen
}

func (c *Cache[V]) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
}

func (c *Cache[V]) store(gen uint64, key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru != nil && gen == c.gen {
		c.lru.Add(key, v)
	}
}

// invalidate drops the in-flight loads for keys so later callers start a
// fresh one instead of joining a load that read old rows.
func (c *Cache[V]) invalidate(keys ...string) {
	c.gen++
	for _, key := range keys {
		c.group.Forget(key)
	}
}

func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate(key)
	if c.lru != nil {
		c.lru.Remove(key)
	}
}

// Purge drops every entry. Admin writes call it so the public pages see the
// change on the next request.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.inflight))
	for key := range c.inflight {
		keys = append(keys, key)
	}
	c.invalidate(keys...)
	if c.lru != nil {
		c.lru.Purge()
	}
}

func (c *Cache[V]) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
