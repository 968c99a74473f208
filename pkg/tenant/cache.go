package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores organization rows between requests.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*Organization, bool)
	Set(ctx context.Context, key string, org *Organization, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// Cache keys, one namespace per lookup kind.
func cacheKeyID(id int64) string      { return "id:" + itoa(id) }
func cacheKeySlug(slug string) string { return "slug:" + slug }

// DefaultCacheSize is the default maximum number of cached organizations.
const DefaultCacheSize = 1000

type memoryCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

type memoryEntry struct {
	key       string
	org       *Organization
	expiresAt time.Time
}

// NewMemoryCache creates an LRU cache with TTL expiry and a background sweeper.
func NewMemoryCache(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &memoryCache{
		items:   make(map[string]*list.Element, maxSize),
		order:   list.New(),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep(time.Minute)
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) (*Organization, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.org, true
}

func (c *memoryCache) Set(_ context.Context, key string, org *Organization, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.org = org
		entry.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}

	c.items[key] = c.order.PushFront(&memoryEntry{
		key:       key,
		org:       org,
		expiresAt: time.Now().Add(ttl),
	})
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*memoryEntry).key)
}

func (c *memoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*memoryEntry).expiresAt) {
			c.remove(el)
		}
		el = prev
	}
}

type noopCache struct{}

// NewNoopCache returns a cache that stores nothing. It is the middleware default.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*Organization, bool)         { return nil, false }
func (noopCache) Set(context.Context, string, *Organization, time.Duration) {}
func (noopCache) Delete(context.Context, string)                            {}
func (noopCache) Close() error                                              { return nil }

// Invalidate drops an organization's cached entries so a status change
// applies to the next request.
func Invalidate(ctx context.Context, cache Cache, org *Organization) {
	if cache == nil || org == nil {
		return
	}
	cache.Delete(ctx, cacheKeyID(org.ID))
	if org.Slug != "" {
		cache.Delete(ctx, cacheKeySlug(org.Slug))
	}
}
