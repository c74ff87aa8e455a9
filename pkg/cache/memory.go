package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMemoryEntries bounds a MemoryCache created with a non-positive size.
const DefaultMemoryEntries = 256

type memEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
	element   *list.Element
}

// MemoryCache is a bounded in-process LRU with per-entry expiry.
type MemoryCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*memEntry
	lru     *list.List
	closed  bool
	now     func() time.Time
}

// NewMemoryCache returns an LRU holding at most maxEntries entries.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &MemoryCache{
		max:     maxEntries,
		entries: make(map[string]*memEntry),
		lru:     list.New(),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, ErrClosed
	}

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.remove(e)
		return nil, false, nil
	}
	c.lru.MoveToFront(e.element)
	return e.data, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	data = append([]byte(nil), data...)

	if e, ok := c.entries[key]; ok {
		e.data, e.expiresAt = data, expires
		c.lru.MoveToFront(e.element)
		return nil
	}
	for len(c.entries) >= c.max {
		c.remove(c.lru.Back().Value.(*memEntry))
	}
	e := &memEntry{key: key, data: data, expiresAt: expires}
	e.element = c.lru.PushFront(e)
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.remove(e)
	}
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*memEntry)
	c.lru.Init()
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = nil
	c.lru.Init()
	return nil
}

func (c *MemoryCache) remove(e *memEntry) {
	c.lru.Remove(e.element)
	delete(c.entries, e.key)
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
