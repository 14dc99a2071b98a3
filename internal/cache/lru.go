package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a size-bounded cache whose entries expire after a TTL.
// With sliding expiry, every hit pushes the deadline forward.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	sliding bool
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
	onEvict func(key string, value T)
}

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

type Option[T any] func(*LRUCache[T])

// WithSlidingExpiry renews an entry's TTL on every Get.
func WithSlidingExpiry[T any]() Option[T] {
	return func(c *LRUCache[T]) { c.sliding = true }
}

// WithEvictCallback is called, outside the lock, for entries dropped by
// capacity or expiry.
func WithEvictCallback[T any](fn func(key string, value T)) Option[T] {
	return func(c *LRUCache[T]) { c.onEvict = fn }
}

// WithClock overrides time.Now.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *LRUCache[T]) { c.now = now }
}

// NewLRUCache creates a cache holding at most maxSize entries.
func NewLRUCache[T any](maxSize int, ttl time.Duration, opts ...Option[T]) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	c := &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	v, ok, evicted := c.getLocked(key)
	c.mu.Unlock()

	c.notify(evicted)
	return v, ok
}

// GetOrCreate returns the live entry for key or stores the result of create.
// The boolean reports whether the entry already existed.
func (c *LRUCache[T]) GetOrCreate(key string, create func() T) (T, bool) {
	c.mu.Lock()
	v, ok, evicted := c.getLocked(key)
	if !ok {
		v = create()
		evicted = append(evicted, c.setLocked(key, v)...)
	}
	c.mu.Unlock()

	c.notify(evicted)
	return v, ok
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	evicted := c.setLocked(key, data)
	c.mu.Unlock()

	c.notify(evicted)
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// CleanExpired drops expired entries and returns how many were removed.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	now := c.now()
	var evicted []*entry[T]
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if it := elem.Value.(*entry[T]); now.After(it.expiresAt) {
			c.removeElement(elem)
			evicted = append(evicted, it)
		}
		elem = prev
	}
	c.mu.Unlock()

	c.notify(evicted)
	return len(evicted)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[T]) getLocked(key string) (T, bool, []*entry[T]) {
	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false, nil
	}

	it := elem.Value.(*entry[T])
	now := c.now()
	if now.After(it.expiresAt) {
		c.removeElement(elem)
		return zero, false, []*entry[T]{it}
	}
	if c.sliding {
		it.expiresAt = now.Add(c.ttl)
	}
	c.lru.MoveToFront(elem)
	return it.data, true, nil
}

func (c *LRUCache[T]) setLocked(key string, data T) []*entry[T] {
	it := &entry[T]{key: key, data: data, expiresAt: c.now().Add(c.ttl)}

	if elem, ok := c.items[key]; ok {
		elem.Value = it
		c.lru.MoveToFront(elem)
		return nil
	}
	c.items[key] = c.lru.PushFront(it)

	var evicted []*entry[T]
	for c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		evicted = append(evicted, oldest.Value.(*entry[T]))
		c.removeElement(oldest)
	}
	return evicted
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	it := elem.Value.(*entry[T])
	delete(c.items, it.key)
	c.lru.Remove(elem)
}

func (c *LRUCache[T]) notify(evicted []*entry[T]) {
	if c.onEvict == nil {
		return
	}
	for _, it := range evicted {
		c.onEvict(it.key, it.data)
	}
}
