// ABOUTME: Thread-safe TTL cache remembering recently applied frame keys
// ABOUTME: Size-bounded with O(1) oldest-first eviction and periodic expiry sweeps

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultWindow  = 2 * time.Second
	DefaultMaxSize = 4096
)

// cacheEntry stores the timestamp and list element for a cached key.
type cacheEntry struct {
	seenAt  time.Time
	element *list.Element
}

// Options configures a Cache.
type Options struct {
	// Window is how long a key counts as a duplicate after it was marked.
	Window  time.Duration
	MaxSize int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Cache tracks frame keys seen within the window. When full, the oldest key
// is evicted to make room.
type Cache struct {
	mu      sync.Mutex
	seen    map[string]*cacheEntry
	order   *list.List // oldest at front
	window  time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache and starts its expiry sweeper. Call Close to stop it.
func New(opts Options) *Cache {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Cache{
		seen:    make(map[string]*cacheEntry),
		order:   list.New(),
		window:  opts.Window,
		maxSize: opts.MaxSize,
		now:     opts.Now,
		done:    make(chan struct{}),
	}
	go c.sweep(sweepInterval(opts.Window))
	return c
}

func sweepInterval(window time.Duration) time.Duration {
	return min(max(window*5, time.Second), time.Minute)
}

// Window returns the configured duplicate window.
func (c *Cache) Window() time.Duration {
	return c.window
}

// Seen reports whether key was marked within the window.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.seen[key]
	return ok && c.now().Sub(entry.seenAt) < c.window
}

// Duplicate atomically checks key and marks it. It returns true if key was
// already marked within the window.
func (c *Cache) Duplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, ok := c.seen[key]; ok && now.Sub(entry.seenAt) < c.window {
		return true
	}
	c.markLocked(key, now)
	return false
}

// Len returns the number of keys held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Reset forgets every key.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[string]*cacheEntry)
	c.order.Init()
}

// markLocked must be called with mu held.
func (c *Cache) markLocked(key string, now time.Time) {
	if entry, exists := c.seen[key]; exists {
		entry.seenAt = now
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldest()
	}

	c.seen[key] = &cacheEntry{
		seenAt:  now,
		element: c.order.PushBack(key),
	}
}

// evictOldest must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.seen, key)
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.expire()
		case <-c.done:
			return
		}
	}
}

// expire drops keys older than the window. Keys are in mark order, so the
// scan stops at the first live one.
func (c *Cache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for e := c.order.Front(); e != nil; {
		key, _ := e.Value.(string)
		if now.Sub(c.seen[key].seenAt) < c.window {
			return
		}
		next := e.Next()
		c.order.Remove(e)
		delete(c.seen, key)
		e = next
	}
}

// Close stops the sweeper. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
