package skeleton

import (
	"sync"

	"github.com/Faultbox/posehook/internal/memory"
)

// DefaultCacheSize bounds how many distinct skeleton resources are cached.
const DefaultCacheSize = 256

// LayoutCache keeps bone tables keyed by skeleton resource address. It caches
// table contents only; instance addresses are re-read every tick.
type LayoutCache struct {
	mu      sync.Mutex
	max     int
	layouts map[memory.Address]*Layout
}

// NewLayoutCache creates a cache holding at most max layouts.
func NewLayoutCache(max int) *LayoutCache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &LayoutCache{max: max, layouts: make(map[memory.Address]*Layout)}
}

// Get returns the cached layout for a skeleton resource.
func (c *LayoutCache) Get(res memory.Address) (*Layout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.layouts[res]
	return l, ok
}

// Put stores a layout. When full, the cache is emptied first.
func (c *LayoutCache) Put(res memory.Address, l *Layout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.layouts) >= c.max {
		c.layouts = make(map[memory.Address]*Layout)
	}
	c.layouts[res] = l
}

// Flush drops every cached layout.
func (c *LayoutCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layouts = make(map[memory.Address]*Layout)
}

// Len returns the number of cached layouts.
func (c *LayoutCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.layouts)
}
