package server

import (
	"fmt"
	"sync"

	"qr3d/internal/qrencode"
)

// maxCachedPNGs bounds pngCache; it is emptied when full.
const maxCachedPNGs = 256

// pngCache is a concurrency-safe cache of encoded /api/qr responses.
type pngCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func newPNGCache() *pngCache {
	return &pngCache{items: make(map[string][]byte)}
}

func cacheKey(text string, size int, backend qrencode.Backend) string {
	return fmt.Sprintf("%s|%d|%s", backend, size, text)
}

// get returns the cached PNG for key, calling render on a miss. Failed
// renders are not cached.
func (c *pngCache) get(key string, render func() ([]byte, error)) ([]byte, error) {
	// Fast path: read lock
	c.mu.RLock()
	if b, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return b, nil
	}
	c.mu.RUnlock()

	// Slow path: render outside the lock
	b, err := render()
	if err != nil {
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.items[key]; ok {
		return cached, nil
	}
	if len(c.items) >= maxCachedPNGs {
		clear(c.items)
	}
	c.items[key] = b
	return b, nil
}

func (c *pngCache) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
