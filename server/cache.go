package server

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cached is one stored response body with its status code.
type cached struct {
	body    []byte
	status  int
	expires time.Time
}

// responseCache is a TTL keyed response cache with single-flight collapse:
// concurrent requests for the same key share one computation, and at most
// one fresh computation runs per key after expiry. A non-positive TTL
// disables storage but keeps the collapse.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cached
	group   singleflight.Group
	now     func() time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cached),
		now:     time.Now,
	}
}

// Do returns the cached response for key or computes it via fn. Only
// successful responses (status < 400) are stored, failures are recomputed
// on the next request.
func (c *responseCache) Do(key string, fn func() ([]byte, int, error)) ([]byte, int, error, bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		return e.body, e.status, nil, true
	}
	c.mu.Unlock()

	type result struct {
		body   []byte
		status int
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		body, status, err := fn()
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 && status < 400 {
			c.mu.Lock()
			c.entries[key] = cached{body: body, status: status, expires: c.now().Add(c.ttl)}
			c.mu.Unlock()
		}
		return result{body: body, status: status}, nil
	})
	if err != nil {
		return nil, 0, err, false
	}
	res := v.(result)
	return res.body, res.status, nil, false
}

// Invalidate drops the entry for key, if any.
func (c *responseCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
