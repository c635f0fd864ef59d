package weather

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Provider reports the current weather of a city.
type Provider interface {
	Current(ctx context.Context, city string) (Report, error)
}

type entry struct {
	report  Report
	expires time.Time
}

// Cache keeps provider reports per city for a fixed TTL. Failed lookups are
// not cached.
type Cache struct {
	next Provider
	ttl  time.Duration
	log  *zap.Logger
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// NewCache wraps next with a TTL cache.
func NewCache(next Provider, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{
		next:    next,
		ttl:     ttl,
		log:     log.Named("weather-cache"),
		now:     time.Now,
		entries: map[string]entry{},
	}
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Current returns a cached report when fresh and asks the provider otherwise.
func (c *Cache) Current(ctx context.Context, city string) (Report, error) {
	key := cacheKey(city)

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Before(e.expires) {
		return e.report, nil
	}

	r, err := c.next.Current(ctx, city)
	if err != nil {
		return Report{}, err
	}

	c.mu.Lock()
	c.entries[key] = entry{report: r, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return r, nil
}

// Len returns the number of cached cities, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor purges expired entries every interval until ctx is done.
// The returned channel is closed once the goroutine has exited.
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Purge(); n > 0 {
					c.log.Info("purged expired weather reports", zap.Int("removed", n))
				}
			}
		}
	}()
	return done
}
