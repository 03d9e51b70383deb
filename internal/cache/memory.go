package cache

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/console/internal/config"
	gocache "github.com/patrickmn/go-cache"
)

// InMemoryCache implements Cache on top of go-cache.
type InMemoryCache struct {
	cache   *gocache.Cache
	enabled bool
	ttl     time.Duration
}

// NewInMemoryCache builds a cache honouring cache.enabled and cache.ttl.
func NewInMemoryCache(cfg *config.Configuration) *InMemoryCache {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = ExpiryDefaultInMemory
	}
	return &InMemoryCache{
		cache:   gocache.New(ttl, cleanupInterval),
		enabled: cfg.Cache.Enabled,
		ttl:     ttl,
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	return c.cache.Get(key)
}

// Set stores value. A zero expiration uses the configured TTL.
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration <= 0 {
		expiration = c.ttl
	}
	c.cache.Set(key, value, expiration)
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}
