package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/console/internal/config"
	"github.com/flexprice/console/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quote struct {
	Amount int64 `json:"amount"`
}

func newTestCache(enabled bool) *InMemoryCache {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = enabled
	return NewInMemoryCache(cfg)
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(true)

	c.Set(ctx, "quote:a", &quote{Amount: 100}, 0)
	c.Set(ctx, "quote:b", &quote{Amount: 200}, time.Minute)
	c.Set(ctx, "plan:a", &quote{Amount: 300}, 0)

	v, ok := c.Get(ctx, "quote:a")
	require.True(t, ok)
	q, ok := UnmarshalCacheValue[quote](v)
	require.True(t, ok)
	assert.Equal(t, int64(100), q.Amount)

	c.DeleteByPrefix(ctx, "quote:")
	_, ok = c.Get(ctx, "quote:b")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "plan:a")
	assert.True(t, ok)

	c.Delete(ctx, "plan:a")
	_, ok = c.Get(ctx, "plan:a")
	assert.False(t, ok)

	c.Set(ctx, "x", 1, 0)
	c.Flush(ctx)
	_, ok = c.Get(ctx, "x")
	assert.False(t, ok)
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(false)
	c.Set(ctx, "k", "v", 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestUnmarshalCacheValue(t *testing.T) {
	q, ok := UnmarshalCacheValue[quote](`{"amount":42}`)
	require.True(t, ok)
	assert.Equal(t, int64(42), q.Amount)

	_, ok = UnmarshalCacheValue[quote](nil)
	assert.False(t, ok)
	_, ok = UnmarshalCacheValue[quote](12)
	assert.False(t, ok)
	_, ok = UnmarshalCacheValue[quote]("not json")
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint("resolve", map[string]int{"base": 1}, "usd")
	require.NoError(t, err)
	b, err := Fingerprint("resolve", map[string]int{"base": 1}, "usd")
	require.NoError(t, err)
	c, err := Fingerprint("resolve", map[string]int{"base": 2}, "usd")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "resolve:")
}

func TestInitialize(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Type = "redis"
	c := Initialize(cfg, logger.NewNoopLogger())
	assert.IsType(t, &InMemoryCache{}, c)
}
