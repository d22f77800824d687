package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestCache(now *time.Time) *memoryCache {
	return &memoryCache{
		entries: make(map[string]entry),
		now:     func() time.Time { return *now },
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(&now)

	c.Set("svc:period", int64(1200), time.Minute)

	v, ok := c.Get("svc:period")
	assert.True(t, ok)
	assert.Equal(t, int64(1200), v)
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(&now)

	c.Set("k", "v", time.Minute)
	now = now.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_ZeroTTLStoresNothing(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("k", "v", 0)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_InvalidatePrefix(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("resource:i-1", int64(1), time.Hour)
	c.Set("resource:i-2", int64(2), time.Hour)
	c.Set("service:s3", int64(3), time.Hour)

	c.Invalidate("resource:")

	_, ok := c.Get("resource:i-1")
	assert.False(t, ok)
	_, ok = c.Get("resource:i-2")
	assert.False(t, ok)
	v, ok := c.Get("service:s3")
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)
}
