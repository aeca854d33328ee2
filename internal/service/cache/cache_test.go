package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "series:wheat", []byte("[1,2]"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("x"), 0))

	b, ok, err := c.GetBytes(ctx, "series:wheat")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("[1,2]"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "series:wheat")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)

	_, ok, _ = c.GetBytes(ctx, "missing")
	assert.False(t, ok)
}

type countingCache struct {
	*TTLCache
	gets int
}

func (c *countingCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	return c.TTLCache.GetBytes(ctx, key)
}

func TestLayeredCacheReadsThroughToL2(t *testing.T) {
	ctx := context.Background()
	l2 := &countingCache{TTLCache: NewTTLCache()}
	require.NoError(t, l2.SetBytes(ctx, "series:wheat", []byte("v1"), 0))

	c := NewLayeredCache(l2, time.Minute)
	b, ok, err := c.GetBytes(ctx, "series:wheat")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(b))
	assert.Equal(t, 1, l2.gets)

	_, ok, _ = c.GetBytes(ctx, "series:wheat")
	assert.True(t, ok)
	assert.Equal(t, 1, l2.gets, "second read served by L1")
}

func TestLayeredCacheWritesBothLevels(t *testing.T) {
	ctx := context.Background()
	l2 := &countingCache{TTLCache: NewTTLCache()}
	c := NewLayeredCache(l2, time.Minute)

	require.NoError(t, c.SetBytes(ctx, "commodities", []byte("[]"), time.Hour))
	assert.Equal(t, 1, l2.Len())
	assert.Equal(t, 1, c.l1.Len())

	_, ok, _ := c.GetBytes(ctx, "missing")
	assert.False(t, ok)
}
