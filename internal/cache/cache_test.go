package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute)
	c.now = func() time.Time { return now }

	_, ok := c.Get(ctx, "users")
	assert.False(t, ok)

	rows := [][]string{{"username"}, {"ana"}}
	require.NoError(t, c.Set(ctx, "users", rows))
	rows[1][0] = "changed"

	got, ok := c.Get(ctx, "users")
	require.True(t, ok)
	assert.Equal(t, [][]string{{"username"}, {"ana"}}, got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "users")
	assert.False(t, ok, "entry should expire after ttl")
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	require.NoError(t, c.Set(ctx, "k", [][]string{{"a"}}))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNopNeverHits(t *testing.T) {
	ctx := context.Background()
	var c TableCache = Nop{}
	require.NoError(t, c.Set(ctx, "k", [][]string{{"a"}}))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis("not a url", time.Minute)
	assert.Error(t, err)
}
