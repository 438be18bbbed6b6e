package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/quillglow/internal/cache"
)

const testModel = "llama-3.3-70b-versatile"

func newTestCache(t *testing.T, ttl time.Duration) (*cache.SummaryCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewSummaryCache(client, ttl), mr
}

func TestSummaryCache_RoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, found, err := c.Get(ctx, testModel, "photosynthesis")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, testModel, "photosynthesis", "Plants turn light into sugar."))

	got, found, err := c.Get(ctx, testModel, "  Photosynthesis ")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Plants turn light into sugar.", got)
}

func TestSummaryCache_Expires(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testModel, "mitosis", "Cell division."))
	mr.FastForward(2 * time.Minute)

	_, found, err := c.Get(ctx, testModel, "mitosis")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSummaryCache_ModelIsPartOfKey(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testModel, "mitosis", "Cell division."))

	_, found, err := c.Get(ctx, "claude-3-5-haiku-20241022", "mitosis")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSummaryCache_ServerDown(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t, time.Hour)
	mr.Close()

	_, _, err := c.Get(context.Background(), testModel, "mitosis")
	assert.Error(t, err)
}

func TestKey_Normalises(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cache.Key(testModel, "the water cycle"), cache.Key(testModel, "The  Water\tCycle "))
	assert.NotEqual(t, cache.Key(testModel, "water cycle"), cache.Key(testModel, "carbon cycle"))
}
