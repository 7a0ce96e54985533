package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	c := New(true)

	_, _, ok := c.Get("missing")
	assert.False(t, ok)

	etag := c.Set(RankingKey(1), []byte(`[1]`), time.Minute)
	data, got, ok := c.Get(RankingKey(1))
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1]`), data)
	assert.Equal(t, etag, got)

	c.Set("expired", []byte("x"), -time.Second)
	_, _, ok = c.Get("expired")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(2), stats["misses"])
	assert.Equal(t, 1, stats["active_keys"])
}

func TestCache_disabled(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	assert.Equal(t, ComputeETag([]byte("v")), etag)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := New(true)
	c.Set(RankingKey(1), []byte("a"), time.Minute)
	c.Set(RankingKey(12), []byte("b"), time.Minute)

	c.Delete(RankingKey(1))
	_, _, ok := c.Get(RankingKey(1))
	assert.False(t, ok)
	_, _, ok = c.Get(RankingKey(12))
	assert.True(t, ok)
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("body"))

	assert.False(t, CheckETagMatch("", etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch(`W/"0000", `+etag, etag))
	assert.False(t, CheckETagMatch(`W/"0000"`, etag))
}
