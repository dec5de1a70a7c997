// service/cache_test.go
package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// memoryCache is an in-process ICacheClient.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (c *memoryCache) Incr(ctx context.Context, key string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func TestListCache_HitAndInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newListCache(newMemoryCache(), "notices", time.Minute)

	key := cache.key(ctx, "public", 0, 20)
	assert.Equal(t, "notices:v0:public:0:20", key)

	var got []string
	assert.False(t, cache.get(ctx, key, &got))

	cache.set(ctx, key, []string{"a", "b"})
	assert.True(t, cache.get(ctx, key, &got))
	assert.Equal(t, []string{"a", "b"}, got)

	cache.invalidate(ctx)
	newKey := cache.key(ctx, "public", 0, 20)
	assert.Equal(t, "notices:v1:public:0:20", newKey)
	assert.False(t, cache.get(ctx, newKey, &got))
}

func TestListCache_NoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	cache := newListCache(nil, "faqs", time.Minute)

	key := cache.key(ctx, "x")
	cache.set(ctx, key, 1)
	var n int
	assert.False(t, cache.get(ctx, key, &n))
	cache.invalidate(ctx)
}
