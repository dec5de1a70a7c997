package service

import (
	"academy-api/logger"
	"academy-api/metrics"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client.
// *redis.Client satisfies it.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// NoopCache is used when redis is disabled. Every lookup misses.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string) *redis.StringCmd {
	return redis.NewStringResult("", redis.Nil)
}

func (NoopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (NoopCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func (NoopCache) Incr(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

// listCache stores JSON values under keys prefixed with a namespace version.
// Bumping the version invalidates every key of the namespace at once; stale
// keys expire through their TTL. Cache failures never fail a request.
type listCache struct {
	client    ICacheClient
	namespace string
	ttl       time.Duration
}

func newListCache(client ICacheClient, namespace string, ttl time.Duration) *listCache {
	if client == nil {
		client = NoopCache{}
	}
	return &listCache{client: client, namespace: namespace, ttl: ttl}
}

func (c *listCache) versionKey() string {
	return c.namespace + ":version"
}

func (c *listCache) key(ctx context.Context, parts ...interface{}) string {
	version, err := c.client.Get(ctx, c.versionKey()).Result()
	if err != nil {
		version = "0"
	}
	s := make([]string, 0, len(parts))
	for _, p := range parts {
		s = append(s, fmt.Sprint(p))
	}
	return fmt.Sprintf("%s:v%s:%s", c.namespace, version, strings.Join(s, ":"))
}

// filterKey hashes the JSON form of a search filter into a key part. Every
// field takes part, so filters that differ in any field never share a key.
func filterKey(filter interface{}) string {
	data, err := json.Marshal(filter)
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", filter))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// get decodes the cached value into dest and reports a hit.
func (c *listCache) get(ctx context.Context, key string, dest interface{}) bool {
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		metrics.CacheMiss(c.namespace)
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		metrics.CacheMiss(c.namespace)
		return false
	}
	metrics.CacheHit(c.namespace)
	return true
}

func (c *listCache) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func (c *listCache) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, c.versionKey()).Err(); err != nil {
		logger.Log.WithError(err).WithField("namespace", c.namespace).Warn("Cache invalidation failed")
	}
}
