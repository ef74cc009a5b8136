package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisResultCache is the shared backend. It holds serialized reports
// with a server-side TTL so entries expire passively.
type RedisResultCache struct {
	client *redis.Client
	prefix string
}

type RedisConfig struct {
	Prefix string
}

// NewRedisResultCache creates a Redis-backed cache.
func NewRedisResultCache(client *redis.Client, config RedisConfig) *RedisResultCache {
	return &RedisResultCache{
		client: client,
		prefix: config.Prefix,
	}
}

// key builds the final Redis key with the optional prefix.
func (c *RedisResultCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get retrieves a stored report. A missing key is a clean miss. On a
// Redis error it returns (nil, false, err) so the caller can log and
// treat the lookup as a miss.
func (c *RedisResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("context error: %w", err)
	}

	res, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	return res, true, nil
}

// Set stores a report with TTL. If ttl <= 0, it does nothing.
func (c *RedisResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Ping checks the Redis connection. Used once at startup to decide
// whether the shared backend is usable at all.
func (c *RedisResultCache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return c.client.Ping(ctx).Err()
}
