package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Backend string // "redis" or "memory"
	TTL     time.Duration
	Prefix  string
}

// NewResultCache selects the backend once, at construction. The choice
// is never re-evaluated: main probes Redis and passes "memory" here
// when the shared backend is unconfigured or unreachable.
func NewResultCache(cfg Config, redisClient *redis.Client) ResultCache {
	switch cfg.Backend {
	case "redis":
		return NewRedisResultCache(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		})
	default:
		return NewMemoryResultCache(cfg.TTL)
	}
}
