package cache

import (
	"context"
	"strings"
	"time"

	"resumatch-gateway/internal/metrics"
	"resumatch-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingResultCache wraps a ResultCache with logging + metrics.
type LoggingResultCache struct {
	inner ResultCache
}

// NewLoggingResultCache returns a cache that logs every lookup and
// write and records cache-hit metrics.
func NewLoggingResultCache(inner ResultCache) ResultCache {
	return &LoggingResultCache{inner: inner}
}

func (c *LoggingResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
		metrics.CacheHitsTotal.Inc()
	}

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	if parts, ok := parseFingerprintKey(key); ok {
		fields = append(fields,
			zap.String("doc_digest", parts.docDigest),
			zap.String("jd_digest", parts.jdDigest),
		)
	}

	if err != nil {
		logger.Error("result_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Info("result_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Int("value_bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Error("result_cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Info("result_cache_set", fields...)
	}

	return err
}

type fingerprintKeyParts struct {
	docDigest string
	jdDigest  string
}

// Expecting: resume:<version>:<DOC_DIGEST>:<JD_DIGEST>
func parseFingerprintKey(key string) (fingerprintKeyParts, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 || parts[0] != "resume" {
		return fingerprintKeyParts{}, false
	}
	return fingerprintKeyParts{
		docDigest: parts[2],
		jdDigest:  parts[3],
	}, true
}
