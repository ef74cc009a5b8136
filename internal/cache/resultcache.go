package cache

import (
	"context"
	"time"
)

// ResultCache stores serialized analysis reports keyed by Fingerprint
// strings. Implemented by the in-process map (fallback) and Redis
// (shared). Both Get errors and Set errors are advisory: callers log
// them and carry on as if the entry were absent (Get) or the write
// were a no-op (Set). The cache must never fail a request.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
