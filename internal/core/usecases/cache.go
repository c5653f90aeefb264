package usecases

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/samirrijal/fleetview/internal/core/ports"
	"github.com/samirrijal/fleetview/internal/pkg/metrics"
)

// getCached reads key and msgpack-decodes it into v. It returns false on a
// miss or a decode failure.
func getCached(ctx context.Context, c ports.CacheService, op, key string, v any) bool {
	if c == nil {
		return false
	}
	data, err := c.Get(ctx, key)
	if err != nil || msgpack.Unmarshal(data, v) != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return true
}

// setCached msgpack-encodes v and stores it under key.
func setCached(ctx context.Context, c ports.CacheService, key string, v any, ttlSeconds int) error {
	if c == nil || ttlSeconds <= 0 {
		return nil
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttlSeconds)
}
