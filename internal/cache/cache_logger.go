package cache

import (
	"context"
	"log/slog"
	"time"
)

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeSet safely stores a value with logging
func SafeSet(ctx context.Context, helper *CacheHelper, key string, value []byte, ttl time.Duration) {
	if err := helper.SetBytes(ctx, key, value, ttl); err != nil {
		slog.ErrorContext(ctx, "Failed to set cache key",
			"error", err,
			"key", key)
	}
}
