package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
)

// RecordRedis is a RecordStore keeping each record as one redis string.
type RecordRedis struct {
	client *redis.Client
	helper *CacheHelper
}

// NewRecordRedis stores records under "<keyPrefix>record:<key>".
func NewRecordRedis(client *redis.Client, keyPrefix string) *RecordRedis {
	return &RecordRedis{
		client: client,
		helper: NewCacheHelper(client, keyPrefix+RecordConfig.Prefix),
	}
}

func (r *RecordRedis) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.helper.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheNotFound) {
			return nil, repositories.ErrRecordNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *RecordRedis) Save(ctx context.Context, key string, data []byte) error {
	if !r.helper.Available() {
		return ErrCacheNotAvailable
	}
	if err := r.helper.SetBytes(ctx, key, data, RecordConfig.TTL); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

func (r *RecordRedis) Delete(ctx context.Context, key string) error {
	if !r.helper.Available() {
		return ErrCacheNotAvailable
	}
	if err := r.helper.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

func (r *RecordRedis) Ping(ctx context.Context) error {
	return r.helper.HealthCheck(ctx)
}

func (r *RecordRedis) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
