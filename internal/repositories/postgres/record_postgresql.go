package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/evalmate-service/internal/cache"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
)

// KVRecord is one serialized collection.
type KVRecord struct {
	Key       string         `gorm:"primaryKey;size:100"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (KVRecord) TableName() string {
	return "kv_records"
}

// RecordPostgreSQL stores records in the kv_records table, reading through an
// optional redis cache.
type RecordPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewRecordPostgreSQL(db *gorm.DB, cacheHelper *cache.CacheHelper) *RecordPostgreSQL {
	if cacheHelper == nil {
		cacheHelper = cache.NewCacheHelper(nil, "")
	}
	return &RecordPostgreSQL{db: db, cache: cacheHelper}
}

// Load retrieves a record, serving repeated reads from the cache
func (r *RecordPostgreSQL) Load(ctx context.Context, key string) ([]byte, error) {
	return r.cache.CacheOrExecute(ctx, key, cache.RecordCacheConfig.TTL, func() ([]byte, error) {
		var record KVRecord
		err := r.db.WithContext(ctx).Where("key = ?", key).First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrRecordNotFound
			}
			return nil, fmt.Errorf("failed to load record %s: %w", key, err)
		}
		return []byte(record.Value), nil
	})
}

// Save upserts a record and invalidates its cached copy
func (r *RecordPostgreSQL) Save(ctx context.Context, key string, data []byte) error {
	record := KVRecord{Key: key, Value: datatypes.JSON(data)}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}

	cache.SafeDelete(ctx, r.cache, key)
	return nil
}

// Delete removes a record and invalidates its cached copy
func (r *RecordPostgreSQL) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).Delete(&KVRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}

	cache.SafeDelete(ctx, r.cache, key)
	return nil
}

// Ping checks the health of database and cache connections
func (r *RecordPostgreSQL) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.cache.Available() {
		if err := r.cache.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection. The redis client is owned by the
// repository manager.
func (r *RecordPostgreSQL) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
