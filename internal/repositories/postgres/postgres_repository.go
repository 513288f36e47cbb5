package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/evalmate-service/internal/cache"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
)

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	KeyPrefix   string
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	store  *RecordPostgreSQL
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connections and migrates the kv_records table
func (rm *RepositoryManager) Initialize(ctx context.Context) error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	// Test Redis connection if provided
	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(pingCtx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	if err := rm.config.DB.WithContext(ctx).AutoMigrate(&KVRecord{}); err != nil {
		return fmt.Errorf("failed to migrate kv_records: %w", err)
	}

	helper := cache.NewCacheHelper(rm.config.RedisClient, rm.config.KeyPrefix+cache.RecordCacheConfig.Prefix)
	rm.store = NewRecordPostgreSQL(rm.config.DB, helper)
	return nil
}

// GetRecordStore returns the record store instance
func (rm *RepositoryManager) GetRecordStore() repositories.RecordStore {
	return rm.store
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.store == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.store.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.store == nil {
		return nil
	}

	if err := rm.store.Close(); err != nil {
		return err
	}

	if rm.config.RedisClient != nil {
		if err := rm.config.RedisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}
