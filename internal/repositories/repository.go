package repositories

import "context"

// RepositoryManager owns the lifecycle of the configured RecordStore.
type RepositoryManager interface {
	// Initialize connections, migrations and caches
	Initialize(ctx context.Context) error

	// Get the record store instance
	GetRecordStore() RecordStore

	// Health check for all connections
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}

// StaticManager wraps a RecordStore that needs no setup of its own.
type StaticManager struct {
	store RecordStore
}

func NewStaticManager(store RecordStore) *StaticManager {
	return &StaticManager{store: store}
}

func (m *StaticManager) Initialize(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *StaticManager) GetRecordStore() RecordStore {
	return m.store
}

func (m *StaticManager) HealthCheck(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *StaticManager) Shutdown(ctx context.Context) error {
	return m.store.Close()
}
