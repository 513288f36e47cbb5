package memory

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
)

// RecordMemory keeps records for the lifetime of the process only.
type RecordMemory struct {
	mu      sync.RWMutex
	records map[string][]byte

	// FailWith, when set, is returned by every Save and Delete.
	FailWith error
}

func NewRecordMemory() *RecordMemory {
	return &RecordMemory{records: make(map[string][]byte)}
}

func (m *RecordMemory) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[key]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *RecordMemory) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.records[key] = stored
	return nil
}

func (m *RecordMemory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	delete(m.records, key)
	return nil
}

func (m *RecordMemory) Ping(ctx context.Context) error { return nil }

func (m *RecordMemory) Close() error { return nil }
