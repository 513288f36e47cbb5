package repositories

import (
	"context"
	"errors"
)

// Record keys. Each holds one collection serialized as a JSON array.
const (
	FormsKey       = "evalmate-forms"
	SubmissionsKey = "evalmate-submissions"
)

var ErrRecordNotFound = errors.New("record not found")

// RecordStore is durable key -> document storage. Load returns
// ErrRecordNotFound for a key that was never saved or has been deleted.
type RecordStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}
