package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
)

// loadCollection decodes the JSON array stored under key into dest. A missing
// record leaves dest empty; an unreadable or corrupt one is logged and also
// leaves dest empty.
func loadCollection(ctx context.Context, records repositories.RecordStore, key string, dest interface{}, logger *slog.Logger) {
	data, err := records.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrRecordNotFound) {
			logger.Warn("Failed to load collection, starting empty", "key", key, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Corrupt collection, starting empty", "key", key, "error", err)
	}
}

// saveCollection encodes src and stores it under key. Failures are logged and
// reported so callers can skip notification; in-memory state stays authoritative.
func saveCollection(ctx context.Context, records repositories.RecordStore, key string, src interface{}, logger *slog.Logger) bool {
	data, err := json.Marshal(src)
	if err != nil {
		logger.Error("Failed to encode collection", "key", key, "error", err)
		return false
	}
	if err := records.Save(ctx, key, data); err != nil {
		logger.Error("Failed to persist collection", "key", key, "error", err)
		return false
	}
	return true
}

func deleteCollection(ctx context.Context, records repositories.RecordStore, key string, logger *slog.Logger) bool {
	if err := records.Delete(ctx, key); err != nil {
		logger.Error("Failed to delete collection", "key", key, "error", err)
		return false
	}
	return true
}
