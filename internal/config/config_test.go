package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("EVENTS_DRIVER", "none")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, EventsNone, cfg.Events.Driver)
	assert.Equal(t, 2*time.Hour, cfg.WizardSessionTTL)
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval)
	assert.Equal(t, 30*time.Second, cfg.NotificationPollInterval)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("EVENTS_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("WIZARD_SESSION_TTL", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StorageRedis, cfg.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.WizardSessionTTL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Port: "8080", StorageDriver: StorageMemory, Events: EventsConfig{Driver: EventsNone}, WizardSessionTTL: time.Minute}, false},
		{"bad port", Config{Port: "x", StorageDriver: StorageMemory, Events: EventsConfig{Driver: EventsNone}, WizardSessionTTL: time.Minute}, true},
		{"redis without url", Config{Port: "8080", StorageDriver: StorageRedis, Events: EventsConfig{Driver: EventsNone}, WizardSessionTTL: time.Minute}, true},
		{"postgres without url", Config{Port: "8080", StorageDriver: StoragePostgres, Events: EventsConfig{Driver: EventsNone}, WizardSessionTTL: time.Minute}, true},
		{"unknown storage", Config{Port: "8080", StorageDriver: "files", Events: EventsConfig{Driver: EventsNone}, WizardSessionTTL: time.Minute}, true},
		{"kafka without brokers", Config{Port: "8080", StorageDriver: StorageMemory, Events: EventsConfig{Driver: EventsKafka}, WizardSessionTTL: time.Minute}, true},
		{"zero ttl", Config{Port: "8080", StorageDriver: StorageMemory, Events: EventsConfig{Driver: EventsGoChannel}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
