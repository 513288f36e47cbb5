package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	EventsNone      = "none"
	EventsGoChannel = "gochannel"
	EventsKafka     = "kafka"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	StorageDriver  string
	DatabaseURL    string
	RedisURL       string
	RedisKeyPrefix string

	Events EventsConfig

	WizardSessionTTL         time.Duration
	SessionSweepInterval     time.Duration
	NotificationPollInterval time.Duration
}

type EventsConfig struct {
	Driver       string
	KafkaBrokers []string
	Topic        string
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLevel(getEnv("LOG_LEVEL", "info")),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", ""),
		Events: EventsConfig{
			Driver:       strings.ToLower(getEnv("EVENTS_DRIVER", EventsNone)),
			KafkaBrokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:        getEnv("EVENTS_TOPIC", "evalmate.events"),
		},
		WizardSessionTTL:         getEnvAsDuration("WIZARD_SESSION_TTL", 2*time.Hour),
		SessionSweepInterval:     getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		NotificationPollInterval: getEnvAsDuration("NOTIFICATION_POLL_INTERVAL", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Port)
	}

	switch c.StorageDriver {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for storage driver %q", c.StorageDriver)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.StorageDriver)
	}

	switch c.Events.Driver {
	case EventsNone, EventsGoChannel:
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for events driver %q", c.Events.Driver)
		}
	default:
		return fmt.Errorf("unknown events driver: %q", c.Events.Driver)
	}

	if c.WizardSessionTTL <= 0 {
		return fmt.Errorf("WIZARD_SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
