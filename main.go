package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/evalmate-service/internal/cache"
	"github.com/SAP-F-2025/evalmate-service/internal/config"
	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/handlers"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories/memory"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
	"github.com/SAP-F-2025/evalmate-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize storage
	repoManager, err := newRepositoryManager(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if err := repoManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize event publishing
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	publisher, err := newEventPublisher(auditCtx, cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize events: %v", err)
	}

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(repoManager, publisher, slogLogger, validator, services.ServiceManagerConfig{
		SessionTTL:           cfg.WizardSessionTTL,
		SessionSweepInterval: cfg.SessionSweepInterval,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, cfg.NotificationPollInterval)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Identity and role checks are applied per route group in SetupRoutes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"storage", cfg.StorageDriver,
			"events", cfg.Events.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server; open notification streams end with their requests
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Shutdown services; this drains and closes the event publisher and storage
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}
	stopAudit()

	logger.Info("Server exited")
}

// newRepositoryManager opens the record store selected by STORAGE_DRIVER.
func newRepositoryManager(cfg *config.Config) (repositories.RepositoryManager, error) {
	switch cfg.StorageDriver {
	case config.StorageRedis:
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return repositories.NewStaticManager(cache.NewRecordRedis(client, cfg.RedisKeyPrefix)), nil

	case config.StoragePostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}

		// Redis is an optional read-through cache in front of PostgreSQL
		var redisClient *redis.Client
		if cfg.RedisURL != "" {
			redisClient, err = pkg.NewRedisClient(cfg)
			if err != nil {
				log.Printf("Warning: Failed to initialize Redis: %v", err)
				redisClient = nil
			}
		}
		return postgres.NewRepositoryManager(postgres.RepositoryConfig{
			DB:          db,
			RedisClient: redisClient,
			KeyPrefix:   cfg.RedisKeyPrefix,
		}), nil

	default:
		return repositories.NewStaticManager(memory.NewRecordMemory()), nil
	}
}

// newEventPublisher returns the publisher selected by EVENTS_DRIVER, or nil
// when store events stay in-process. With the gochannel driver an audit
// subscriber logs every published event until ctx is cancelled.
func newEventPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	switch cfg.Events.Driver {
	case config.EventsGoChannel:
		pubsub := events.NewGoChannelPubSub(logger)
		go func() {
			if err := events.AuditLog(ctx, pubsub, cfg.Events.Topic, logger); err != nil {
				logger.Error("Audit subscriber stopped", "error", err)
			}
		}()
		return events.NewWatermillPublisher(pubsub, cfg.Events.Topic, logger), nil

	case config.EventsKafka:
		publisher, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic, logger)
		if err != nil {
			return nil, err
		}
		return publisher, nil

	default:
		return nil, nil
	}
}
