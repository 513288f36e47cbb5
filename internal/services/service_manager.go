package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Idle lifetime of wizard and builder sessions
	SessionTTL time.Duration

	// How often expired sessions are swept
	SessionSweepInterval time.Duration
}

func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		SessionTTL:           2 * time.Hour,
		SessionSweepInterval: time.Minute,
	}
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.RepositoryManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Stores and their event streams
	formEvents       *events.Emitter
	submissionEvents *events.Emitter
	forms            *FormStore
	evaluations      *EvaluationStore
	bridge           *events.Bridge

	// Service instances
	wizardService    WizardService
	builderService   BuilderService
	dashboardService DashboardService
	reportService    ReportService

	// Lifecycle management
	stopSweeps  context.CancelFunc
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager. publisher may be nil, in
// which case store events stay in-process.
func NewServiceManager(repo repositories.RepositoryManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize loads the stores and sets up all services
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	records := sm.repo.GetRecordStore()
	sm.formEvents = events.NewEmitter(sm.logger)
	sm.submissionEvents = events.NewEmitter(sm.logger)
	sm.forms = NewFormStore(ctx, records, sm.formEvents, sm.logger)
	sm.evaluations = NewEvaluationStore(ctx, records, sm.submissionEvents, sm.logger)

	if sm.publisher != nil {
		sm.bridge = events.NewBridge(sm.publisher, sm.logger)
		sm.bridge.Attach(sm.formEvents)
		sm.bridge.Attach(sm.submissionEvents)
		sm.logger.Info("Event bridge attached")
	}

	sm.wizardService = NewWizardService(sm.forms, sm.evaluations, sm.validator, sm.config.SessionTTL, sm.logger)
	sm.builderService = NewBuilderService(sm.forms, sm.validator, sm.config.SessionTTL, sm.logger)
	sm.dashboardService = NewDashboardService(sm.forms, sm.evaluations, sm.logger)
	sm.reportService = NewReportService(sm.evaluations, sm.validator, sm.logger)

	if sm.config.SessionSweepInterval > 0 {
		sweepCtx, cancel := context.WithCancel(context.Background())
		sm.stopSweeps = cancel
		go sm.wizardService.Run(sweepCtx, sm.config.SessionSweepInterval)
		go sm.builderService.Run(sweepCtx, sm.config.SessionSweepInterval)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

// Service getters
func (sm *serviceManager) Forms() *FormStore {
	sm.mustBeInitialized()
	return sm.forms
}

func (sm *serviceManager) Evaluations() *EvaluationStore {
	sm.mustBeInitialized()
	return sm.evaluations
}

func (sm *serviceManager) Wizard() WizardService {
	sm.mustBeInitialized()
	return sm.wizardService
}

func (sm *serviceManager) Builder() BuilderService {
	sm.mustBeInitialized()
	return sm.builderService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) Reports() ReportService {
	sm.mustBeInitialized()
	return sm.reportService
}

func (sm *serviceManager) Subscribe(l events.Listener) func() {
	sm.mustBeInitialized()
	disposeForms := sm.formEvents.Subscribe(l)
	disposeSubmissions := sm.submissionEvents.Subscribe(l)
	return func() {
		disposeForms()
		disposeSubmissions()
	}
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown stops session sweeping, flushes pending events and releases the
// record store.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.stopSweeps != nil {
		sm.stopSweeps()
	}

	if sm.bridge != nil {
		if err := sm.bridge.Close(ctx); err != nil {
			sm.logger.Error("Failed to close event bridge", "error", err)
		}
	}

	if err := sm.repo.Shutdown(ctx); err != nil {
		sm.logger.Error("Failed to shutdown repository manager", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")
	return nil
}
