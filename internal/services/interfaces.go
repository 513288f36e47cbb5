package services

import (
	"context"

	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Use business validator types
type SectionRequest = validator.SectionRequest
type QuestionRequest = validator.QuestionRequest

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Stores
	Forms() *FormStore
	Evaluations() *EvaluationStore

	// Core service getters
	Wizard() WizardService
	Builder() BuilderService
	Dashboard() DashboardService
	Reports() ReportService

	// Subscribe registers l for form and submission events alike
	Subscribe(l events.Listener) func()

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
