package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

const serviceName = "evalmate-service"

type HandlerManager struct {
	formHandler         *FormHandler
	builderHandler      *BuilderHandler
	wizardHandler       *WizardHandler
	submissionHandler   *SubmissionHandler
	dashboardHandler    *DashboardHandler
	notificationHandler *NotificationHandler
	validator           *validator.Validator
	health              func(ctx context.Context) error
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	heartbeat time.Duration,
) *HandlerManager {
	return &HandlerManager{
		formHandler:         NewFormHandler(serviceManager.Forms(), validator, logger),
		builderHandler:      NewBuilderHandler(serviceManager.Builder(), logger),
		wizardHandler:       NewWizardHandler(serviceManager.Wizard(), logger),
		submissionHandler:   NewSubmissionHandler(serviceManager.Reports(), serviceManager.Evaluations(), logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Dashboard(), serviceManager.Subscribe, heartbeat, logger),
		validator:           validator,
		health:              serviceManager.HealthCheck,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	facultyOnly := RequireRoleMiddleware(models.RoleFaculty)
	studentOnly := RequireRoleMiddleware(models.RoleStudent)

	// API v1 routes with gateway identity
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware(hm.validator))
	{
		// Form routes
		forms := v1.Group("/forms")
		{
			// View forms - All callers
			forms.GET("", hm.formHandler.ListForms)
			forms.GET("/:id", hm.formHandler.GetForm)

			// Manage forms - Faculty only
			forms.GET("/stats", facultyOnly, hm.formHandler.GetFormStats)
			forms.POST("", facultyOnly, hm.formHandler.CreateForm)
			forms.PUT("/:id", facultyOnly, hm.formHandler.UpdateForm)
			forms.POST("/:id/publish", facultyOnly, hm.formHandler.PublishForm)
			forms.DELETE("/:id", facultyOnly, hm.formHandler.DeleteForm)
			forms.DELETE("", facultyOnly, hm.formHandler.ClearForms)
		}

		// Form builder routes - Faculty only
		builder := v1.Group("/builder")
		builder.Use(facultyOnly)
		{
			builder.GET("/palette", hm.builderHandler.GetPalette)
			builder.GET("/templates", hm.builderHandler.GetTemplates)

			builder.POST("/sessions", hm.builderHandler.StartSession)
			builder.GET("/sessions/:id", hm.builderHandler.GetSession)
			builder.DELETE("/sessions/:id", hm.builderHandler.DiscardSession)
			builder.PATCH("/sessions/:id/details", hm.builderHandler.UpdateDetails)
			builder.POST("/sessions/:id/template", hm.builderHandler.ApplyTemplate)

			// Sections and questions
			builder.POST("/sessions/:id/sections", hm.builderHandler.AddSection)
			builder.PUT("/sessions/:id/sections/:section_id", hm.builderHandler.UpdateSection)
			builder.DELETE("/sessions/:id/sections/:section_id", hm.builderHandler.DeleteSection)
			builder.POST("/sessions/:id/sections/:section_id/questions", hm.builderHandler.AddQuestion)
			builder.PUT("/sessions/:id/sections/:section_id/questions/:question_id", hm.builderHandler.UpdateQuestion)
			builder.DELETE("/sessions/:id/sections/:section_id/questions/:question_id", hm.builderHandler.DeleteQuestion)

			// Persistence
			builder.POST("/sessions/:id/draft", hm.builderHandler.SaveDraft)
			builder.POST("/sessions/:id/publish", hm.builderHandler.Publish)
		}

		// Evaluation wizard routes - Students only
		wizard := v1.Group("/wizard")
		wizard.Use(studentOnly)
		{
			wizard.POST("/sessions", hm.wizardHandler.StartSession)
			wizard.GET("/sessions/:id", hm.wizardHandler.GetSession)
			wizard.DELETE("/sessions/:id", hm.wizardHandler.DiscardSession)

			// Team setup
			wizard.PUT("/sessions/:id/team", hm.wizardHandler.SetTeamID)
			wizard.POST("/sessions/:id/teammates", hm.wizardHandler.AddTeammate)
			wizard.PUT("/sessions/:id/teammates/:slot", hm.wizardHandler.SetTeammate)
			wizard.DELETE("/sessions/:id/teammates/:slot", hm.wizardHandler.RemoveTeammate)
			wizard.POST("/sessions/:id/proceed", hm.wizardHandler.Proceed)

			// Evaluation
			wizard.PUT("/sessions/:id/responses", hm.wizardHandler.SetResponse)
			wizard.POST("/sessions/:id/next-section", hm.wizardHandler.NextSection)
			wizard.POST("/sessions/:id/next-teammate", hm.wizardHandler.NextTeammate)
			wizard.POST("/sessions/:id/previous-section", hm.wizardHandler.PreviousSection)
			wizard.PUT("/sessions/:id/cursor", hm.wizardHandler.GoTo)
			wizard.POST("/sessions/:id/submit", hm.wizardHandler.Submit)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			// Own submissions - Students only
			submissions.GET("/mine", studentOnly, hm.submissionHandler.ListMySubmissions)

			// Reports - Faculty only
			submissions.GET("", facultyOnly, hm.submissionHandler.ListSubmissions)
			submissions.GET("/stats", facultyOnly, hm.submissionHandler.GetStats)
			submissions.GET("/export", facultyOnly, hm.submissionHandler.ExportJSON)
			submissions.GET("/export.xlsx", facultyOnly, hm.submissionHandler.ExportXLSX)
			submissions.POST("/read", facultyOnly, hm.submissionHandler.MarkAllAsRead)
			submissions.DELETE("", facultyOnly, hm.submissionHandler.ClearSubmissions)
			submissions.GET("/:id", facultyOnly, hm.submissionHandler.GetSubmission)
			submissions.POST("/:id/read", facultyOnly, hm.submissionHandler.MarkAsRead)
			submissions.DELETE("/:id", facultyOnly, hm.submissionHandler.DeleteSubmission)
		}

		// Dashboard routes
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/faculty", facultyOnly, hm.dashboardHandler.GetFacultyDashboard)
			dashboard.GET("/student", studentOnly, hm.dashboardHandler.GetStudentDashboard)
		}

		// Notification routes - Faculty only
		notifications := v1.Group("/notifications")
		notifications.Use(facultyOnly)
		{
			notifications.GET("", hm.notificationHandler.GetNotifications)
			notifications.GET("/stream", hm.notificationHandler.StreamEvents)
		}
	}

	// Health check endpoint
	router.GET("/health", hm.HealthCheck)
}

// HealthCheck reports whether the record store is reachable
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := models.HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Checks:    map[string]string{"storage": "ok"},
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK
	if err := hm.health(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Checks["storage"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
