package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/builder"
	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
	"github.com/SAP-F-2025/evalmate-service/internal/wizard"
)

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs the start of a request with the caller attached
func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	identity, _ := GetIdentityFromContext(c)
	utils.GetLogger(c, h.logger).Info(msg,
		"user_id", identity.ID,
		"user_role", identity.Role,
		"path", c.FullPath())
}

// respondError writes the standard error body
func respondError(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

func respondSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.SuccessResponse{
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// bindJSON decodes the body into req, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return false
	}
	return true
}

// identity returns the caller set by IdentityMiddleware, answering 401 when
// there is none.
func (h *BaseHandler) identity(c *gin.Context) (models.Identity, bool) {
	identity, err := GetIdentityFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return models.Identity{}, false
	}
	return identity, true
}

// respondStep answers a wizard or builder step. A rejected step still
// carries the session so clients can render its errors.
func respondStep[T any](h *BaseHandler, c *gin.Context, state *T, err error) {
	if err == nil {
		c.JSON(http.StatusOK, state)
		return
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && state != nil {
		respondError(c, http.StatusUnprocessableEntity, "Validation failed", gin.H{
			"errors":  validationErrors,
			"session": state,
		})
		return
	}
	h.handleServiceError(c, err)
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondError(c, http.StatusBadRequest, "Validation failed", validationErrors)
		return
	}

	switch {
	case errors.Is(err, services.ErrFormNotFound):
		respondError(c, http.StatusNotFound, "Form not found", nil)
	case errors.Is(err, services.ErrSubmissionNotFound):
		respondError(c, http.StatusNotFound, "Submission not found", nil)
	case errors.Is(err, services.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "Session not found or expired", nil)
	case errors.Is(err, builder.ErrSectionNotFound),
		errors.Is(err, builder.ErrQuestionNotFound),
		errors.Is(err, wizard.ErrSlotOutOfRange),
		errors.Is(err, wizard.ErrCursorOutOfRange),
		errors.Is(err, wizard.ErrUnknownQuestion):
		respondError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrFormNotPublished):
		respondError(c, http.StatusConflict, "Form is not published", nil)
	case errors.Is(err, wizard.ErrInvalidState),
		errors.Is(err, wizard.ErrTeamSlotLimit):
		respondError(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, builder.ErrUnknownTemplate),
		errors.Is(err, builder.ErrUnknownQuestionType),
		errors.Is(err, services.ErrBadRequest):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		respondError(c, http.StatusForbidden, "Access denied", nil)
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "Resource not found", nil)
	default:
		utils.GetLogger(c, h.logger).Error("Unhandled service error", "error", err)
		respondError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
