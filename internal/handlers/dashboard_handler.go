package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetFacultyDashboard returns form and submission statistics with the latest
// submissions
// @Router /dashboard/faculty [get]
func (h *DashboardHandler) GetFacultyDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting faculty dashboard")

	dashboard, err := h.service.GetFacultyDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetStudentDashboard returns the caller's pending forms and deadlines
// @Router /dashboard/student [get]
func (h *DashboardHandler) GetStudentDashboard(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Getting student dashboard")

	dashboard, err := h.service.GetStudentDashboard(c.Request.Context(), student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
