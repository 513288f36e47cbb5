package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SubmissionHandler struct {
	BaseHandler
	reports     services.ReportService
	evaluations *services.EvaluationStore
}

func NewSubmissionHandler(reports services.ReportService, evaluations *services.EvaluationStore, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler: NewBaseHandler(logger),
		reports:     reports,
		evaluations: evaluations,
	}
}

// ListSubmissions returns the report view: filter, sort and scope by form or
// student through query parameters.
// @Router /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	h.LogRequest(c, "Listing submissions")

	query, ok := h.bindQuery(c)
	if !ok {
		return
	}
	subs, err := h.reports.ListSubmissions(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// ListMySubmissions returns the caller's own submissions, newest first
// @Router /submissions/mine [get]
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.evaluations.GetSubmissionsByStudent(student.Key()))
}

// GetSubmission opens one submission and marks it read
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	sub, err := h.reports.ViewSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// @Router /submissions/stats [get]
func (h *SubmissionHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.evaluations.GetStats())
}

// @Router /submissions/{id}/read [post]
func (h *SubmissionHandler) MarkAsRead(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.evaluations.GetSubmission(id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.evaluations.MarkAsRead(c.Request.Context(), id)
	respondSuccess(c, "Submission marked as read", nil)
}

// @Router /submissions/read [post]
func (h *SubmissionHandler) MarkAllAsRead(c *gin.Context) {
	h.evaluations.MarkAllAsRead(c.Request.Context())
	respondSuccess(c, "All submissions marked as read", nil)
}

// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	h.LogRequest(c, "Deleting submission")

	if _, err := h.evaluations.DeleteSubmission(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	respondSuccess(c, "Submission deleted successfully", nil)
}

// @Router /submissions [delete]
func (h *SubmissionHandler) ClearSubmissions(c *gin.Context) {
	h.LogRequest(c, "Clearing all submissions")

	h.evaluations.ClearAll(c.Request.Context())
	respondSuccess(c, "All submissions deleted", nil)
}

// ExportJSON downloads every submission with the current statistics
// @Router /submissions/export [get]
func (h *SubmissionHandler) ExportJSON(c *gin.Context) {
	h.LogRequest(c, "Exporting submissions")

	export, err := h.reports.ExportJSON(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment("json"))
	c.JSON(http.StatusOK, export)
}

// ExportXLSX downloads the report view as a workbook
// @Router /submissions/export.xlsx [get]
func (h *SubmissionHandler) ExportXLSX(c *gin.Context) {
	h.LogRequest(c, "Exporting submissions workbook")

	query, ok := h.bindQuery(c)
	if !ok {
		return
	}
	buf, err := h.reports.ExportXLSX(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment("xlsx"))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *SubmissionHandler) bindQuery(c *gin.Context) (*models.SubmissionQuery, bool) {
	var query models.SubmissionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return nil, false
	}
	return &query, true
}

func attachment(ext string) string {
	return fmt.Sprintf(`attachment; filename="peer-evaluations-%s.%s"`, time.Now().Format("2006-01-02"), ext)
}
