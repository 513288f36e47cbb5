package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
)

type BuilderHandler struct {
	BaseHandler
	service services.BuilderService
}

func NewBuilderHandler(service services.BuilderService, logger utils.Logger) *BuilderHandler {
	return &BuilderHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== CATALOG =====

// GetPalette lists the question kinds with their default configuration
// @Router /builder/palette [get]
func (h *BuilderHandler) GetPalette(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Palette())
}

// GetTemplates lists the predefined form templates
// @Router /builder/templates [get]
func (h *BuilderHandler) GetTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Templates())
}

// ===== SESSIONS =====

// StartSession opens a builder on a new form, or on an existing one when
// form_id is given.
// @Router /builder/sessions [post]
func (h *BuilderHandler) StartSession(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Starting builder session")

	var req struct {
		FormID string `json:"form_id"`
	}
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	var (
		session *services.BuilderSession
		err     error
	)
	if req.FormID != "" {
		session, err = h.service.StartEdit(c.Request.Context(), author, req.FormID)
	} else {
		session, err = h.service.Start(c.Request.Context(), author)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// @Router /builder/sessions/{id} [get]
func (h *BuilderHandler) GetSession(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	session, err := h.service.Get(c.Request.Context(), author, c.Param("id"))
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /builder/sessions/{id} [delete]
func (h *BuilderHandler) DiscardSession(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	if err := h.service.Discard(c.Request.Context(), author, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== AUTHORING =====

// @Router /builder/sessions/{id}/details [patch]
func (h *BuilderHandler) UpdateDetails(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	var patch models.FormPatch
	if !h.bindJSON(c, &patch) {
		return
	}
	session, err := h.service.UpdateDetails(c.Request.Context(), author, c.Param("id"), &patch)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /builder/sessions/{id}/template [post]
func (h *BuilderHandler) ApplyTemplate(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	var req models.TemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.ApplyTemplate(c.Request.Context(), author, c.Param("id"), &req)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /builder/sessions/{id}/sections [post]
func (h *BuilderHandler) AddSection(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	session, err := h.service.AddSection(c.Request.Context(), author, c.Param("id"))
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /builder/sessions/{id}/sections/{section_id} [put]
func (h *BuilderHandler) UpdateSection(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	var req services.SectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.UpdateSection(c.Request.Context(), author, c.Param("id"), c.Param("section_id"), &req)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /builder/sessions/{id}/sections/{section_id} [delete]
func (h *BuilderHandler) DeleteSection(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	session, err := h.service.DeleteSection(c.Request.Context(), author, c.Param("id"), c.Param("section_id"))
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /builder/sessions/{id}/sections/{section_id}/questions [post]
func (h *BuilderHandler) AddQuestion(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	var req services.QuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.AddQuestion(c.Request.Context(), author, c.Param("id"), c.Param("section_id"), &req)
	respondStep(&h.BaseHandler, c, session, err)
}

// UpdateQuestion replaces a question. The body is a full question document.
// @Router /builder/sessions/{id}/sections/{section_id}/questions/{question_id} [put]
func (h *BuilderHandler) UpdateQuestion(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	var q models.Question
	if !h.bindJSON(c, &q) {
		return
	}
	session, err := h.service.UpdateQuestion(c.Request.Context(), author, c.Param("id"), c.Param("section_id"), c.Param("question_id"), &q)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /builder/sessions/{id}/sections/{section_id}/questions/{question_id} [delete]
func (h *BuilderHandler) DeleteQuestion(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	session, err := h.service.DeleteQuestion(c.Request.Context(), author, c.Param("id"), c.Param("section_id"), c.Param("question_id"))
	respondStep(&h.BaseHandler, c, session, err)
}

// ===== PERSISTENCE =====

// @Router /builder/sessions/{id}/draft [post]
func (h *BuilderHandler) SaveDraft(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Saving form draft")

	form, err := h.service.SaveDraft(c.Request.Context(), author, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// @Router /builder/sessions/{id}/publish [post]
func (h *BuilderHandler) Publish(c *gin.Context) {
	author, ok := h.identity(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Publishing form from builder")

	form, err := h.service.Publish(c.Request.Context(), author, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, form)
}
