package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
)

type WizardHandler struct {
	BaseHandler
	service services.WizardService
}

func NewWizardHandler(service services.WizardService, logger utils.Logger) *WizardHandler {
	return &WizardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// StartSession opens an evaluation of a published form
// @Router /wizard/sessions [post]
func (h *WizardHandler) StartSession(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Starting evaluation")

	var req models.WizardSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.service.Start(c.Request.Context(), student, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// @Router /wizard/sessions/{id} [get]
func (h *WizardHandler) GetSession(c *gin.Context) {
	h.step(c, h.service.Get)
}

// @Router /wizard/sessions/{id} [delete]
func (h *WizardHandler) DiscardSession(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	if err := h.service.Discard(c.Request.Context(), student, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== TEAM SETUP =====

// @Router /wizard/sessions/{id}/team [put]
func (h *WizardHandler) SetTeamID(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	var req models.TeamIDRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.SetTeamID(c.Request.Context(), student, c.Param("id"), req.TeamID)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /wizard/sessions/{id}/teammates [post]
func (h *WizardHandler) AddTeammate(c *gin.Context) {
	h.step(c, h.service.AddTeammate)
}

// @Router /wizard/sessions/{id}/teammates/{slot} [put]
func (h *WizardHandler) SetTeammate(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	slot, ok := h.slotParam(c)
	if !ok {
		return
	}
	var req models.TeammateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.SetTeammate(c.Request.Context(), student, c.Param("id"), slot, req.Name)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /wizard/sessions/{id}/teammates/{slot} [delete]
func (h *WizardHandler) RemoveTeammate(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	slot, ok := h.slotParam(c)
	if !ok {
		return
	}
	session, err := h.service.RemoveTeammate(c.Request.Context(), student, c.Param("id"), slot)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /wizard/sessions/{id}/proceed [post]
func (h *WizardHandler) Proceed(c *gin.Context) {
	h.step(c, h.service.Proceed)
}

// ===== EVALUATION =====

// @Router /wizard/sessions/{id}/responses [put]
func (h *WizardHandler) SetResponse(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	var req models.ResponseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.SetResponse(c.Request.Context(), student, c.Param("id"), &req)
	respondStep(&h.BaseHandler, c, session, err)
}

// @Router /wizard/sessions/{id}/next-section [post]
func (h *WizardHandler) NextSection(c *gin.Context) {
	h.step(c, h.service.NextSection)
}

// @Router /wizard/sessions/{id}/next-teammate [post]
func (h *WizardHandler) NextTeammate(c *gin.Context) {
	h.step(c, h.service.NextTeammate)
}

// @Router /wizard/sessions/{id}/previous-section [post]
func (h *WizardHandler) PreviousSection(c *gin.Context) {
	h.step(c, h.service.PreviousSection)
}

// @Router /wizard/sessions/{id}/cursor [put]
func (h *WizardHandler) GoTo(c *gin.Context) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	var req models.NavigateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.service.GoTo(c.Request.Context(), student, c.Param("id"), &req)
	respondStep(&h.BaseHandler, c, session, err)
}

// Submit validates every answer and records the submission
// @Router /wizard/sessions/{id}/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	h.LogRequest(c, "Submitting evaluation")
	h.step(c, h.service.Submit)
}

type wizardStep func(ctx context.Context, student models.Identity, id string) (*services.WizardSession, error)

func (h *WizardHandler) step(c *gin.Context, op wizardStep) {
	student, ok := h.identity(c)
	if !ok {
		return
	}
	session, err := op(c.Request.Context(), student, c.Param("id"))
	respondStep(&h.BaseHandler, c, session, err)
}

func (h *WizardHandler) slotParam(c *gin.Context) (int, bool) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil || slot < 0 {
		respondError(c, http.StatusBadRequest, "Invalid teammate slot", c.Param("slot"))
		return 0, false
	}
	return slot, true
}
