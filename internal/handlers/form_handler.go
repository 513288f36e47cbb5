package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/services"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

type FormHandler struct {
	BaseHandler
	forms     *services.FormStore
	validator *validator.Validator
}

func NewFormHandler(forms *services.FormStore, validator *validator.Validator, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger),
		forms:       forms,
		validator:   validator,
	}
}

// ListForms returns every form to faculty and the published forms, in their
// student view, to students.
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	if identity.IsFaculty() {
		if c.Query("status") == string(models.FormStatusPublished) {
			c.JSON(http.StatusOK, h.forms.GetPublishedForms())
			return
		}
		c.JSON(http.StatusOK, h.forms.GetAllForms())
		return
	}

	views := []*models.StudentFormView{}
	for _, form := range h.forms.GetPublishedForms() {
		views = append(views, h.forms.ConvertForStudentDisplay(form))
	}
	c.JSON(http.StatusOK, views)
}

// GetForm returns one form. Students only see published forms.
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	form, err := h.forms.GetForm(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if !identity.IsFaculty() && !form.IsPublished() {
		h.handleServiceError(c, services.ErrFormNotFound)
		return
	}

	c.JSON(http.StatusOK, form)
}

// GetFormStats returns form counts by status
// @Router /forms/stats [get]
func (h *FormHandler) GetFormStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.forms.GetStats())
}

// CreateForm stores a complete form document as given. A form created as
// published must meet the publish rules.
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	h.LogRequest(c, "Creating form")

	var form models.Form
	if !h.bindJSON(c, &form) {
		return
	}
	if errs := h.validate(&form); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}
	if form.IsPublished() && form.PublishedAt == nil {
		now := time.Now()
		form.PublishedAt = &now
	}

	created := h.forms.AddForm(c.Request.Context(), &form)
	c.JSON(http.StatusCreated, created)
}

// UpdateForm applies a partial update. The patched form must still pass the
// form rules, and the publish rules when it ends up published.
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	h.LogRequest(c, "Updating form")

	var patch models.FormPatch
	if !h.bindJSON(c, &patch) {
		return
	}

	id := c.Param("id")
	current, err := h.forms.GetForm(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	patch.Apply(current)
	if errs := h.validate(current); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}
	if current.IsPublished() && current.PublishedAt == nil {
		now := time.Now()
		patch.PublishedAt = &now
	}

	updated, err := h.forms.UpdateForm(c.Request.Context(), id, &patch)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// PublishForm publishes a stored form once it meets the publish rules
// @Router /forms/{id}/publish [post]
func (h *FormHandler) PublishForm(c *gin.Context) {
	h.LogRequest(c, "Publishing form")

	id := c.Param("id")
	current, err := h.forms.GetForm(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if errs := h.validator.ValidatePublish(current); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	published, err := h.forms.PublishForm(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, published)
}

// DeleteForm removes a form. Submissions made against it are kept.
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	h.LogRequest(c, "Deleting form")

	if _, err := h.forms.DeleteForm(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	respondSuccess(c, "Form deleted successfully", nil)
}

// ClearForms removes every form
// @Router /forms [delete]
func (h *FormHandler) ClearForms(c *gin.Context) {
	h.LogRequest(c, "Clearing all forms")

	h.forms.ClearAll(c.Request.Context())
	respondSuccess(c, "All forms deleted", nil)
}

// validate applies the publish rules to published forms and the form rules
// to everything else.
func (h *FormHandler) validate(form *models.Form) validator.ValidationErrors {
	if form.IsPublished() {
		return h.validator.ValidatePublish(form)
	}
	return h.validator.ValidateForm(form)
}
