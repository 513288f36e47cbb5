package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

// Rule names reported in ValidationError.Rule for checks that are not
// expressible as struct tags.
const (
	RuleBusiness      = "business_logic"
	RuleDraftRequired = "draft_required"
	RulePublish       = "publish_required"
)

// registerBusinessRules registers custom business rule validators
func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("due_date", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseDueDate(fl.Field().String(), time.Local)
		return ok
	})

	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		t := models.QuestionType(fl.Field().String())
		for _, known := range models.QuestionTypes {
			if t == known {
				return true
			}
		}
		return false
	})

	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
}

// ValidateForm checks a form document: struct tags plus the consistency
// rules that span fields (unique ids, rating labels matching the scale).
func (v *Validator) ValidateForm(form *models.Form) ValidationErrors {
	errs := v.ValidateStruct(form)

	sectionIDs := make(map[string]bool, len(form.Sections))
	questionIDs := make(map[string]bool)
	for si, section := range form.Sections {
		if section.ID != "" && sectionIDs[section.ID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("sections[%d].id", si),
				Message: "must be unique within the form",
				Value:   section.ID,
				Rule:    RuleBusiness,
			})
		}
		sectionIDs[section.ID] = true

		for qi, q := range section.Questions {
			field := fmt.Sprintf("sections[%d].questions[%d]", si, qi)
			if q.ID != "" && questionIDs[q.ID] {
				errs = append(errs, ValidationError{
					Field:   field + ".id",
					Message: "must be unique within the form",
					Value:   q.ID,
					Rule:    RuleBusiness,
				})
			}
			questionIDs[q.ID] = true

			if rating, ok := q.Config.(*models.RatingConfig); ok && len(rating.Labels) > 0 && len(rating.Labels) != rating.Scale {
				errs = append(errs, ValidationError{
					Field:   field + ".labels",
					Message: fmt.Sprintf("must have one label per scale point (%d)", rating.Scale),
					Value:   len(rating.Labels),
					Rule:    RuleBusiness,
				})
			}
			if slider, ok := q.Config.(*models.SliderConfig); ok && slider.Step > slider.Max-slider.Min {
				errs = append(errs, ValidationError{
					Field:   field + ".step",
					Message: "must not exceed the slider range",
					Value:   slider.Step,
					Rule:    RuleBusiness,
				})
			}
		}
	}
	return errs
}

// ValidateDraft checks what a form needs before it can be saved as a draft.
func (v *Validator) ValidateDraft(form *models.Form) ValidationErrors {
	errs := v.ValidateForm(form)

	if strings.TrimSpace(form.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "is required", Rule: RuleDraftRequired})
	}
	if strings.TrimSpace(form.Course) == "" {
		errs = append(errs, ValidationError{Field: "course", Message: "is required", Rule: RuleDraftRequired})
	}
	if len(form.Sections) == 0 {
		errs = append(errs, ValidationError{Field: "sections", Message: "at least one section is required", Rule: RuleDraftRequired})
	}
	return errs
}

// ValidatePublish checks the draft rules plus a due date and at least one
// question in every section.
func (v *Validator) ValidatePublish(form *models.Form) ValidationErrors {
	errs := v.ValidateDraft(form)

	if strings.TrimSpace(form.DueDate) == "" {
		errs = append(errs, ValidationError{Field: "due_date", Message: "is required to publish", Rule: RulePublish})
	}
	for i, section := range form.Sections {
		if len(section.Questions) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("sections[%d].questions", i),
				Message: "every section needs at least one question to publish",
				Value:   section.Title,
				Rule:    RulePublish,
			})
		}
	}
	return errs
}
