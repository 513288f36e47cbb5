package validator

import "github.com/SAP-F-2025/evalmate-service/internal/models"

// SectionRequest adds or edits a builder section
type SectionRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// QuestionRequest adds a palette question to a builder section. Nil fields
// keep the palette defaults.
type QuestionRequest struct {
	Type        models.QuestionType `json:"type" validate:"required,question_type"`
	Prompt      *string             `json:"question" validate:"omitempty,max=500"`
	Description *string             `json:"description" validate:"omitempty,max=1000"`
	Required    *bool               `json:"required"`
}

// IdentityRequest is the caller identity taken from request headers
type IdentityRequest struct {
	ID   string `json:"id" validate:"max=255"`
	Name string `json:"name" validate:"max=100"`
	Role string `json:"role" validate:"required,user_role"`
}
