package builder

import (
	"fmt"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

// PaletteEntry describes one question kind offered by the builder.
type PaletteEntry struct {
	Type          models.QuestionType   `json:"type"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	DefaultConfig models.QuestionConfig `json:"default_config"`
}

// Palette lists the question kinds in display order with fresh default
// configurations.
func Palette() []PaletteEntry {
	entries := []PaletteEntry{
		{Type: models.QuestionRating, Name: "Rating Scale", Description: "Numerical rating (1-5, 1-10, etc.)"},
		{Type: models.QuestionTextarea, Name: "Text Response", Description: "Long-form text input"},
		{Type: models.QuestionMultipleChoice, Name: "Multiple Choice", Description: "Single selection from options"},
		{Type: models.QuestionCheckbox, Name: "Checkboxes", Description: "Multiple selections allowed"},
		{Type: models.QuestionSlider, Name: "Slider", Description: "Continuous scale input"},
	}
	for i := range entries {
		entries[i].DefaultConfig, _ = DefaultConfig(entries[i].Type)
	}
	return entries
}

// DefaultConfig returns the configuration a newly added question of kind t
// starts with.
func DefaultConfig(t models.QuestionType) (models.QuestionConfig, error) {
	switch t {
	case models.QuestionRating:
		return &models.RatingConfig{
			Scale:  5,
			Labels: []string{"Poor", "Below Average", "Average", "Good", "Excellent"},
		}, nil
	case models.QuestionTextarea:
		return &models.TextareaConfig{MaxLength: 500, Placeholder: "Enter your response..."}, nil
	case models.QuestionMultipleChoice:
		return &models.MultipleChoiceConfig{Options: []string{"Option 1", "Option 2", "Option 3"}}, nil
	case models.QuestionCheckbox:
		return &models.CheckboxConfig{Options: []string{"Option 1", "Option 2", "Option 3"}}, nil
	case models.QuestionSlider:
		return &models.SliderConfig{Min: 0, Max: 100, Step: 5, Labels: []string{"Low", "High"}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, t)
	}
}
