package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

type QuestionType string

const (
	QuestionRating         QuestionType = "rating"
	QuestionTextarea       QuestionType = "textarea"
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionSlider         QuestionType = "slider"
)

// QuestionTypes lists every supported question kind in palette order.
var QuestionTypes = []QuestionType{
	QuestionRating,
	QuestionTextarea,
	QuestionMultipleChoice,
	QuestionCheckbox,
	QuestionSlider,
}

var ErrInvalidResponse = errors.New("invalid response")

// QuestionConfig is the kind-specific half of a Question. Implementations are
// RatingConfig, TextareaConfig, MultipleChoiceConfig, CheckboxConfig and
// SliderConfig, always held by pointer.
type QuestionConfig interface {
	Type() QuestionType
	// ValidateResponse reports whether r is an acceptable answer for this kind.
	// Missing answers are not checked here; see Response.IsMissing.
	ValidateResponse(r Response) error
	cloneConfig() QuestionConfig
}

type Question struct {
	ID          string         `json:"id" validate:"required"`
	Prompt      string         `json:"question" validate:"max=500"`
	Description string         `json:"description" validate:"max=1000"`
	Required    bool           `json:"required"`
	Config      QuestionConfig `json:"config" validate:"required"`
}

func (q Question) Type() QuestionType {
	if q.Config == nil {
		return ""
	}
	return q.Config.Type()
}

func (q Question) Clone() Question {
	out := q
	if q.Config != nil {
		out.Config = q.Config.cloneConfig()
	}
	return out
}

// ===== QUESTION KINDS =====

type RatingConfig struct {
	Scale  int      `json:"scale" validate:"min=2,max=10"`
	Labels []string `json:"labels,omitempty" validate:"omitempty,dive,max=50"`
}

func (c *RatingConfig) Type() QuestionType { return QuestionRating }

func (c *RatingConfig) ValidateResponse(r Response) error {
	v, ok := r.Number()
	if !ok {
		return fmt.Errorf("%w: rating expects a number", ErrInvalidResponse)
	}
	if v != math.Trunc(v) || v < 1 || v > float64(c.Scale) {
		return fmt.Errorf("%w: rating must be a whole number between 1 and %d", ErrInvalidResponse, c.Scale)
	}
	return nil
}

func (c *RatingConfig) cloneConfig() QuestionConfig {
	return &RatingConfig{Scale: c.Scale, Labels: cloneStrings(c.Labels)}
}

type TextareaConfig struct {
	MaxLength   int    `json:"max_length" validate:"min=1,max=5000"`
	Placeholder string `json:"placeholder,omitempty" validate:"max=200"`
}

func (c *TextareaConfig) Type() QuestionType { return QuestionTextarea }

func (c *TextareaConfig) ValidateResponse(r Response) error {
	text, ok := r.Text()
	if !ok {
		return fmt.Errorf("%w: text response expected", ErrInvalidResponse)
	}
	if c.MaxLength > 0 && utf8.RuneCountInString(text) > c.MaxLength {
		return fmt.Errorf("%w: response exceeds %d characters", ErrInvalidResponse, c.MaxLength)
	}
	return nil
}

func (c *TextareaConfig) cloneConfig() QuestionConfig {
	out := *c
	return &out
}

type MultipleChoiceConfig struct {
	Options []string `json:"options" validate:"min=2,max=20,unique,dive,required,max=200"`
}

func (c *MultipleChoiceConfig) Type() QuestionType { return QuestionMultipleChoice }

func (c *MultipleChoiceConfig) ValidateResponse(r Response) error {
	text, ok := r.Text()
	if !ok {
		return fmt.Errorf("%w: a single option is expected", ErrInvalidResponse)
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !containsString(c.Options, text) {
		return fmt.Errorf("%w: %q is not one of the options", ErrInvalidResponse, text)
	}
	return nil
}

func (c *MultipleChoiceConfig) cloneConfig() QuestionConfig {
	return &MultipleChoiceConfig{Options: cloneStrings(c.Options)}
}

type CheckboxConfig struct {
	Options []string `json:"options" validate:"min=2,max=20,unique,dive,required,max=200"`
}

func (c *CheckboxConfig) Type() QuestionType { return QuestionCheckbox }

func (c *CheckboxConfig) ValidateResponse(r Response) error {
	choices, ok := r.Choices()
	if !ok {
		return fmt.Errorf("%w: a list of options is expected", ErrInvalidResponse)
	}
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		if !containsString(c.Options, choice) {
			return fmt.Errorf("%w: %q is not one of the options", ErrInvalidResponse, choice)
		}
		if _, dup := seen[choice]; dup {
			return fmt.Errorf("%w: %q selected twice", ErrInvalidResponse, choice)
		}
		seen[choice] = struct{}{}
	}
	return nil
}

func (c *CheckboxConfig) cloneConfig() QuestionConfig {
	return &CheckboxConfig{Options: cloneStrings(c.Options)}
}

type SliderConfig struct {
	Min    int      `json:"min"`
	Max    int      `json:"max" validate:"gtfield=Min"`
	Step   int      `json:"step" validate:"min=1"`
	Labels []string `json:"labels,omitempty" validate:"omitempty,len=2,dive,max=50"`
}

func (c *SliderConfig) Type() QuestionType { return QuestionSlider }

func (c *SliderConfig) ValidateResponse(r Response) error {
	v, ok := r.Number()
	if !ok {
		return fmt.Errorf("%w: slider expects a number", ErrInvalidResponse)
	}
	if v < float64(c.Min) || v > float64(c.Max) {
		return fmt.Errorf("%w: value must be between %d and %d", ErrInvalidResponse, c.Min, c.Max)
	}
	return nil
}

func (c *SliderConfig) cloneConfig() QuestionConfig {
	return &SliderConfig{Min: c.Min, Max: c.Max, Step: c.Step, Labels: cloneStrings(c.Labels)}
}

// NewQuestionConfig returns an empty configuration for the given kind.
func NewQuestionConfig(t QuestionType) (QuestionConfig, error) {
	switch t {
	case QuestionRating:
		return &RatingConfig{}, nil
	case QuestionTextarea:
		return &TextareaConfig{}, nil
	case QuestionMultipleChoice:
		return &MultipleChoiceConfig{}, nil
	case QuestionCheckbox:
		return &CheckboxConfig{}, nil
	case QuestionSlider:
		return &SliderConfig{}, nil
	default:
		return nil, fmt.Errorf("unknown question type %q", t)
	}
}

// ===== JSON =====

// questionHeader carries the fields shared by every kind. On the wire the
// kind-specific fields sit next to these in one flat object.
type questionHeader struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"question"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	if q.Config == nil {
		return nil, fmt.Errorf("question %q has no type configuration", q.ID)
	}

	fields := make(map[string]json.RawMessage)
	for _, part := range []interface{}{
		q.Config,
		questionHeader{
			ID:          q.ID,
			Type:        q.Config.Type(),
			Prompt:      q.Prompt,
			Description: q.Description,
			Required:    q.Required,
		},
	} {
		data, err := json.Marshal(part)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
	}

	return json.Marshal(fields)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var head questionHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	cfg, err := NewQuestionConfig(head.Type)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("question %q: %w", head.ID, err)
	}

	*q = Question{
		ID:          head.ID,
		Prompt:      head.Prompt,
		Description: head.Description,
		Required:    head.Required,
		Config:      cfg,
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
