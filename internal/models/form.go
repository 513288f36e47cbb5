package models

import (
	"strings"
	"time"
)

type FormStatus string

const (
	FormStatusDraft     FormStatus = "draft"
	FormStatusPublished FormStatus = "published"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type TeamConfiguration struct {
	MinTeamSize         int    `json:"min_team_size" validate:"min=2,max=20"`
	MaxTeamSize         int    `json:"max_team_size" validate:"gtefield=MinTeamSize,max=20"`
	AllowSelfEvaluation bool   `json:"allow_self_evaluation"`
	Instructions        string `json:"instructions" validate:"max=2000"`
}

type Section struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"max=200"`
	Description string     `json:"description" validate:"max=1000"`
	Questions   []Question `json:"questions" validate:"dive"`
}

func (s Section) Clone() Section {
	out := s
	if s.Questions != nil {
		out.Questions = make([]Question, len(s.Questions))
		for i, q := range s.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	return out
}

// Form is an instructor-authored evaluation template.
type Form struct {
	ID            string     `json:"id"`
	Title         string     `json:"title" validate:"max=200"`
	Description   string     `json:"description" validate:"max=2000"`
	Course        string     `json:"course" validate:"max=100"`
	DueDate       string     `json:"due_date" validate:"omitempty,due_date"`
	CreatedBy     string     `json:"created_by" validate:"max=100"`
	EstimatedTime string     `json:"estimated_time,omitempty" validate:"max=50"`
	Priority      string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status        FormStatus `json:"status" validate:"omitempty,oneof=draft published"`
	IsAnonymous   bool       `json:"is_anonymous"`
	AllowDraft    bool       `json:"allow_draft"`

	TeamConfiguration *TeamConfiguration `json:"team_configuration,omitempty" validate:"omitempty"`
	Sections          []Section          `json:"sections" validate:"dive"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := *f
	if f.TeamConfiguration != nil {
		tc := *f.TeamConfiguration
		out.TeamConfiguration = &tc
	}
	if f.Sections != nil {
		out.Sections = make([]Section, len(f.Sections))
		for i, s := range f.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	if f.PublishedAt != nil {
		t := *f.PublishedAt
		out.PublishedAt = &t
	}
	return &out
}

func (f *Form) IsPublished() bool {
	return f.Status == FormStatusPublished
}

func (f *Form) QuestionCount() int {
	total := 0
	for _, s := range f.Sections {
		total += len(s.Questions)
	}
	return total
}

// Question looks a question up by id across all sections.
func (f *Form) Question(id string) (Question, bool) {
	for _, s := range f.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Due parses DueDate in loc. See ParseDueDate.
func (f *Form) Due(loc *time.Location) (time.Time, bool) {
	return ParseDueDate(f.DueDate, loc)
}

// ParseDueDate accepts either a calendar date or an RFC 3339 timestamp.
// Calendar dates are interpreted in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, bool) {
	due := strings.TrimSpace(s)
	if due == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, due, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, due); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormPatch is a shallow update: every non-nil field replaces the stored one,
// nil fields leave the stored value untouched.
type FormPatch struct {
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	Course            *string            `json:"course"`
	DueDate           *string            `json:"due_date"`
	CreatedBy         *string            `json:"created_by"`
	EstimatedTime     *string            `json:"estimated_time"`
	Priority          *string            `json:"priority"`
	Status            *FormStatus        `json:"status"`
	IsAnonymous       *bool              `json:"is_anonymous"`
	AllowDraft        *bool              `json:"allow_draft"`
	TeamConfiguration *TeamConfiguration `json:"team_configuration"`
	Sections          *[]Section         `json:"sections"`
	PublishedAt       *time.Time         `json:"published_at"`
}

func (p *FormPatch) Apply(f *Form) {
	if p == nil {
		return
	}
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Course != nil {
		f.Course = *p.Course
	}
	if p.DueDate != nil {
		f.DueDate = *p.DueDate
	}
	if p.CreatedBy != nil {
		f.CreatedBy = *p.CreatedBy
	}
	if p.EstimatedTime != nil {
		f.EstimatedTime = *p.EstimatedTime
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.IsAnonymous != nil {
		f.IsAnonymous = *p.IsAnonymous
	}
	if p.AllowDraft != nil {
		f.AllowDraft = *p.AllowDraft
	}
	if p.TeamConfiguration != nil {
		tc := *p.TeamConfiguration
		f.TeamConfiguration = &tc
	}
	if p.Sections != nil {
		sections := make([]Section, len(*p.Sections))
		for i, s := range *p.Sections {
			sections[i] = s.Clone()
		}
		f.Sections = sections
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		f.PublishedAt = &t
	}
}

// PatchFromForm builds a patch carrying every content field of f. Identity and
// timestamps (id, created_at, updated_at) are never part of a patch.
func PatchFromForm(f *Form) *FormPatch {
	src := f.Clone()
	p := &FormPatch{
		Title:         &src.Title,
		Description:   &src.Description,
		Course:        &src.Course,
		DueDate:       &src.DueDate,
		CreatedBy:     &src.CreatedBy,
		EstimatedTime: &src.EstimatedTime,
		Priority:      &src.Priority,
		Status:        &src.Status,
		IsAnonymous:   &src.IsAnonymous,
		AllowDraft:    &src.AllowDraft,
		Sections:      &src.Sections,
		PublishedAt:   src.PublishedAt,
	}
	if src.TeamConfiguration != nil {
		p.TeamConfiguration = src.TeamConfiguration
	}
	return p
}
