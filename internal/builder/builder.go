// Package builder implements faculty form authoring: a working copy of a form
// edited section by section and question by question, then saved as a draft
// or published through a form store.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

var (
	ErrSectionNotFound     = errors.New("section not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrUnknownTemplate     = errors.New("unknown form template")
	ErrUnknownQuestionType = errors.New("unknown question type")
)

const (
	DefaultTitle       = "Peer Evaluation Form"
	DefaultDescription = "Form your team and evaluate each teammate based on the criteria below."
	DefaultCreatedBy   = "Faculty User"
	newSectionTitle    = "New Section"
	newSectionSummary  = "Section description"
	newQuestionPrompt  = "New Question"
	defaultMinTeamSize = 2
	defaultMaxTeamSize = 5
)

// FormStore is the subset of the form store the builder writes through.
type FormStore interface {
	AddForm(ctx context.Context, form *models.Form) *models.Form
	UpdateForm(ctx context.Context, id string, patch *models.FormPatch) (*models.Form, error)
	SaveDraft(ctx context.Context, id string, form *models.Form) *models.Form
}

// Builder holds one form being authored. It is not safe for concurrent use.
type Builder struct {
	form      *models.Form
	editingID string
	author    string
	validator *validator.Validator
	now       func() time.Time
}

// New starts a builder on an empty form with the default settings.
func New(v *validator.Validator, author string) *Builder {
	b := &Builder{validator: v, author: author, now: time.Now}
	b.reset()
	return b
}

// Edit starts a builder over an existing form. Saving or publishing updates
// that form in place.
func Edit(v *validator.Validator, author string, form *models.Form) *Builder {
	b := &Builder{validator: v, author: author, now: time.Now, form: form.Clone(), editingID: form.ID}
	if b.form.Sections == nil {
		b.form.Sections = []models.Section{}
	}
	return b
}

func (b *Builder) reset() {
	b.editingID = ""
	b.form = &models.Form{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		IsAnonymous: true,
		AllowDraft:  true,
		TeamConfiguration: &models.TeamConfiguration{
			MinTeamSize:  defaultMinTeamSize,
			MaxTeamSize:  defaultMaxTeamSize,
			Instructions: DefaultDescription,
		},
		Sections: []models.Section{},
	}
}

// Form returns a copy of the working form.
func (b *Builder) Form() *models.Form { return b.form.Clone() }

// EditingID is the id of the stored form this builder writes to, empty until
// the first save of a new form.
func (b *Builder) EditingID() string { return b.editingID }

// UpdateDetails applies patch to the form-level fields. Status, publication
// time and sections are managed by the builder itself and are ignored.
func (b *Builder) UpdateDetails(patch *models.FormPatch) error {
	if patch == nil {
		return nil
	}
	p := *patch
	p.Status, p.PublishedAt, p.Sections = nil, nil, nil

	candidate := b.form.Clone()
	p.Apply(candidate)
	if errs := b.validator.ValidateStruct(candidate); len(errs) > 0 {
		return errs
	}
	b.form = candidate
	return nil
}

// ApplyTemplate replaces title, description and sections with those of the
// template, giving every section and question a fresh id.
func (b *Builder) ApplyTemplate(id string) error {
	t, ok := LookupTemplate(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	b.form.Title = t.Name
	b.form.Description = t.Description
	b.form.Sections = t.instantiate(b.now())
	return nil
}

// ===== SECTIONS =====

func (b *Builder) AddSection() models.Section {
	sec := models.Section{
		ID:          utils.NewID("section", b.now()),
		Title:       newSectionTitle,
		Description: newSectionSummary,
		Questions:   []models.Question{},
	}
	b.form.Sections = append(b.form.Sections, sec)
	return sec.Clone()
}

func (b *Builder) UpdateSection(id string, req validator.SectionRequest) (models.Section, error) {
	i := b.sectionIndex(id)
	if i < 0 {
		return models.Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	if errs := b.validator.ValidateStruct(req); len(errs) > 0 {
		return models.Section{}, errs
	}
	b.form.Sections[i].Title = req.Title
	b.form.Sections[i].Description = req.Description
	return b.form.Sections[i].Clone(), nil
}

func (b *Builder) DeleteSection(id string) error {
	i := b.sectionIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	b.form.Sections = append(b.form.Sections[:i:i], b.form.Sections[i+1:]...)
	return nil
}

// ===== QUESTIONS =====

// AddQuestion appends a palette question of the requested kind to a section.
func (b *Builder) AddQuestion(sectionID string, req validator.QuestionRequest) (models.Question, error) {
	i := b.sectionIndex(sectionID)
	if i < 0 {
		return models.Question{}, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	if errs := b.validator.ValidateStruct(req); len(errs) > 0 {
		return models.Question{}, errs
	}
	cfg, err := DefaultConfig(req.Type)
	if err != nil {
		return models.Question{}, err
	}

	q := models.Question{
		ID:       utils.NewID("question", b.now()),
		Prompt:   newQuestionPrompt,
		Required: true,
		Config:   cfg,
	}
	if req.Prompt != nil {
		q.Prompt = *req.Prompt
	}
	if req.Description != nil {
		q.Description = *req.Description
	}
	if req.Required != nil {
		q.Required = *req.Required
	}

	b.form.Sections[i].Questions = append(b.form.Sections[i].Questions, q)
	return q.Clone(), nil
}

// UpdateQuestion replaces a question's content, kind included, keeping its id.
func (b *Builder) UpdateQuestion(sectionID, questionID string, q models.Question) (models.Question, error) {
	si, qi, err := b.questionIndex(sectionID, questionID)
	if err != nil {
		return models.Question{}, err
	}
	q = q.Clone()
	q.ID = questionID
	if errs := b.validator.ValidateStruct(q); len(errs) > 0 {
		return models.Question{}, errs
	}
	b.form.Sections[si].Questions[qi] = q
	return q.Clone(), nil
}

func (b *Builder) DeleteQuestion(sectionID, questionID string) error {
	si, qi, err := b.questionIndex(sectionID, questionID)
	if err != nil {
		return err
	}
	qs := b.form.Sections[si].Questions
	b.form.Sections[si].Questions = append(qs[:qi:qi], qs[qi+1:]...)
	return nil
}

// ===== SAVE / PUBLISH =====

// EstimatedTime is the completion estimate shown to students for a form with
// the given number of sections.
func EstimatedTime(sections int) string {
	return fmt.Sprintf("%d-%d minutes", max(5, sections*5), max(10, sections*8))
}

// SaveDraft validates the draft rules and stores the form as a draft. The
// first save of a new form switches the builder to editing the stored copy.
func (b *Builder) SaveDraft(ctx context.Context, store FormStore) (*models.Form, error) {
	if errs := b.validator.ValidateDraft(b.form); len(errs) > 0 {
		return nil, errs
	}

	payload := b.payload(models.PriorityMedium)
	payload.Status = models.FormStatusDraft

	var saved *models.Form
	if b.editingID != "" {
		updated, err := store.UpdateForm(ctx, b.editingID, models.PatchFromForm(payload))
		if err != nil {
			return nil, err
		}
		saved = updated
	} else {
		saved = store.SaveDraft(ctx, "", payload)
	}

	b.editingID = saved.ID
	b.form = saved.Clone()
	return saved, nil
}

// Publish validates the publish rules and stores the form as published. A
// builder that was not editing an existing form starts over afterwards.
func (b *Builder) Publish(ctx context.Context, store FormStore) (*models.Form, error) {
	if errs := b.validator.ValidatePublish(b.form); len(errs) > 0 {
		return nil, errs
	}

	now := b.now()
	payload := b.payload(models.PriorityHigh)
	payload.Status = models.FormStatusPublished
	payload.PublishedAt = &now

	if b.editingID != "" {
		published, err := store.UpdateForm(ctx, b.editingID, models.PatchFromForm(payload))
		if err != nil {
			return nil, err
		}
		b.form = published.Clone()
		return published, nil
	}

	published := store.AddForm(ctx, payload)
	b.reset()
	return published, nil
}

func (b *Builder) payload(priority string) *models.Form {
	payload := b.form.Clone()
	payload.CreatedBy = b.author
	if strings.TrimSpace(payload.CreatedBy) == "" {
		payload.CreatedBy = DefaultCreatedBy
	}
	payload.EstimatedTime = EstimatedTime(len(payload.Sections))
	payload.Priority = priority
	return payload
}

func (b *Builder) sectionIndex(id string) int {
	for i, s := range b.form.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (b *Builder) questionIndex(sectionID, questionID string) (int, int, error) {
	si := b.sectionIndex(sectionID)
	if si < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	for qi, q := range b.form.Sections[si].Questions {
		if q.ID == questionID {
			return si, qi, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
}
