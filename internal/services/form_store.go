package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
)

// Student view defaults for forms authored without the corresponding fields.
const (
	DefaultEstimatedTime = "20-30 minutes"
	DefaultPriority      = models.PriorityMedium
	DefaultMinTeamSize   = 2
	DefaultMaxTeamSize   = 5
	DefaultInstructions  = "Form your team and evaluate teammates."
	studentFormType      = "master"
)

// FormStore owns the evaluation form collection. Every mutation is persisted
// under the store lock; listeners are notified after the lock is released and
// only when the write reached the record store.
type FormStore struct {
	mu      sync.RWMutex
	forms   []*models.Form
	records repositories.RecordStore
	emitter *events.Emitter
	logger  *slog.Logger
	now     func() time.Time
}

func NewFormStore(ctx context.Context, records repositories.RecordStore, emitter *events.Emitter, logger *slog.Logger) *FormStore {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NewEmitter(logger)
	}
	s := &FormStore{
		records: records,
		emitter: emitter,
		logger:  logger.With("store", "forms"),
		now:     time.Now,
	}
	loadCollection(ctx, records, repositories.FormsKey, &s.forms, s.logger)
	s.logger.Info("Form store loaded", "forms", len(s.forms))
	return s
}

// ===== READS =====

func (s *FormStore) GetAllForms() []*models.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneForms(s.forms, nil)
}

func (s *FormStore) GetPublishedForms() []*models.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneForms(s.forms, (*models.Form).IsPublished)
}

func (s *FormStore) GetForm(id string) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.forms[i].Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
}

func (s *FormStore) GetStats() models.FormStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.FormStats{Total: len(s.forms), FlexibleForms: len(s.forms)}
	for _, f := range s.forms {
		switch f.Status {
		case models.FormStatusPublished:
			stats.Published++
		case models.FormStatusDraft:
			stats.Drafts++
		}
	}
	return stats
}

// ===== MUTATIONS =====

// AddForm stores a copy of form under a fresh id. The status is kept as
// supplied.
func (s *FormStore) AddForm(ctx context.Context, form *models.Form) *models.Form {
	s.mu.Lock()
	created := s.insertLocked(form)
	ok := s.persistLocked(ctx)
	out := created.Clone()
	s.mu.Unlock()

	if ok {
		s.emit(events.FormCreated, events.FormEventData{FormID: out.ID, Form: out.Clone()})
	}
	return out
}

// UpdateForm applies patch to the stored form and refreshes updated_at.
func (s *FormStore) UpdateForm(ctx context.Context, id string, patch *models.FormPatch) (*models.Form, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	updated := s.forms[i].Clone()
	patch.Apply(updated)
	updated.ID = id
	updated.UpdatedAt = s.now()
	s.forms[i] = updated
	ok := s.persistLocked(ctx)
	out := updated.Clone()
	s.mu.Unlock()

	if ok {
		s.emit(events.FormUpdated, events.FormEventData{FormID: id, Form: out.Clone()})
	}
	return out, nil
}

func (s *FormStore) DeleteForm(ctx context.Context, id string) (*models.Form, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	removed := s.forms[i]
	s.forms = append(s.forms[:i:i], s.forms[i+1:]...)
	ok := s.persistLocked(ctx)
	s.mu.Unlock()

	if ok {
		s.emit(events.FormDeleted, events.FormEventData{FormID: id})
	}
	return removed, nil
}

// PublishForm marks the form published as of now. Publish prerequisites are
// the builder's concern; the store accepts any existing form.
func (s *FormStore) PublishForm(ctx context.Context, id string) (*models.Form, error) {
	status := models.FormStatusPublished
	now := s.now()
	return s.UpdateForm(ctx, id, &models.FormPatch{Status: &status, PublishedAt: &now})
}

// SaveDraft replaces the content of an existing form and marks it draft, or
// adds form as a new draft when id is empty or unknown.
func (s *FormStore) SaveDraft(ctx context.Context, id string, form *models.Form) *models.Form {
	draft := form.Clone()
	if draft == nil {
		draft = &models.Form{}
	}
	draft.Status = models.FormStatusDraft

	if id != "" {
		if updated, err := s.UpdateForm(ctx, id, models.PatchFromForm(draft)); err == nil {
			return updated
		}
	}
	return s.AddForm(ctx, draft)
}

// ClearAll drops every form and removes the stored record.
func (s *FormStore) ClearAll(ctx context.Context) {
	s.mu.Lock()
	count := len(s.forms)
	s.forms = nil
	ok := deleteCollection(ctx, s.records, repositories.FormsKey, s.logger)
	s.mu.Unlock()

	if ok {
		s.emit(events.FormsCleared, events.BulkEventData{Count: count})
	}
}

// Subscribe registers l for form events and returns its disposer.
func (s *FormStore) Subscribe(l events.Listener) func() {
	return s.emitter.Subscribe(l)
}

// ===== PROJECTION =====

// ConvertForStudentDisplay projects a form into what students see in their
// form list, filling the documented defaults.
func (s *FormStore) ConvertForStudentDisplay(form *models.Form) *models.StudentFormView {
	return ConvertForStudentDisplay(form)
}

func ConvertForStudentDisplay(form *models.Form) *models.StudentFormView {
	view := &models.StudentFormView{
		ID:             form.ID,
		Type:           studentFormType,
		Title:          form.Title,
		Description:    form.Description,
		Course:         form.Course,
		CreatedBy:      form.CreatedBy,
		DueDate:        form.DueDate,
		EstimatedTime:  form.EstimatedTime,
		Priority:       form.Priority,
		IsAnonymous:    form.IsAnonymous,
		IsFlexible:     true,
		Sections:       make([]string, 0, len(form.Sections)),
		TotalQuestions: form.QuestionCount(),
		MinTeamSize:    DefaultMinTeamSize,
		MaxTeamSize:    DefaultMaxTeamSize,
		Instructions:   DefaultInstructions,
	}
	if view.EstimatedTime == "" {
		view.EstimatedTime = DefaultEstimatedTime
	}
	if view.Priority == "" {
		view.Priority = DefaultPriority
	}
	for _, sec := range form.Sections {
		view.Sections = append(view.Sections, sec.Title)
	}
	if tc := form.TeamConfiguration; tc != nil {
		if tc.MinTeamSize > 0 {
			view.MinTeamSize = tc.MinTeamSize
		}
		if tc.MaxTeamSize > 0 {
			view.MaxTeamSize = tc.MaxTeamSize
		}
		if tc.Instructions != "" {
			view.Instructions = tc.Instructions
		}
	}
	return view
}

// ===== HELPERS =====

func (s *FormStore) insertLocked(form *models.Form) *models.Form {
	created := form.Clone()
	if created == nil {
		created = &models.Form{}
	}
	now := s.now()
	created.ID = utils.NewID("form", now)
	created.CreatedAt = now
	created.UpdatedAt = now
	s.forms = append(s.forms, created)
	return created
}

func (s *FormStore) persistLocked(ctx context.Context) bool {
	forms := s.forms
	if forms == nil {
		forms = []*models.Form{}
	}
	return saveCollection(ctx, s.records, repositories.FormsKey, forms, s.logger)
}

func (s *FormStore) indexOf(id string) int {
	for i, f := range s.forms {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *FormStore) emit(t events.EventType, data interface{}) {
	s.emitter.Emit(events.NewEvent(t, s.now(), data))
}

func cloneForms(forms []*models.Form, keep func(*models.Form) bool) []*models.Form {
	out := make([]*models.Form, 0, len(forms))
	for _, f := range forms {
		if keep == nil || keep(f) {
			out = append(out, f.Clone())
		}
	}
	return out
}
