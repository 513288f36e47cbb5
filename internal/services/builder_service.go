package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/builder"
	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

// BuilderSession is a faculty member's form being authored.
type BuilderSession struct {
	ID        string       `json:"id"`
	EditingID string       `json:"editing_id,omitempty"`
	Form      *models.Form `json:"form"`
}

// ===== SERVICE INTERFACE =====

type BuilderService interface {
	// Sessions
	Start(ctx context.Context, author models.Identity) (*BuilderSession, error)
	StartEdit(ctx context.Context, author models.Identity, formID string) (*BuilderSession, error)
	Get(ctx context.Context, author models.Identity, id string) (*BuilderSession, error)
	Discard(ctx context.Context, author models.Identity, id string) error

	// Authoring
	UpdateDetails(ctx context.Context, author models.Identity, id string, patch *models.FormPatch) (*BuilderSession, error)
	ApplyTemplate(ctx context.Context, author models.Identity, id string, req *models.TemplateRequest) (*BuilderSession, error)
	AddSection(ctx context.Context, author models.Identity, id string) (*BuilderSession, error)
	UpdateSection(ctx context.Context, author models.Identity, id, sectionID string, req *validator.SectionRequest) (*BuilderSession, error)
	DeleteSection(ctx context.Context, author models.Identity, id, sectionID string) (*BuilderSession, error)
	AddQuestion(ctx context.Context, author models.Identity, id, sectionID string, req *validator.QuestionRequest) (*BuilderSession, error)
	UpdateQuestion(ctx context.Context, author models.Identity, id, sectionID, questionID string, q *models.Question) (*BuilderSession, error)
	DeleteQuestion(ctx context.Context, author models.Identity, id, sectionID, questionID string) (*BuilderSession, error)

	// Persistence
	SaveDraft(ctx context.Context, author models.Identity, id string) (*models.Form, error)
	Publish(ctx context.Context, author models.Identity, id string) (*models.Form, error)

	// Catalog
	Palette() []builder.PaletteEntry
	Templates() []builder.Template

	// Lifecycle
	Run(ctx context.Context, sweepEvery time.Duration)
}

type builderService struct {
	forms     *FormStore
	sessions  *sessionRegistry[*builder.Builder]
	validator *validator.Validator
	logger    *slog.Logger
}

func NewBuilderService(forms *FormStore, v *validator.Validator, ttl time.Duration, logger *slog.Logger) BuilderService {
	return &builderService{
		forms:     forms,
		sessions:  newSessionRegistry[*builder.Builder]("builder", ttl, logger),
		validator: v,
		logger:    logger,
	}
}

func (s *builderService) Start(ctx context.Context, author models.Identity) (*BuilderSession, error) {
	b := builder.New(s.validator, author.Name)
	id := s.sessions.create(author.Key(), b)
	return &BuilderSession{ID: id, Form: b.Form()}, nil
}

func (s *builderService) StartEdit(ctx context.Context, author models.Identity, formID string) (*BuilderSession, error) {
	form, err := s.forms.GetForm(formID)
	if err != nil {
		return nil, err
	}
	b := builder.Edit(s.validator, author.Name, form)
	id := s.sessions.create(author.Key(), b)
	return &BuilderSession{ID: id, EditingID: b.EditingID(), Form: b.Form()}, nil
}

func (s *builderService) Get(ctx context.Context, author models.Identity, id string) (*BuilderSession, error) {
	return s.step(author, id, func(*builder.Builder) error { return nil })
}

func (s *builderService) Discard(ctx context.Context, author models.Identity, id string) error {
	return s.sessions.remove(id, author.Key())
}

func (s *builderService) UpdateDetails(ctx context.Context, author models.Identity, id string, patch *models.FormPatch) (*BuilderSession, error) {
	return s.step(author, id, func(b *builder.Builder) error { return b.UpdateDetails(patch) })
}

func (s *builderService) ApplyTemplate(ctx context.Context, author models.Identity, id string, req *models.TemplateRequest) (*BuilderSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.step(author, id, func(b *builder.Builder) error { return b.ApplyTemplate(req.Template) })
}

func (s *builderService) AddSection(ctx context.Context, author models.Identity, id string) (*BuilderSession, error) {
	return s.step(author, id, func(b *builder.Builder) error {
		b.AddSection()
		return nil
	})
}

func (s *builderService) UpdateSection(ctx context.Context, author models.Identity, id, sectionID string, req *validator.SectionRequest) (*BuilderSession, error) {
	return s.step(author, id, func(b *builder.Builder) error {
		_, err := b.UpdateSection(sectionID, *req)
		return err
	})
}

func (s *builderService) DeleteSection(ctx context.Context, author models.Identity, id, sectionID string) (*BuilderSession, error) {
	return s.step(author, id, func(b *builder.Builder) error { return b.DeleteSection(sectionID) })
}

func (s *builderService) AddQuestion(ctx context.Context, author models.Identity, id, sectionID string, req *validator.QuestionRequest) (*BuilderSession, error) {
	return s.step(author, id, func(b *builder.Builder) error {
		_, err := b.AddQuestion(sectionID, *req)
		return err
	})
}

func (s *builderService) UpdateQuestion(ctx context.Context, author models.Identity, id, sectionID, questionID string, q *models.Question) (*BuilderSession, error) {
	return s.step(author, id, func(b *builder.Builder) error {
		_, err := b.UpdateQuestion(sectionID, questionID, *q)
		return err
	})
}

func (s *builderService) DeleteQuestion(ctx context.Context, author models.Identity, id, sectionID, questionID string) (*BuilderSession, error) {
	return s.step(author, id, func(b *builder.Builder) error { return b.DeleteQuestion(sectionID, questionID) })
}

func (s *builderService) SaveDraft(ctx context.Context, author models.Identity, id string) (*models.Form, error) {
	var saved *models.Form
	err := s.sessions.with(id, author.Key(), func(b *builder.Builder) error {
		var err error
		saved, err = b.SaveDraft(ctx, s.forms)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Form saved as draft", "form_id", saved.ID, "sections", len(saved.Sections))
	return saved, nil
}

func (s *builderService) Publish(ctx context.Context, author models.Identity, id string) (*models.Form, error) {
	var published *models.Form
	err := s.sessions.with(id, author.Key(), func(b *builder.Builder) error {
		var err error
		published, err = b.Publish(ctx, s.forms)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Form published",
		"form_id", published.ID,
		"sections", len(published.Sections),
		"questions", published.QuestionCount())
	return published, nil
}

func (s *builderService) Palette() []builder.PaletteEntry { return builder.Palette() }

func (s *builderService) Templates() []builder.Template { return builder.Templates() }

func (s *builderService) Run(ctx context.Context, sweepEvery time.Duration) {
	s.sessions.run(ctx, sweepEvery)
}

func (s *builderService) step(author models.Identity, id string, op func(*builder.Builder) error) (*BuilderSession, error) {
	var out *BuilderSession
	err := s.sessions.with(id, author.Key(), func(b *builder.Builder) error {
		opErr := op(b)
		out = &BuilderSession{ID: id, EditingID: b.EditingID(), Form: b.Form()}
		return opErr
	})
	return out, err
}
