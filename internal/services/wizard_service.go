package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
	"github.com/SAP-F-2025/evalmate-service/internal/wizard"
)

// WizardSession is what clients see of a running evaluation wizard.
type WizardSession struct {
	ID string `json:"id"`
	wizard.Snapshot
}

// ===== SERVICE INTERFACE =====

type WizardService interface {
	Start(ctx context.Context, student models.Identity, req *models.WizardSessionRequest) (*WizardSession, error)
	Get(ctx context.Context, student models.Identity, id string) (*WizardSession, error)
	Discard(ctx context.Context, student models.Identity, id string) error

	// Team setup
	SetTeamID(ctx context.Context, student models.Identity, id, teamID string) (*WizardSession, error)
	SetTeammate(ctx context.Context, student models.Identity, id string, slot int, name string) (*WizardSession, error)
	AddTeammate(ctx context.Context, student models.Identity, id string) (*WizardSession, error)
	RemoveTeammate(ctx context.Context, student models.Identity, id string, slot int) (*WizardSession, error)
	Proceed(ctx context.Context, student models.Identity, id string) (*WizardSession, error)

	// Evaluation
	SetResponse(ctx context.Context, student models.Identity, id string, req *models.ResponseRequest) (*WizardSession, error)
	NextSection(ctx context.Context, student models.Identity, id string) (*WizardSession, error)
	NextTeammate(ctx context.Context, student models.Identity, id string) (*WizardSession, error)
	PreviousSection(ctx context.Context, student models.Identity, id string) (*WizardSession, error)
	GoTo(ctx context.Context, student models.Identity, id string, req *models.NavigateRequest) (*WizardSession, error)
	Submit(ctx context.Context, student models.Identity, id string) (*WizardSession, error)

	// Lifecycle
	ActiveSessions() int
	Run(ctx context.Context, sweepEvery time.Duration)
}

type wizardService struct {
	forms       *FormStore
	evaluations *EvaluationStore
	sessions    *sessionRegistry[*wizard.Wizard]
	validator   *validator.Validator
	logger      *slog.Logger
}

func NewWizardService(forms *FormStore, evaluations *EvaluationStore, v *validator.Validator, ttl time.Duration, logger *slog.Logger) WizardService {
	return &wizardService{
		forms:       forms,
		evaluations: evaluations,
		sessions:    newSessionRegistry[*wizard.Wizard]("wizard", ttl, logger),
		validator:   v,
		logger:      logger,
	}
}

// Start opens a wizard over a published form. The submission is recorded
// under the caller's name, or the requested name for callers without one.
func (s *wizardService) Start(ctx context.Context, student models.Identity, req *models.WizardSessionRequest) (*WizardSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	form, err := s.forms.GetForm(req.FormID)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished() {
		return nil, fmt.Errorf("%w: %s", ErrFormNotPublished, form.ID)
	}

	name := student.Key()
	if name == "" {
		name = strings.TrimSpace(req.StudentName)
	}
	w, err := wizard.New(form, name)
	if err != nil {
		return nil, err
	}

	id := s.sessions.create(student.Key(), w)
	s.logger.Info("Wizard session started", "session_id", id, "form_id", form.ID)
	return &WizardSession{ID: id, Snapshot: w.Snapshot()}, nil
}

func (s *wizardService) Get(ctx context.Context, student models.Identity, id string) (*WizardSession, error) {
	return s.step(student, id, func(*wizard.Wizard) error { return nil })
}

func (s *wizardService) Discard(ctx context.Context, student models.Identity, id string) error {
	return s.sessions.remove(id, student.Key())
}

func (s *wizardService) SetTeamID(ctx context.Context, student models.Identity, id, teamID string) (*WizardSession, error) {
	return s.step(student, id, func(w *wizard.Wizard) error { return w.SetTeamID(teamID) })
}

func (s *wizardService) SetTeammate(ctx context.Context, student models.Identity, id string, slot int, name string) (*WizardSession, error) {
	return s.step(student, id, func(w *wizard.Wizard) error { return w.SetTeammate(slot, name) })
}

func (s *wizardService) AddTeammate(ctx context.Context, student models.Identity, id string) (*WizardSession, error) {
	return s.step(student, id, (*wizard.Wizard).AddTeammateSlot)
}

func (s *wizardService) RemoveTeammate(ctx context.Context, student models.Identity, id string, slot int) (*WizardSession, error) {
	return s.step(student, id, func(w *wizard.Wizard) error { return w.RemoveTeammateSlot(slot) })
}

func (s *wizardService) Proceed(ctx context.Context, student models.Identity, id string) (*WizardSession, error) {
	return s.step(student, id, (*wizard.Wizard).Proceed)
}

func (s *wizardService) SetResponse(ctx context.Context, student models.Identity, id string, req *models.ResponseRequest) (*WizardSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.step(student, id, func(w *wizard.Wizard) error { return w.SetResponse(req.QuestionID, req.Value) })
}

func (s *wizardService) NextSection(ctx context.Context, student models.Identity, id string) (*WizardSession, error) {
	return s.step(student, id, (*wizard.Wizard).NextSection)
}

func (s *wizardService) NextTeammate(ctx context.Context, student models.Identity, id string) (*WizardSession, error) {
	return s.step(student, id, (*wizard.Wizard).NextTeammate)
}

func (s *wizardService) PreviousSection(ctx context.Context, student models.Identity, id string) (*WizardSession, error) {
	return s.step(student, id, (*wizard.Wizard).PreviousSection)
}

func (s *wizardService) GoTo(ctx context.Context, student models.Identity, id string, req *models.NavigateRequest) (*WizardSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.step(student, id, func(w *wizard.Wizard) error { return w.GoTo(req.Teammate, req.Section) })
}

// Submit hands the finished evaluation to the evaluation store. The session
// stays readable in the submitted state until discarded or expired.
func (s *wizardService) Submit(ctx context.Context, student models.Identity, id string) (*WizardSession, error) {
	session, err := s.step(student, id, func(w *wizard.Wizard) error {
		_, err := w.Submit(ctx, s.evaluations)
		return err
	})
	if err == nil && session.Submission != nil {
		s.logger.Info("Wizard submitted", "session_id", id, "submission_id", session.Submission.ID)
	}
	return session, err
}

func (s *wizardService) ActiveSessions() int { return s.sessions.len() }

func (s *wizardService) Run(ctx context.Context, sweepEvery time.Duration) {
	s.sessions.run(ctx, sweepEvery)
}

// step applies op to the session and returns the resulting snapshot. The
// snapshot is returned alongside validation errors so clients can render them.
func (s *wizardService) step(student models.Identity, id string, op func(*wizard.Wizard) error) (*WizardSession, error) {
	var out *WizardSession
	err := s.sessions.with(id, student.Key(), func(w *wizard.Wizard) error {
		opErr := op(w)
		out = &WizardSession{ID: id, Snapshot: w.Snapshot()}
		return opErr
	})
	return out, err
}
