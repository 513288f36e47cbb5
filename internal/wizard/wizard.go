// Package wizard drives one student's peer evaluation from team setup,
// through every teammate and section, to submission.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

type State string

const (
	StateTeamSetup  State = "team_setup"
	StateEvaluating State = "evaluating"
	StateSubmitted  State = "submitted"
)

var (
	ErrInvalidState     = errors.New("operation not allowed in the current wizard state")
	ErrSlotOutOfRange   = errors.New("teammate slot out of range")
	ErrTeamSlotLimit    = errors.New("teammate slot limit reached")
	ErrCursorOutOfRange = errors.New("teammate or section out of range")
	ErrUnknownQuestion  = errors.New("question not found in form")
	ErrNoForm           = errors.New("wizard requires a form")
)

const (
	DefaultMinTeamSize = 2
	DefaultMaxTeamSize = 6
	minTeamIDLength    = 3
	minNameLength      = 2
	ruleRequired       = "required"
	ruleTeam           = "team_setup"
	ruleResponse       = "response"
)

// Submitter receives the finished evaluation.
type Submitter interface {
	SubmitEvaluation(ctx context.Context, req *models.SubmissionRequest) *models.Submission
}

// Cursor addresses one section of one teammate's evaluation.
type Cursor struct {
	Teammate int `json:"teammate"`
	Section  int `json:"section"`
}

// Wizard is a single evaluation in progress. It is not safe for concurrent
// use; callers serialize access.
type Wizard struct {
	form        *models.Form
	studentName string
	minTeam     int
	maxTeam     int

	state     State
	teamID    string
	slots     []string
	teammates []string
	cursor    Cursor
	responses []models.Responses
	errs      validator.ValidationErrors

	startedAt  time.Time
	submission *models.Submission
	now        func() time.Time
}

// New starts a wizard for form on behalf of studentName. Team size limits
// come from the form's team configuration, defaulting to 2..6.
func New(form *models.Form, studentName string) (*Wizard, error) {
	if form == nil {
		return nil, ErrNoForm
	}
	w := &Wizard{
		form:        form.Clone(),
		studentName: studentName,
		minTeam:     DefaultMinTeamSize,
		maxTeam:     DefaultMaxTeamSize,
		state:       StateTeamSetup,
		slots:       []string{""},
		now:         time.Now,
	}
	if tc := form.TeamConfiguration; tc != nil {
		if tc.MinTeamSize > 0 {
			w.minTeam = tc.MinTeamSize
		}
		if tc.MaxTeamSize > 0 {
			w.maxTeam = tc.MaxTeamSize
		}
	}
	return w, nil
}

func (w *Wizard) State() State { return w.state }

func (w *Wizard) FormID() string { return w.form.ID }

// Errors returns the validation errors of the last rejected step.
func (w *Wizard) Errors() validator.ValidationErrors {
	return append(validator.ValidationErrors(nil), w.errs...)
}

// Submission is the stored submission once the wizard has finished.
func (w *Wizard) Submission() *models.Submission { return w.submission.Clone() }

// ===== TEAM SETUP =====

// SetTeamID records the team identifier, trimmed and upper-cased.
func (w *Wizard) SetTeamID(id string) error {
	if w.state != StateTeamSetup {
		return w.wrongState("set team id")
	}
	w.teamID = strings.ToUpper(strings.TrimSpace(id))
	w.clearError("team_id")
	return nil
}

func (w *Wizard) SetTeammate(slot int, name string) error {
	if w.state != StateTeamSetup {
		return w.wrongState("set teammate")
	}
	if slot < 0 || slot >= len(w.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	w.slots[slot] = strings.TrimSpace(name)
	w.clearError(slotField(slot))
	return nil
}

// AddTeammateSlot appends an empty name field, up to the maximum team size.
func (w *Wizard) AddTeammateSlot() error {
	if w.state != StateTeamSetup {
		return w.wrongState("add teammate")
	}
	if len(w.slots) >= w.maxTeam {
		return fmt.Errorf("%w: at most %d teammates", ErrTeamSlotLimit, w.maxTeam)
	}
	w.slots = append(w.slots, "")
	return nil
}

// RemoveTeammateSlot drops a name field. The last remaining field stays.
func (w *Wizard) RemoveTeammateSlot(slot int) error {
	if w.state != StateTeamSetup {
		return w.wrongState("remove teammate")
	}
	if slot < 0 || slot >= len(w.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	if len(w.slots) <= 1 {
		return fmt.Errorf("%w: at least one teammate field is required", ErrTeamSlotLimit)
	}
	w.slots = append(w.slots[:slot:slot], w.slots[slot+1:]...)
	w.errs = nil
	return nil
}

// Proceed checks the team setup and, when it passes, starts the evaluation
// of the entered teammates at their first section.
func (w *Wizard) Proceed() error {
	if w.state != StateTeamSetup {
		return w.wrongState("proceed")
	}
	if errs := w.validateTeam(); len(errs) > 0 {
		w.errs = errs
		return w.Errors()
	}

	w.teammates = w.namedTeammates()
	w.responses = make([]models.Responses, len(w.teammates))
	for i := range w.responses {
		w.responses[i] = models.Responses{}
	}
	w.cursor = Cursor{}
	w.state = StateEvaluating
	w.startedAt = w.now()
	w.errs = nil
	return nil
}

func (w *Wizard) validateTeam() validator.ValidationErrors {
	var errs validator.ValidationErrors

	switch {
	case w.teamID == "":
		errs = append(errs, validator.ValidationError{Field: "team_id", Message: "Team identifier is required", Rule: ruleRequired})
	case utf8.RuneCountInString(w.teamID) < minTeamIDLength:
		errs = append(errs, validator.ValidationError{
			Field:   "team_id",
			Message: fmt.Sprintf("Team identifier must be at least %d characters", minTeamIDLength),
			Value:   w.teamID,
			Rule:    ruleTeam,
		})
	}

	named := w.namedTeammates()
	if len(named) < w.minTeam {
		errs = append(errs, validator.ValidationError{
			Field:   "teammates",
			Message: fmt.Sprintf("You must enter at least %d teammates", w.minTeam),
			Value:   len(named),
			Rule:    ruleTeam,
		})
	}

	counts := make(map[string]int, len(named))
	for _, name := range named {
		counts[strings.ToLower(name)]++
	}
	for slot, name := range w.slots {
		if name == "" {
			continue
		}
		var msg string
		switch {
		case counts[strings.ToLower(name)] > 1:
			msg = "Duplicate teammate names are not allowed"
		case utf8.RuneCountInString(name) < minNameLength:
			msg = fmt.Sprintf("Name must be at least %d characters", minNameLength)
		default:
			continue
		}
		errs = append(errs, validator.ValidationError{Field: slotField(slot), Message: msg, Value: name, Rule: ruleTeam})
	}
	return errs
}

func (w *Wizard) namedTeammates() []string {
	out := make([]string, 0, len(w.slots))
	for _, name := range w.slots {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ===== EVALUATION =====

// SetResponse stores the current teammate's answer to a question. Answers are
// checked against the question kind; an empty value clears the answer.
func (w *Wizard) SetResponse(questionID string, r models.Response) error {
	if w.state != StateEvaluating {
		return w.wrongState("answer")
	}
	q, ok := w.form.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	field := responseField(w.cursor.Teammate, questionID)

	if r.Kind() == models.ResponseNone {
		delete(w.responses[w.cursor.Teammate], questionID)
		return nil
	}
	if !r.IsMissing() {
		if err := q.Config.ValidateResponse(r); err != nil {
			return validator.ValidationErrors{{Field: field, Message: err.Error(), Value: r.String(), Rule: ruleResponse}}
		}
	}
	w.responses[w.cursor.Teammate][questionID] = r.Clone()
	w.clearError(field)
	return nil
}

// NextSection advances within the current teammate once the section's
// required questions are answered. From the last section it moves on to the
// next teammate.
func (w *Wizard) NextSection() error {
	if w.state != StateEvaluating {
		return w.wrongState("next section")
	}
	if w.cursor.Section >= w.lastSection() {
		return w.NextTeammate()
	}
	if err := w.checkCurrentSection(); err != nil {
		return err
	}
	w.cursor.Section++
	return nil
}

// NextTeammate gates on the current section like NextSection, then moves to
// the first section of the next teammate, staying on the last teammate.
func (w *Wizard) NextTeammate() error {
	if w.state != StateEvaluating {
		return w.wrongState("next teammate")
	}
	if err := w.checkCurrentSection(); err != nil {
		return err
	}
	w.cursor.Teammate = min(w.cursor.Teammate+1, len(w.teammates)-1)
	w.cursor.Section = 0
	return nil
}

// PreviousSection steps back one section, crossing into the previous
// teammate's last section from section 0. It never validates.
func (w *Wizard) PreviousSection() error {
	if w.state != StateEvaluating {
		return w.wrongState("previous section")
	}
	switch {
	case w.cursor.Section > 0:
		w.cursor.Section--
	case w.cursor.Teammate > 0:
		w.cursor.Teammate--
		w.cursor.Section = w.lastSection()
	}
	w.errs = nil
	return nil
}

// GoTo jumps to any teammate and section without validation.
func (w *Wizard) GoTo(teammate, section int) error {
	if w.state != StateEvaluating {
		return w.wrongState("navigate")
	}
	if teammate < 0 || teammate >= len(w.teammates) || section < 0 || section > w.lastSection() {
		return fmt.Errorf("%w: teammate %d, section %d", ErrCursorOutOfRange, teammate, section)
	}
	w.cursor = Cursor{Teammate: teammate, Section: section}
	w.errs = nil
	return nil
}

// Submit validates every teammate and section. On failure the cursor moves to
// the first section with a missing answer; on success the evaluation is
// handed to sub and the wizard is finished.
func (w *Wizard) Submit(ctx context.Context, sub Submitter) (*models.Submission, error) {
	if w.state != StateEvaluating {
		return nil, w.wrongState("submit")
	}

	var all validator.ValidationErrors
	first := Cursor{Teammate: -1}
	for t := range w.teammates {
		for s := range w.form.Sections {
			errs := w.checkSection(t, s)
			if len(errs) > 0 && first.Teammate < 0 {
				first = Cursor{Teammate: t, Section: s}
			}
			all = append(all, errs...)
		}
	}
	if len(all) > 0 {
		w.cursor = first
		w.errs = all
		return nil, w.Errors()
	}

	submission := sub.SubmitEvaluation(ctx, w.request())
	w.submission = submission.Clone()
	w.state = StateSubmitted
	w.errs = nil
	return submission, nil
}

func (w *Wizard) request() *models.SubmissionRequest {
	req := &models.SubmissionRequest{
		FormID:         w.form.ID,
		FormTitle:      w.form.Title,
		Course:         w.form.Course,
		StudentName:    w.studentName,
		TeamID:         w.teamID,
		Teammates:      append([]string(nil), w.teammates...),
		Evaluations:    make([]models.TeammateEvaluation, len(w.teammates)),
		SubmissionTime: elapsedMinutes(w.now().Sub(w.startedAt)),
	}
	for i, name := range w.teammates {
		req.Evaluations[i] = models.TeammateEvaluation{
			TeammateID:   i,
			TeammateName: name,
			Responses:    w.responses[i].Clone(),
		}
	}
	return req
}

func (w *Wizard) checkCurrentSection() error {
	if errs := w.checkSection(w.cursor.Teammate, w.cursor.Section); len(errs) > 0 {
		w.errs = errs
		return w.Errors()
	}
	w.errs = nil
	return nil
}

func (w *Wizard) checkSection(teammate, section int) validator.ValidationErrors {
	if section < 0 || section >= len(w.form.Sections) {
		return nil
	}
	var errs validator.ValidationErrors
	for _, q := range w.form.Sections[section].Questions {
		if !q.Required {
			continue
		}
		if w.responses[teammate][q.ID].IsMissing() {
			errs = append(errs, validator.ValidationError{
				Field:   responseField(teammate, q.ID),
				Message: "This field is required",
				Rule:    ruleRequired,
			})
		}
	}
	return errs
}

func (w *Wizard) lastSection() int {
	return max(len(w.form.Sections)-1, 0)
}

func (w *Wizard) clearError(field string) {
	var kept validator.ValidationErrors
	for _, e := range w.errs {
		if e.Field != field {
			kept = append(kept, e)
		}
	}
	w.errs = kept
}

func (w *Wizard) wrongState(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, w.state)
}

func slotField(slot int) string {
	return fmt.Sprintf("teammates[%d]", slot)
}

func responseField(teammate int, questionID string) string {
	return fmt.Sprintf("evaluations[%d].%s", teammate, questionID)
}

func elapsedMinutes(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
