package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

type recordingSubmitter struct {
	requests []*models.SubmissionRequest
}

func (r *recordingSubmitter) SubmitEvaluation(ctx context.Context, req *models.SubmissionRequest) *models.Submission {
	r.requests = append(r.requests, req)
	return &models.Submission{
		ID:          "submission-1",
		FormID:      req.FormID,
		TeamID:      req.TeamID,
		Teammates:   req.Teammates,
		Evaluations: req.Evaluations,
		Status:      models.SubmissionSubmitted,
		Metadata:    models.SubmissionMetadata{TotalTeammates: len(req.Teammates)},
	}
}

// twoSectionForm has a required rating in section A and an optional
// textarea in section B, for teams of 2 to 3.
func twoSectionForm() *models.Form {
	return &models.Form{
		ID:     "form-1",
		Title:  "Sprint Review",
		Course: "CS 401",
		Status: models.FormStatusPublished,
		TeamConfiguration: &models.TeamConfiguration{
			MinTeamSize: 2,
			MaxTeamSize: 3,
		},
		Sections: []models.Section{
			{ID: "a", Title: "A", Questions: []models.Question{
				{ID: "rating", Prompt: "Overall", Required: true, Config: &models.RatingConfig{Scale: 5}},
			}},
			{ID: "b", Title: "B", Questions: []models.Question{
				{ID: "comments", Prompt: "Comments", Config: &models.TextareaConfig{MaxLength: 20}},
			}},
		},
	}
}

func newTestWizard(t *testing.T, form *models.Form) *Wizard {
	t.Helper()
	w, err := New(form, "Jordan")
	require.NoError(t, err)
	w.now = func() time.Time { return time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC) }
	return w
}

func setupTeam(t *testing.T, w *Wizard, teamID string, names ...string) {
	t.Helper()
	require.NoError(t, w.SetTeamID(teamID))
	for i, name := range names {
		if i > 0 {
			require.NoError(t, w.AddTeammateSlot())
		}
		require.NoError(t, w.SetTeammate(i, name))
	}
}

func TestNew(t *testing.T) {
	_, err := New(nil, "x")
	assert.ErrorIs(t, err, ErrNoForm)

	form := twoSectionForm()
	form.TeamConfiguration = nil
	w := newTestWizard(t, form)
	assert.Equal(t, StateTeamSetup, w.State())
	snap := w.Snapshot()
	assert.Equal(t, DefaultMinTeamSize, snap.MinTeamSize)
	assert.Equal(t, DefaultMaxTeamSize, snap.MaxTeamSize)
	assert.Equal(t, []string{""}, snap.Slots)
}

func TestTeamSetup_Slots(t *testing.T) {
	w := newTestWizard(t, twoSectionForm())

	require.NoError(t, w.SetTeamID("  team1 "))
	assert.Equal(t, "TEAM1", w.Snapshot().TeamID)

	assert.ErrorIs(t, w.RemoveTeammateSlot(0), ErrTeamSlotLimit)
	require.NoError(t, w.AddTeammateSlot())
	require.NoError(t, w.AddTeammateSlot())
	assert.ErrorIs(t, w.AddTeammateSlot(), ErrTeamSlotLimit)

	require.NoError(t, w.SetTeammate(1, "  Bob "))
	assert.Equal(t, []string{"", "Bob", ""}, w.Snapshot().Slots)
	assert.ErrorIs(t, w.SetTeammate(3, "Eve"), ErrSlotOutOfRange)

	require.NoError(t, w.RemoveTeammateSlot(0))
	assert.Equal(t, []string{"Bob", ""}, w.Snapshot().Slots)
}

func TestProceed_Guards(t *testing.T) {
	tests := []struct {
		name   string
		teamID string
		names  []string
		fields []string
	}{
		{name: "missing team id", teamID: "", names: []string{"Bob", "Carol"}, fields: []string{"team_id"}},
		{name: "short team id", teamID: "T1", names: []string{"Bob", "Carol"}, fields: []string{"team_id"}},
		{name: "too few teammates", teamID: "TEAM1", names: []string{"Bob", ""}, fields: []string{"teammates"}},
		{name: "case-insensitive duplicate", teamID: "TEAM1", names: []string{"Alice", "alice"}, fields: []string{"teammates[0]", "teammates[1]"}},
		{name: "short name", teamID: "TEAM1", names: []string{"Bob", "C"}, fields: []string{"teammates[1]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWizard(t, twoSectionForm())
			setupTeam(t, w, tt.teamID, tt.names...)

			err := w.Proceed()
			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.ElementsMatch(t, tt.fields, errs.Fields())
			assert.Equal(t, StateTeamSetup, w.State())
			assert.Equal(t, errs, w.Errors())
		})
	}
}

func TestProceed_DuplicateNameMessage(t *testing.T) {
	w := newTestWizard(t, twoSectionForm())
	setupTeam(t, w, "TEAM1", "Alice", "alice")

	err := w.Proceed()
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.NotEmpty(t, errs)
	assert.Equal(t, "Duplicate teammate names are not allowed", errs[0].Message)

	require.NoError(t, w.SetTeammate(1, "Alicia"))
	assert.Len(t, w.Errors(), 1)
}

func TestProceed_ReturnedErrorsAreDetached(t *testing.T) {
	w := newTestWizard(t, twoSectionForm())
	setupTeam(t, w, "T1", "Bob", "C")

	var errs validator.ValidationErrors
	require.ErrorAs(t, w.Proceed(), &errs)
	before := append(validator.ValidationErrors(nil), errs...)

	// fixing fields drops their stored errors without touching the returned ones
	require.NoError(t, w.SetTeamID("TEAM1"))
	require.NoError(t, w.SetTeammate(1, "Carol"))
	assert.Empty(t, w.Errors())
	assert.Equal(t, before, errs)
}

func TestEvaluation_Navigation(t *testing.T) {
	w := newTestWizard(t, twoSectionForm())
	setupTeam(t, w, "TEAM1", "Bob", "", "Carol")
	require.NoError(t, w.Proceed())
	assert.Equal(t, []string{"Bob", "Carol"}, w.Snapshot().Teammates)
	assert.Equal(t, Cursor{}, w.Snapshot().Cursor)

	assert.ErrorIs(t, w.SetTeamID("X"), ErrInvalidState)

	err := w.NextSection()
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"evaluations[0].rating"}, errs.Fields())
	assert.Equal(t, Cursor{}, w.Snapshot().Cursor)

	require.NoError(t, w.SetResponse("rating", models.NumberResponse(4)))
	assert.Empty(t, w.Errors())
	require.NoError(t, w.NextSection())
	assert.Equal(t, Cursor{Teammate: 0, Section: 1}, w.Snapshot().Cursor)

	require.NoError(t, w.NextSection())
	assert.Equal(t, Cursor{Teammate: 1, Section: 0}, w.Snapshot().Cursor)

	require.NoError(t, w.PreviousSection())
	assert.Equal(t, Cursor{Teammate: 0, Section: 1}, w.Snapshot().Cursor)
	require.NoError(t, w.PreviousSection())
	require.NoError(t, w.PreviousSection())
	assert.Equal(t, Cursor{Teammate: 0, Section: 0}, w.Snapshot().Cursor)

	require.NoError(t, w.GoTo(1, 1))
	assert.Equal(t, Cursor{Teammate: 1, Section: 1}, w.Snapshot().Cursor)
	assert.ErrorIs(t, w.GoTo(2, 0), ErrCursorOutOfRange)

	require.NoError(t, w.NextSection())
	assert.Equal(t, Cursor{Teammate: 1, Section: 0}, w.Snapshot().Cursor)

	responses := w.Snapshot().Responses
	require.Len(t, responses, 2)
	assert.Equal(t, models.NumberResponse(4), responses[0]["rating"])
	assert.Empty(t, responses[1])
}

func TestEvaluation_SetResponse(t *testing.T) {
	w := newTestWizard(t, twoSectionForm())
	setupTeam(t, w, "TEAM1", "Bob", "Carol")
	require.NoError(t, w.Proceed())

	var errs validator.ValidationErrors
	require.ErrorAs(t, w.SetResponse("rating", models.NumberResponse(6)), &errs)
	assert.Equal(t, "evaluations[0].rating", errs[0].Field)
	require.ErrorAs(t, w.SetResponse("comments", models.TextResponse("this comment is far too long")), &errs)
	assert.ErrorIs(t, w.SetResponse("nope", models.NumberResponse(1)), ErrUnknownQuestion)

	require.NoError(t, w.SetResponse("rating", models.NumberResponse(3)))
	require.NoError(t, w.SetResponse("rating", models.Response{}))
	assert.NotContains(t, w.Snapshot().Responses[0], "rating")

	require.NoError(t, w.SetResponse("comments", models.TextResponse("   ")))
	assert.Equal(t, 0, w.Snapshot().Progress)
}

func TestSubmit_RepositionsToFirstError(t *testing.T) {
	w := newTestWizard(t, twoSectionForm())
	setupTeam(t, w, "TEAM1", "Bob", "Carol")
	require.NoError(t, w.Proceed())
	require.NoError(t, w.SetResponse("rating", models.NumberResponse(5)))
	require.NoError(t, w.GoTo(1, 1))

	sub := &recordingSubmitter{}
	_, err := w.Submit(context.Background(), sub)
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"evaluations[1].rating"}, errs.Fields())
	assert.Equal(t, Cursor{Teammate: 1, Section: 0}, w.Snapshot().Cursor)
	assert.Equal(t, StateEvaluating, w.State())
	assert.Empty(t, sub.requests)
}

func TestSubmit_OptionalSectionMayStayBlank(t *testing.T) {
	w := newTestWizard(t, twoSectionForm())
	setupTeam(t, w, "team1", "Bob", "Carol")
	require.NoError(t, w.Proceed())

	require.NoError(t, w.SetResponse("rating", models.NumberResponse(4)))
	require.NoError(t, w.NextTeammate())
	require.NoError(t, w.SetResponse("rating", models.NumberResponse(5)))
	assert.Equal(t, 100, w.Snapshot().Progress)

	sub := &recordingSubmitter{}
	submission, err := w.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, w.State())
	assert.Len(t, submission.Evaluations, 2)
	assert.Equal(t, 2, submission.Metadata.TotalTeammates)

	require.Len(t, sub.requests, 1)
	req := sub.requests[0]
	assert.Equal(t, "form-1", req.FormID)
	assert.Equal(t, "TEAM1", req.TeamID)
	assert.Equal(t, "Jordan", req.StudentName)
	assert.Equal(t, []string{"Bob", "Carol"}, req.Teammates)
	assert.Equal(t, "1 minute", req.SubmissionTime)
	assert.Equal(t, 1, req.Evaluations[1].TeammateID)
	assert.Equal(t, "Carol", req.Evaluations[1].TeammateName)
	assert.Equal(t, models.NumberResponse(5), req.Evaluations[1].Responses["rating"])

	_, err = w.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 100, w.Snapshot().Progress)
	require.NotNil(t, w.Snapshot().Submission)
}

func TestSubmit_ZeroSliderIsAnAnswer(t *testing.T) {
	form := twoSectionForm()
	form.Sections[1].Questions[0] = models.Question{
		ID: "effort", Required: true, Config: &models.SliderConfig{Min: 0, Max: 10, Step: 1},
	}
	w := newTestWizard(t, form)
	setupTeam(t, w, "TEAM1", "Bob", "Carol")
	require.NoError(t, w.Proceed())

	for teammate := 0; teammate < 2; teammate++ {
		require.NoError(t, w.GoTo(teammate, 0))
		require.NoError(t, w.SetResponse("rating", models.NumberResponse(3)))
		require.NoError(t, w.SetResponse("effort", models.NumberResponse(0)))
	}
	_, err := w.Submit(context.Background(), &recordingSubmitter{})
	assert.NoError(t, err)
}

func TestElapsedMinutes(t *testing.T) {
	assert.Equal(t, "1 minute", elapsedMinutes(0))
	assert.Equal(t, "1 minute", elapsedMinutes(30*time.Second))
	assert.Equal(t, "13 minutes", elapsedMinutes(12*time.Minute+time.Second))
}
