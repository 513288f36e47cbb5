package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

func validForm() *models.Form {
	return &models.Form{
		Title:   "Sprint Review",
		Course:  "CS 410",
		DueDate: "2025-05-01",
		Status:  models.FormStatusDraft,
		TeamConfiguration: &models.TeamConfiguration{
			MinTeamSize: 2,
			MaxTeamSize: 5,
		},
		Sections: []models.Section{
			{
				ID:    "s1",
				Title: "Contribution",
				Questions: []models.Question{
					{ID: "q1", Prompt: "Overall", Required: true, Config: &models.RatingConfig{Scale: 5, Labels: []string{"1", "2", "3", "4", "5"}}},
					{ID: "q2", Prompt: "Comments", Config: &models.TextareaConfig{MaxLength: 500}},
				},
			},
		},
	}
}

func TestValidateForm_Valid(t *testing.T) {
	v := New()
	assert.Empty(t, v.ValidateForm(validForm()))
	assert.Empty(t, v.ValidatePublish(validForm()))
}

func TestValidateForm_StructRules(t *testing.T) {
	v := New()

	form := validForm()
	form.Priority = "urgent"
	form.DueDate = "next friday"
	form.TeamConfiguration.MaxTeamSize = 1
	form.Sections[0].Questions = append(form.Sections[0].Questions,
		models.Question{ID: "q3", Config: &models.MultipleChoiceConfig{Options: []string{"A", "A"}}},
		models.Question{ID: "q4", Config: &models.SliderConfig{Min: 10, Max: 0, Step: 1}},
		models.Question{ID: "q5"},
	)

	errs := v.ValidateForm(form)
	require.NotEmpty(t, errs)
	assert.True(t, errs.Has("priority"), errs.Fields())
	assert.True(t, errs.Has("due_date"), errs.Fields())
	assert.True(t, errs.Has("team_configuration.max_team_size"), errs.Fields())
	assert.True(t, errs.Has("sections[0].questions[2].config.options"), errs.Fields())
	assert.True(t, errs.Has("sections[0].questions[3].config.max"), errs.Fields())
	assert.True(t, errs.Has("sections[0].questions[4].config"), errs.Fields())
}

func TestValidateForm_ConsistencyRules(t *testing.T) {
	v := New()

	form := validForm()
	form.Sections = append(form.Sections, models.Section{
		ID:    "s1",
		Title: "Duplicate",
		Questions: []models.Question{
			{ID: "q1", Config: &models.RatingConfig{Scale: 4, Labels: []string{"a", "b"}}},
			{ID: "q9", Config: &models.SliderConfig{Min: 0, Max: 10, Step: 20}},
		},
	})

	errs := v.ValidateForm(form)
	assert.True(t, errs.Has("sections[1].id"), errs.Fields())
	assert.True(t, errs.Has("sections[1].questions[0].id"), errs.Fields())
	assert.True(t, errs.Has("sections[1].questions[0].labels"), errs.Fields())
	assert.True(t, errs.Has("sections[1].questions[1].step"), errs.Fields())
}

func TestValidateDraft(t *testing.T) {
	v := New()

	errs := v.ValidateDraft(&models.Form{Title: "  "})
	assert.ElementsMatch(t, []string{"title", "course", "sections"}, errs.Fields())

	form := validForm()
	form.DueDate = ""
	form.Sections[0].Questions = nil
	assert.Empty(t, v.ValidateDraft(form))
}

func TestValidatePublish(t *testing.T) {
	v := New()

	form := validForm()
	form.DueDate = ""
	form.Sections = append(form.Sections, models.Section{ID: "s2", Title: "Empty"})

	errs := v.ValidatePublish(form)
	assert.ElementsMatch(t, []string{"due_date", "sections[1].questions"}, errs.Fields())
	for _, e := range errs {
		assert.Equal(t, RulePublish, e.Rule)
	}
}

func TestValidate_RequestDTOs(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&QuestionRequest{Type: models.QuestionSlider}))
	err := v.Validate(&QuestionRequest{Type: "essay"})
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "type", verrs[0].Field)
	assert.Equal(t, "question_type", verrs[0].Rule)

	assert.Error(t, v.Validate(&IdentityRequest{Role: "admin"}))
	assert.NoError(t, v.Validate(&IdentityRequest{Role: "faculty"}))

	req := &models.SubmissionRequest{
		FormID:      "form-1",
		TeamID:      "TEAM1",
		Teammates:   []string{"Alice", "Bob"},
		Evaluations: []models.TeammateEvaluation{{TeammateID: 0}},
	}
	err = v.Validate(req)
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("evaluations"), verrs.Fields())
}
