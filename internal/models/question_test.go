package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_JSONIsFlat(t *testing.T) {
	q := Question{
		ID:       "q1",
		Prompt:   "How well did they communicate?",
		Required: true,
		Config:   &RatingConfig{Scale: 5, Labels: []string{"Poor", "Fair", "Good", "Very Good", "Excellent"}},
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "rating", fields["type"])
	assert.Equal(t, "How well did they communicate?", fields["question"])
	assert.Equal(t, float64(5), fields["scale"])
	assert.NotContains(t, fields, "description")
	assert.NotContains(t, fields, "config")

	var decoded Question
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, q, decoded)
}

func TestQuestion_UnmarshalEachKind(t *testing.T) {
	tests := []struct {
		name string
		json string
		want QuestionConfig
	}{
		{"textarea", `{"id":"a","type":"textarea","question":"Why?","required":false,"max_length":300,"placeholder":"..."}`, &TextareaConfig{MaxLength: 300, Placeholder: "..."}},
		{"multiple-choice", `{"id":"b","type":"multiple-choice","question":"Role","required":true,"options":["Lead","Member"]}`, &MultipleChoiceConfig{Options: []string{"Lead", "Member"}}},
		{"checkbox", `{"id":"c","type":"checkbox","question":"Skills","required":true,"options":["Go","SQL"]}`, &CheckboxConfig{Options: []string{"Go", "SQL"}}},
		{"slider", `{"id":"d","type":"slider","question":"Effort","required":true,"min":0,"max":100,"step":5,"labels":["Low","High"]}`, &SliderConfig{Min: 0, Max: 100, Step: 5, Labels: []string{"Low", "High"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Question
			require.NoError(t, json.Unmarshal([]byte(tt.json), &q))
			assert.Equal(t, tt.want, q.Config)
			assert.Equal(t, QuestionType(tt.name), q.Type())
		})
	}
}

func TestQuestion_UnknownTypeRejected(t *testing.T) {
	var q Question
	err := json.Unmarshal([]byte(`{"id":"x","type":"essay","question":"?"}`), &q)
	assert.Error(t, err)

	_, err = json.Marshal(Question{ID: "y"})
	assert.Error(t, err)
}

func TestQuestion_CloneIsDeep(t *testing.T) {
	q := Question{ID: "q", Config: &CheckboxConfig{Options: []string{"A", "B"}}}
	c := q.Clone()
	c.Config.(*CheckboxConfig).Options[0] = "Z"
	assert.Equal(t, "A", q.Config.(*CheckboxConfig).Options[0])
}

func TestQuestionConfig_ValidateResponse(t *testing.T) {
	rating := &RatingConfig{Scale: 5}
	assert.NoError(t, rating.ValidateResponse(NumberResponse(5)))
	assert.ErrorIs(t, rating.ValidateResponse(NumberResponse(0)), ErrInvalidResponse)
	assert.ErrorIs(t, rating.ValidateResponse(NumberResponse(3.5)), ErrInvalidResponse)
	for _, v := range []float64{6, 1e19, 1e300, -1e19} {
		assert.ErrorIs(t, rating.ValidateResponse(NumberResponse(v)), ErrInvalidResponse, "rating %v", v)
	}
	assert.ErrorIs(t, rating.ValidateResponse(TextResponse("5")), ErrInvalidResponse)

	text := &TextareaConfig{MaxLength: 3}
	assert.NoError(t, text.ValidateResponse(TextResponse("héé")))
	assert.ErrorIs(t, text.ValidateResponse(TextResponse("abcd")), ErrInvalidResponse)

	choice := &MultipleChoiceConfig{Options: []string{"A", "B"}}
	assert.NoError(t, choice.ValidateResponse(TextResponse("B")))
	assert.NoError(t, choice.ValidateResponse(TextResponse("")))
	assert.ErrorIs(t, choice.ValidateResponse(TextResponse("C")), ErrInvalidResponse)

	checkbox := &CheckboxConfig{Options: []string{"A", "B"}}
	assert.NoError(t, checkbox.ValidateResponse(ChoicesResponse("A", "B")))
	assert.NoError(t, checkbox.ValidateResponse(ChoicesResponse()))
	assert.ErrorIs(t, checkbox.ValidateResponse(ChoicesResponse("A", "A")), ErrInvalidResponse)
	assert.ErrorIs(t, checkbox.ValidateResponse(ChoicesResponse("C")), ErrInvalidResponse)

	slider := &SliderConfig{Min: 0, Max: 100, Step: 5}
	assert.NoError(t, slider.ValidateResponse(NumberResponse(0)))
	assert.ErrorIs(t, slider.ValidateResponse(NumberResponse(101)), ErrInvalidResponse)
}
