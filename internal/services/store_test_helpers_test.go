package services

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a settable clock that advances one millisecond per read, so
// consecutive ids and timestamps stay distinct.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) listen(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func ratingQuestion(id string, required bool) models.Question {
	return models.Question{
		ID:       id,
		Prompt:   "How well did they communicate?",
		Required: required,
		Config:   &models.RatingConfig{Scale: 5},
	}
}

func textQuestion(id string, required bool) models.Question {
	return models.Question{
		ID:       id,
		Prompt:   "Any comments?",
		Required: required,
		Config:   &models.TextareaConfig{MaxLength: 500},
	}
}

func sampleForm(title string) *models.Form {
	return &models.Form{
		Title:   title,
		Course:  "CS 401",
		DueDate: "2030-01-15",
		Sections: []models.Section{
			{ID: "s1", Title: "Collaboration", Questions: []models.Question{ratingQuestion("q1", true)}},
			{ID: "s2", Title: "Feedback", Questions: []models.Question{textQuestion("q2", false)}},
		},
	}
}

func sampleRequest(formID, student string, ratings ...float64) *models.SubmissionRequest {
	req := &models.SubmissionRequest{
		FormID:      formID,
		FormTitle:   "Sprint Review",
		Course:      "CS 401",
		StudentName: student,
		TeamID:      "TEAM1",
	}
	for i, r := range ratings {
		name := string(rune('A'+i)) + "lex"
		req.Teammates = append(req.Teammates, name)
		req.Evaluations = append(req.Evaluations, models.TeammateEvaluation{
			TeammateID:   i,
			TeammateName: name,
			Responses:    models.Responses{"q1": models.NumberResponse(r)},
		})
	}
	return req
}
