package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

const (
	EventSource  = "evalmate-service"
	EventVersion = "1.0"
)

type EventType string

const (
	FormCreated  EventType = "form.created"
	FormUpdated  EventType = "form.updated"
	FormDeleted  EventType = "form.deleted"
	FormsCleared EventType = "forms.cleared"

	SubmissionCreated  EventType = "submission.created"
	SubmissionRead     EventType = "submission.read"
	SubmissionsAllRead EventType = "submissions.all_read"
	SubmissionDeleted  EventType = "submission.deleted"
	SubmissionsCleared EventType = "submissions.cleared"
)

// Event describes one completed store mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type FormEventData struct {
	FormID string       `json:"form_id"`
	Form   *models.Form `json:"form,omitempty"`
}

type SubmissionEventData struct {
	SubmissionID string             `json:"submission_id"`
	Submission   *models.Submission `json:"submission,omitempty"`
}

type BulkEventData struct {
	Count int `json:"count"`
}

func NewEvent(t EventType, at time.Time, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: at,
		Data:      data,
	}
}
