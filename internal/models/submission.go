package models

import "time"

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
)

const (
	DefaultStudentName    = "Anonymous Student"
	DefaultSubmissionTime = "Not recorded"
)

// TeammateEvaluation holds one student's answers about one teammate.
// TeammateID is the teammate's position in Submission.Teammates.
type TeammateEvaluation struct {
	TeammateID   int       `json:"teammate_id"`
	TeammateName string    `json:"teammate_name"`
	Responses    Responses `json:"responses"`
}

func (e TeammateEvaluation) Clone() TeammateEvaluation {
	out := e
	out.Responses = e.Responses.Clone()
	return out
}

type SubmissionMetadata struct {
	TotalTeammates int     `json:"total_teammates"`
	AvgRating      float64 `json:"avg_rating"`
	SubmissionTime string  `json:"submission_time"`
}

// Submission is a completed set of peer evaluations from one student. Only
// IsRead changes after creation.
type Submission struct {
	ID          string               `json:"id"`
	FormID      string               `json:"form_id"`
	FormTitle   string               `json:"form_title"`
	Course      string               `json:"course"`
	StudentName string               `json:"student_name"`
	TeamID      string               `json:"team_id"`
	Teammates   []string             `json:"teammates"`
	Evaluations []TeammateEvaluation `json:"evaluations"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Status      SubmissionStatus     `json:"status"`
	IsRead      bool                 `json:"is_read"`
	Metadata    SubmissionMetadata   `json:"metadata"`
}

func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	out := *s
	out.Teammates = cloneStrings(s.Teammates)
	if s.Evaluations != nil {
		out.Evaluations = make([]TeammateEvaluation, len(s.Evaluations))
		for i, e := range s.Evaluations {
			out.Evaluations[i] = e.Clone()
		}
	}
	return &out
}

// SubmissionRequest is what the evaluation wizard hands to the store.
type SubmissionRequest struct {
	FormID         string               `json:"form_id" validate:"required"`
	FormTitle      string               `json:"form_title"`
	Course         string               `json:"course"`
	StudentName    string               `json:"student_name"`
	TeamID         string               `json:"team_id" validate:"required,min=3"`
	Teammates      []string             `json:"teammates" validate:"required,min=1,dive,required"`
	Evaluations    []TeammateEvaluation `json:"evaluations" validate:"required,eqfield=Teammates"`
	SubmissionTime string               `json:"submission_time"`
}
