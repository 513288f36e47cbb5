package wizard

import (
	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

// Snapshot is a read-only view of the wizard for clients rendering it.
type Snapshot struct {
	State       State                      `json:"state"`
	FormID      string                     `json:"form_id"`
	FormTitle   string                     `json:"form_title"`
	MinTeamSize int                        `json:"min_team_size"`
	MaxTeamSize int                        `json:"max_team_size"`
	TeamID      string                     `json:"team_id"`
	Slots       []string                   `json:"slots"`
	Teammates   []string                   `json:"teammates,omitempty"`
	Cursor      Cursor                     `json:"cursor"`
	Sections    int                        `json:"sections"`
	Progress    int                        `json:"progress"`
	Responses   []models.Responses         `json:"responses,omitempty"`
	Errors      validator.ValidationErrors `json:"errors,omitempty"`
	Submission  *models.Submission         `json:"submission,omitempty"`
}

func (w *Wizard) Snapshot() Snapshot {
	snap := Snapshot{
		State:       w.state,
		FormID:      w.form.ID,
		FormTitle:   w.form.Title,
		MinTeamSize: w.minTeam,
		MaxTeamSize: w.maxTeam,
		TeamID:      w.teamID,
		Slots:       append([]string(nil), w.slots...),
		Teammates:   append([]string(nil), w.teammates...),
		Cursor:      w.cursor,
		Sections:    len(w.form.Sections),
		Progress:    w.progress(),
		Errors:      w.Errors(),
		Submission:  w.submission.Clone(),
	}
	if w.responses != nil {
		snap.Responses = make([]models.Responses, len(w.responses))
		for i, rs := range w.responses {
			snap.Responses[i] = rs.Clone()
		}
	}
	return snap
}

// progress is the share of required answers given, in percent. A form
// without required questions counts as complete once evaluation starts.
func (w *Wizard) progress() int {
	switch w.state {
	case StateTeamSetup:
		return 0
	case StateSubmitted:
		return 100
	}
	required, answered := 0, 0
	for t := range w.teammates {
		for _, sec := range w.form.Sections {
			for _, q := range sec.Questions {
				if !q.Required {
					continue
				}
				required++
				if !w.responses[t][q.ID].IsMissing() {
					answered++
				}
			}
		}
	}
	if required == 0 {
		return 100
	}
	return answered * 100 / required
}
