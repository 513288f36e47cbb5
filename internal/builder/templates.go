package builder

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

const (
	TemplateComprehensive = "comprehensive-peer-evaluation"
	TemplateQuick         = "quick-peer-evaluation"
)

// Template is a pre-built set of sections a form can start from.
type Template struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Sections    []models.Section `json:"sections"`
}

func (t Template) QuestionCount() int {
	total := 0
	for _, s := range t.Sections {
		total += len(s.Questions)
	}
	return total
}

var (
	qualityLabels     = []string{"Very Poor", "Poor", "Average", "Good", "Excellent"}
	reliabilityLabels = []string{"Very Unreliable", "Unreliable", "Average", "Reliable", "Very Reliable"}
	frequencyLabels   = []string{"Never", "Rarely", "Sometimes", "Often", "Always"}
	overallLabels     = []string{"Poor", "Below Average", "Average", "Good", "Excellent"}
	willingnessLabels = []string{"Very Unwilling", "Unwilling", "Neutral", "Willing", "Very Willing"}
)

func rating(id, prompt, description string, labels []string) models.Question {
	return models.Question{
		ID:          id,
		Prompt:      prompt,
		Description: description,
		Required:    true,
		Config:      &models.RatingConfig{Scale: len(labels), Labels: labels},
	}
}

func comment(id, prompt, description, placeholder string, required bool, maxLength int) models.Question {
	return models.Question{
		ID:          id,
		Prompt:      prompt,
		Description: description,
		Required:    required,
		Config:      &models.TextareaConfig{MaxLength: maxLength, Placeholder: placeholder},
	}
}

var templates = []Template{
	{
		ID:          TemplateComprehensive,
		Name:        "Comprehensive Peer Evaluation",
		Description: "Complete peer evaluation covering collaboration, technical skills, and leadership",
		Sections: []models.Section{
			{
				ID:          "collaboration",
				Title:       "Collaboration & Communication",
				Description: "Evaluate how well your teammate collaborates and communicates with the team",
				Questions: []models.Question{
					rating("comm-effectiveness",
						"How effectively does this teammate communicate with the team?",
						"Consider clarity, responsiveness, and active participation in discussions",
						qualityLabels),
					rating("collaboration-quality",
						"How well does this teammate collaborate on shared tasks?",
						"Consider willingness to help, sharing resources, and working together effectively",
						qualityLabels),
					comment("collaboration-comments",
						"Additional comments on collaboration and communication (optional)",
						"Provide specific examples of effective collaboration or areas for improvement",
						"Share specific examples...", false, 500),
				},
			},
			{
				ID:          "technical-contribution",
				Title:       "Technical Contribution",
				Description: "Assess the quality and quantity of technical work and contributions",
				Questions: []models.Question{
					rating("work-quality",
						"How would you rate the quality of this teammate's work?",
						"Consider accuracy, attention to detail, and adherence to standards",
						qualityLabels),
					rating("technical-skills",
						"How would you rate this teammate's technical skills relevant to the project?",
						"Consider proficiency with required tools, technologies, and methodologies",
						qualityLabels),
					comment("technical-comments",
						"Additional comments on technical contribution (optional)",
						"Highlight specific technical strengths or suggest areas for development",
						"Describe technical contributions...", false, 500),
				},
			},
			{
				ID:          "reliability-leadership",
				Title:       "Reliability & Leadership",
				Description: "Evaluate dependability, accountability, and leadership qualities",
				Questions: []models.Question{
					rating("reliability",
						"How reliable is this teammate in meeting deadlines and commitments?",
						"Consider punctuality, follow-through on promises, and consistency",
						reliabilityLabels),
					rating("initiative",
						"How often does this teammate take initiative and show leadership?",
						"Consider proactive problem-solving, taking on extra responsibilities, and guiding others",
						frequencyLabels),
					comment("reliability-comments",
						"Additional comments on reliability and leadership (optional)",
						"Provide examples of leadership or reliability, or suggest improvements",
						"Share observations about reliability and leadership...", false, 500),
				},
			},
		},
	},
	{
		ID:          TemplateQuick,
		Name:        "Quick Peer Evaluation",
		Description: "Simplified peer evaluation focusing on key collaboration metrics",
		Sections: []models.Section{
			{
				ID:          "overall-evaluation",
				Title:       "Overall Team Member Evaluation",
				Description: "Rate your teammate's overall performance and contribution",
				Questions: []models.Question{
					rating("overall-contribution",
						"Overall, how would you rate this teammate's contribution to the team?",
						"Consider all aspects: work quality, collaboration, reliability, and attitude",
						overallLabels),
					rating("work-together-again",
						"How willing would you be to work with this teammate again?",
						"Based on your experience, rate your willingness to collaborate in future projects",
						willingnessLabels),
					comment("feedback-comments",
						"What feedback would you give to help this teammate improve?",
						"Provide constructive feedback focusing on specific behaviors and suggestions",
						"Provide specific, constructive feedback...", true, 300),
				},
			},
		},
	},
}

// Templates returns deep copies of the built-in templates.
func Templates() []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = t.clone()
	}
	return out
}

// LookupTemplate returns a copy of the template with the given id.
func LookupTemplate(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Template{}, false
}

// instantiate copies the template sections, prefixing every section and
// question id with the time of instantiation so repeated use never collides.
func (t Template) instantiate(now time.Time) []models.Section {
	stamp := now.UnixMilli()
	sections := make([]models.Section, len(t.Sections))
	for i, s := range t.Sections {
		sec := s.Clone()
		sec.ID = fmt.Sprintf("section-%d-%s", stamp, s.ID)
		for j := range sec.Questions {
			sec.Questions[j].ID = fmt.Sprintf("question-%d-%s", stamp, s.Questions[j].ID)
		}
		sections[i] = sec
	}
	return sections
}

func (t Template) clone() Template {
	out := t
	out.Sections = make([]models.Section, len(t.Sections))
	for i, s := range t.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}
