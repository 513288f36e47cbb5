package models

import (
	"time"
)

// ===== FORM DTOs =====

// StudentFormView is the student-facing projection of a published form.
type StudentFormView struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Course         string   `json:"course"`
	CreatedBy      string   `json:"created_by"`
	DueDate        string   `json:"due_date"`
	EstimatedTime  string   `json:"estimated_time"`
	Priority       string   `json:"priority"`
	IsAnonymous    bool     `json:"is_anonymous"`
	IsFlexible     bool     `json:"is_flexible"`
	Sections       []string `json:"sections"`
	TotalQuestions int      `json:"total_questions"`
	MaxTeamSize    int      `json:"max_team_size"`
	MinTeamSize    int      `json:"min_team_size"`
	Instructions   string   `json:"instructions"`
}

type FormStats struct {
	Total         int `json:"total"`
	Published     int `json:"published"`
	Drafts        int `json:"drafts"`
	FlexibleForms int `json:"flexible_forms"`
}

// ===== SUBMISSION DTOs =====

type SubmissionStats struct {
	Total            int            `json:"total"`
	TodaySubmissions int            `json:"today_submissions"`
	Unread           int            `json:"unread"`
	AverageRating    float64        `json:"average_rating"`
	FormCounts       map[string]int `json:"form_counts"`
}

type SubmissionExport struct {
	Submissions []*Submission   `json:"submissions"`
	ExportedAt  time.Time       `json:"exported_at"`
	Stats       SubmissionStats `json:"stats"`
}

// Report filters and orderings accepted by SubmissionQuery.
const (
	ReportFilterAll    = "all"
	ReportFilterToday  = "today"
	ReportFilterUnread = "unread"

	ReportSortRecent  = "recent"
	ReportSortNewest  = "newest"
	ReportSortOldest  = "oldest"
	ReportSortRating  = "rating"
	ReportSortCourse  = "course"
	ReportSortForm    = "form"
	ReportSortStudent = "student"
)

type SubmissionQuery struct {
	FormID  string `form:"form_id" json:"form_id"`
	Student string `form:"student" json:"student"`
	Filter  string `form:"filter" json:"filter" validate:"omitempty,oneof=all today unread"`
	Sort    string `form:"sort" json:"sort" validate:"omitempty,oneof=recent newest oldest rating course form student"`
}

// ===== DASHBOARD DTOs =====

type FacultyDashboard struct {
	FormStats         FormStats       `json:"form_stats"`
	SubmissionStats   SubmissionStats `json:"submission_stats"`
	RecentSubmissions []*Submission   `json:"recent_submissions"`
}

type Deadline struct {
	FormID   string `json:"form_id"`
	Title    string `json:"title"`
	Course   string `json:"course"`
	DueDate  string `json:"due_date"`
	DaysLeft int    `json:"days_left"`
	Urgency  string `json:"urgency"`
}

type StudentDashboard struct {
	Student           string            `json:"student"`
	PendingForms      []StudentFormView `json:"pending_forms"`
	PendingCount      int               `json:"pending_count"`
	CompletedCount    int               `json:"completed_count"`
	CompletionRate    int               `json:"completion_rate"`
	UpcomingDeadlines []Deadline        `json:"upcoming_deadlines"`
	RecentSubmissions []*Submission     `json:"recent_submissions"`
}

type NotificationFeed struct {
	RecentSubmissions []*Submission     `json:"recent_submissions"`
	UnreadCount       int               `json:"unread_count"`
	PublishedForms    []StudentFormView `json:"published_forms"`
}

// ===== WIZARD REQUESTS =====

type WizardSessionRequest struct {
	FormID      string `json:"form_id" validate:"required"`
	StudentName string `json:"student_name" validate:"omitempty,max=100"`
}

type TeamIDRequest struct {
	TeamID string `json:"team_id" validate:"max=50"`
}

type TeammateRequest struct {
	Name string `json:"name" validate:"max=100"`
}

type ResponseRequest struct {
	QuestionID string   `json:"question_id" validate:"required"`
	Value      Response `json:"value"`
}

type NavigateRequest struct {
	Teammate int `json:"teammate" validate:"min=0"`
	Section  int `json:"section" validate:"min=0"`
}

// ===== BUILDER REQUESTS =====

type TemplateRequest struct {
	Template string `json:"template" validate:"required"`
}

// ===== API RESPONSES =====

type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Path      string      `json:"path"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}
