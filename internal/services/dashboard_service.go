package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

const (
	facultyRecentLimit = 5
	studentRecentLimit = 5
	notificationLimit  = 10
	deadlineWindowDays = 7
	urgentDeadlineDays = 2
	urgencyHigh        = "high"
	urgencyMedium      = "medium"
)

// ===== SERVICE INTERFACE =====

type DashboardService interface {
	// Faculty overview: form and submission statistics with the latest submissions
	GetFacultyDashboard(ctx context.Context) (*models.FacultyDashboard, error)

	// Student overview: pending forms, completion and upcoming deadlines
	GetStudentDashboard(ctx context.Context, student models.Identity) (*models.StudentDashboard, error)

	// Polling feed behind the notification bell
	GetNotifications(ctx context.Context) (*models.NotificationFeed, error)
}

type dashboardService struct {
	forms       *FormStore
	evaluations *EvaluationStore
	logger      *slog.Logger
	now         func() time.Time
}

func NewDashboardService(forms *FormStore, evaluations *EvaluationStore, logger *slog.Logger) DashboardService {
	return &dashboardService{
		forms:       forms,
		evaluations: evaluations,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *dashboardService) GetFacultyDashboard(ctx context.Context) (*models.FacultyDashboard, error) {
	return &models.FacultyDashboard{
		FormStats:         s.forms.GetStats(),
		SubmissionStats:   s.evaluations.GetStats(),
		RecentSubmissions: s.evaluations.GetRecentSubmissions(facultyRecentLimit),
	}, nil
}

// GetStudentDashboard lists the published forms the student has not submitted
// yet. Submissions are matched on the student's name.
func (s *dashboardService) GetStudentDashboard(ctx context.Context, student models.Identity) (*models.StudentDashboard, error) {
	submitted := s.evaluations.GetSubmissionsByStudent(student.Key())
	done := make(map[string]bool, len(submitted))
	for _, sub := range submitted {
		done[sub.FormID] = true
	}

	now := s.now()
	dashboard := &models.StudentDashboard{
		Student:           student.Key(),
		PendingForms:      []models.StudentFormView{},
		CompletedCount:    len(submitted),
		UpcomingDeadlines: []models.Deadline{},
		RecentSubmissions: submitted[:min(len(submitted), studentRecentLimit)],
	}
	for _, form := range s.forms.GetPublishedForms() {
		if done[form.ID] {
			continue
		}
		dashboard.PendingForms = append(dashboard.PendingForms, *ConvertForStudentDisplay(form))
		if d, ok := upcomingDeadline(form, now); ok {
			dashboard.UpcomingDeadlines = append(dashboard.UpcomingDeadlines, d)
		}
	}
	dashboard.PendingCount = len(dashboard.PendingForms)
	dashboard.CompletionRate = CompletionRate(dashboard.CompletedCount, dashboard.PendingCount)
	return dashboard, nil
}

func (s *dashboardService) GetNotifications(ctx context.Context) (*models.NotificationFeed, error) {
	feed := &models.NotificationFeed{
		RecentSubmissions: s.evaluations.GetRecentSubmissions(notificationLimit),
		UnreadCount:       s.evaluations.GetUnreadCount(),
		PublishedForms:    []models.StudentFormView{},
	}
	for _, form := range s.forms.GetPublishedForms() {
		feed.PublishedForms = append(feed.PublishedForms, *ConvertForStudentDisplay(form))
	}
	return feed, nil
}

// CompletionRate is completed / (completed + pending) as a whole percentage.
func CompletionRate(completed, pending int) int {
	total := completed + pending
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// DaysUntil is the number of 24-hour periods from now until due, rounded up.
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

func upcomingDeadline(form *models.Form, now time.Time) (models.Deadline, bool) {
	due, ok := form.Due(now.Location())
	if !ok {
		return models.Deadline{}, false
	}
	days := DaysUntil(due, now)
	if days < 0 || days > deadlineWindowDays {
		return models.Deadline{}, false
	}
	urgency := urgencyMedium
	if days <= urgentDeadlineDays {
		urgency = urgencyHigh
	}
	return models.Deadline{
		FormID:   form.ID,
		Title:    form.Title,
		Course:   form.Course,
		DueDate:  form.DueDate,
		DaysLeft: days,
		Urgency:  urgency,
	}, true
}
