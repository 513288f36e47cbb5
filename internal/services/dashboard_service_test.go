package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
)

func newTestDashboard(fx *serviceFixture, now time.Time) *dashboardService {
	svc := NewDashboardService(fx.forms, fx.evaluations, discardLogger()).(*dashboardService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboardService_Faculty(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(t)
	form := fx.publishedForm(t, "Sprint Review")
	fx.forms.AddForm(ctx, sampleForm("Draft"))
	for i := 0; i < 7; i++ {
		fx.evaluations.SubmitEvaluation(ctx, sampleRequest(form.ID, "Student", 4))
	}

	dashboard, err := NewDashboardService(fx.forms, fx.evaluations, discardLogger()).GetFacultyDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.FormStats.Total)
	assert.Equal(t, 1, dashboard.FormStats.Published)
	assert.Equal(t, 7, dashboard.SubmissionStats.Total)
	assert.Len(t, dashboard.RecentSubmissions, 5)
}

func TestDashboardService_StudentPendingAndDeadlines(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(t)
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.Local)

	soon := sampleForm("Due Soon")
	soon.Status = models.FormStatusPublished
	soon.DueDate = "2030-01-12"
	soon = fx.forms.AddForm(ctx, soon)

	later := sampleForm("Due Later")
	later.Status = models.FormStatusPublished
	later.DueDate = "2030-01-16"
	later = fx.forms.AddForm(ctx, later)

	far := sampleForm("Due Far")
	far.Status = models.FormStatusPublished
	far.DueDate = "2030-03-01"
	far = fx.forms.AddForm(ctx, far)

	done := sampleForm("Done")
	done.Status = models.FormStatusPublished
	done = fx.forms.AddForm(ctx, done)
	fx.evaluations.SubmitEvaluation(ctx, sampleRequest(done.ID, alice.Name, 5))
	fx.evaluations.SubmitEvaluation(ctx, sampleRequest(done.ID, mallory.Name, 5))

	dashboard, err := newTestDashboard(fx, now).GetStudentDashboard(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, alice.Name, dashboard.Student)
	assert.Equal(t, 3, dashboard.PendingCount)
	assert.Equal(t, 1, dashboard.CompletedCount)
	assert.Equal(t, 25, dashboard.CompletionRate)
	require.Len(t, dashboard.RecentSubmissions, 1)
	assert.Equal(t, done.ID, dashboard.RecentSubmissions[0].FormID)

	for _, view := range dashboard.PendingForms {
		assert.NotEqual(t, done.ID, view.ID)
		assert.Equal(t, "master", view.Type)
	}

	require.Len(t, dashboard.UpcomingDeadlines, 2)
	byForm := map[string]models.Deadline{}
	for _, d := range dashboard.UpcomingDeadlines {
		byForm[d.FormID] = d
	}
	assert.Equal(t, 2, byForm[soon.ID].DaysLeft)
	assert.Equal(t, "high", byForm[soon.ID].Urgency)
	assert.Equal(t, 6, byForm[later.ID].DaysLeft)
	assert.Equal(t, "medium", byForm[later.ID].Urgency)
	assert.NotContains(t, byForm, far.ID)
}

func TestDashboardService_EmptyStudent(t *testing.T) {
	fx := newServiceFixture(t)
	dashboard, err := newTestDashboard(fx, time.Now()).GetStudentDashboard(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, 0, dashboard.CompletionRate)
	assert.NotNil(t, dashboard.PendingForms)
	assert.NotNil(t, dashboard.UpcomingDeadlines)
	assert.Empty(t, dashboard.RecentSubmissions)
}

func TestDashboardService_Notifications(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(t)
	form := fx.publishedForm(t, "Sprint Review")
	fx.forms.AddForm(ctx, sampleForm("Draft"))
	var last *models.Submission
	for i := 0; i < 12; i++ {
		last = fx.evaluations.SubmitEvaluation(ctx, sampleRequest(form.ID, "Student", 3))
	}
	fx.evaluations.MarkAsRead(ctx, last.ID)

	feed, err := NewDashboardService(fx.forms, fx.evaluations, discardLogger()).GetNotifications(ctx)
	require.NoError(t, err)
	assert.Len(t, feed.RecentSubmissions, 10)
	assert.Equal(t, last.ID, feed.RecentSubmissions[0].ID)
	assert.Equal(t, 11, feed.UnreadCount)
	require.Len(t, feed.PublishedForms, 1)
	assert.Equal(t, form.ID, feed.PublishedForms[0].ID)
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, pending, want int
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 4, 0},
		{1, 2, 33},
		{2, 1, 67},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompletionRate(tt.completed, tt.pending), "%d/%d", tt.completed, tt.pending)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysUntil(now.Add(time.Hour), now))
	assert.Equal(t, 2, DaysUntil(time.Date(2030, 1, 12, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 0, DaysUntil(now.Add(-time.Hour), now))
	assert.Equal(t, -1, DaysUntil(now.Add(-25*time.Hour), now))
}
