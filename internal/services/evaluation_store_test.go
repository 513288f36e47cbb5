package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/evalmate-service/internal/cache"
	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories/memory"
)

func newTestEvaluationStore(t *testing.T, records repositories.RecordStore) (*EvaluationStore, *testClock) {
	t.Helper()
	clock := newTestClock(time.Date(2030, 1, 10, 9, 0, 0, 0, time.Local))
	store := NewEvaluationStore(context.Background(), records, events.NewEmitter(discardLogger()), discardLogger())
	store.now = clock.Now
	return store, clock
}

func TestEvaluationStore_SubmitRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())

	sub := store.SubmitEvaluation(ctx, sampleRequest("form-1", "Jordan", 4, 5))
	assert.Regexp(t, `^submission-\d+-[0-9a-f]{9}$`, sub.ID)
	assert.Equal(t, models.SubmissionSubmitted, sub.Status)
	assert.False(t, sub.IsRead)
	assert.Equal(t, 2, sub.Metadata.TotalTeammates)
	assert.Equal(t, 4.5, sub.Metadata.AvgRating)
	assert.Equal(t, models.DefaultSubmissionTime, sub.Metadata.SubmissionTime)

	byForm := store.GetSubmissionsByForm("form-1")
	require.Len(t, byForm, 1)
	assert.Equal(t, sub, byForm[0])
	assert.Empty(t, store.GetSubmissionsByForm("form-2"))
}

func TestEvaluationStore_Defaults(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())

	req := sampleRequest("form-1", "  ", 3)
	req.SubmissionTime = "12 minutes"
	sub := store.SubmitEvaluation(ctx, req)
	assert.Equal(t, models.DefaultStudentName, sub.StudentName)
	assert.Equal(t, "12 minutes", sub.Metadata.SubmissionTime)
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name        string
		evaluations []models.TeammateEvaluation
		want        float64
	}{
		{
			name: "mean of 4 and 4 and 4",
			evaluations: []models.TeammateEvaluation{
				{Responses: models.Responses{"q1": models.NumberResponse(4), "q2": models.NumberResponse(4)}},
				{Responses: models.Responses{"q1": models.NumberResponse(4)}},
			},
			want: 4.0,
		},
		{
			name: "ignores text and out of range numbers",
			evaluations: []models.TeammateEvaluation{
				{Responses: models.Responses{
					"q1": models.NumberResponse(5),
					"q2": models.NumberResponse(70),
					"q3": models.NumberResponse(0),
					"q4": models.TextResponse("4"),
					"q5": models.ChoicesResponse("a"),
				}},
			},
			want: 5.0,
		},
		{
			name: "rounded to one decimal",
			evaluations: []models.TeammateEvaluation{
				{Responses: models.Responses{"a": models.NumberResponse(4), "b": models.NumberResponse(4), "c": models.NumberResponse(5)}},
			},
			want: 4.3,
		},
		{name: "no ratings", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageRating(tt.evaluations))
		})
	}
}

func TestEvaluationStore_NewestAtHead(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())
	first := store.SubmitEvaluation(ctx, sampleRequest("form-1", "A", 3))
	second := store.SubmitEvaluation(ctx, sampleRequest("form-1", "B", 3))

	all := store.GetAllSubmissions()
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestEvaluationStore_UnreadAndMarkRead(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())
	a := store.SubmitEvaluation(ctx, sampleRequest("form-1", "A", 3))
	store.SubmitEvaluation(ctx, sampleRequest("form-1", "B", 3))
	store.SubmitEvaluation(ctx, sampleRequest("form-1", "C", 3))

	store.MarkAsRead(ctx, a.ID)
	assert.Equal(t, 2, store.GetUnreadCount())

	store.MarkAsRead(ctx, "submission-missing")
	assert.Equal(t, 2, store.GetUnreadCount())

	store.MarkAllAsRead(ctx)
	assert.Equal(t, 0, store.GetUnreadCount())
	store.MarkAllAsRead(ctx)
	assert.Equal(t, 0, store.GetUnreadCount())
	for _, sub := range store.GetAllSubmissions() {
		assert.True(t, sub.IsRead)
	}
}

func TestEvaluationStore_GetSubmissionsByStudent(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestEvaluationStore(t, memory.NewRecordMemory())

	clock.Set(time.Date(2030, 1, 12, 9, 0, 0, 0, time.Local))
	late := store.SubmitEvaluation(ctx, sampleRequest("form-1", "Jordan", 3))
	clock.Set(time.Date(2030, 1, 11, 9, 0, 0, 0, time.Local))
	early := store.SubmitEvaluation(ctx, sampleRequest("form-2", "Jordan", 3))
	store.SubmitEvaluation(ctx, sampleRequest("form-1", "Sam", 3))

	got := store.GetSubmissionsByStudent("Jordan")
	require.Len(t, got, 2)
	assert.Equal(t, late.ID, got[0].ID)
	assert.Equal(t, early.ID, got[1].ID)
	assert.Empty(t, store.GetSubmissionsByStudent("jordan"))
}

func TestEvaluationStore_GetRecentSubmissions(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())
	for i := 0; i < 12; i++ {
		store.SubmitEvaluation(ctx, sampleRequest("form-1", "A", 3))
	}

	assert.Len(t, store.GetRecentSubmissions(0), DefaultRecentLimit)
	recent := store.GetRecentSubmissions(3)
	require.Len(t, recent, 3)
	assert.True(t, recent[0].SubmittedAt.After(recent[1].SubmittedAt))
	assert.True(t, recent[1].SubmittedAt.After(recent[2].SubmittedAt))
	assert.Len(t, store.GetRecentSubmissions(50), 12)
}

func TestEvaluationStore_Stats(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestEvaluationStore(t, memory.NewRecordMemory())

	clock.Set(time.Date(2030, 1, 9, 12, 0, 0, 0, time.Local))
	yesterday := store.SubmitEvaluation(ctx, sampleRequest("form-1", "A", 4, 4, 5)) // 4.3
	clock.Set(time.Date(2030, 1, 10, 8, 0, 0, 0, time.Local))
	store.SubmitEvaluation(ctx, sampleRequest("form-1", "B", 5, 4)) // 4.5
	store.SubmitEvaluation(ctx, sampleRequest("form-2", "C"))       // 0
	store.MarkAsRead(ctx, yesterday.ID)

	stats := store.GetStats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.TodaySubmissions)
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, 2.9, stats.AverageRating)
	assert.Equal(t, map[string]int{"form-1": 2, "form-2": 1}, stats.FormCounts)

	export := store.ExportData()
	assert.Len(t, export.Submissions, 3)
	assert.Equal(t, stats, export.Stats)
	assert.False(t, export.ExportedAt.IsZero())
}

func TestEvaluationStore_StatsEmpty(t *testing.T) {
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())
	stats := store.GetStats()
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.AverageRating)
	assert.Empty(t, stats.FormCounts)
}

func TestEvaluationStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())
	a := store.SubmitEvaluation(ctx, sampleRequest("form-1", "A", 3))
	store.SubmitEvaluation(ctx, sampleRequest("form-1", "B", 3))

	removed, err := store.DeleteSubmission(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)
	_, err = store.GetSubmission(a.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
	_, err = store.DeleteSubmission(ctx, a.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	store.ClearAll(ctx)
	assert.Empty(t, store.GetAllSubmissions())
}

func TestEvaluationStore_Listeners(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestEvaluationStore(t, memory.NewRecordMemory())

	store.Subscribe(func(events.Event) { panic("listener failure") })
	rec := &eventRecorder{}
	dispose := store.Subscribe(rec.listen)

	sub := store.SubmitEvaluation(ctx, sampleRequest("form-1", "A", 3))
	store.MarkAsRead(ctx, sub.ID)
	store.MarkAllAsRead(ctx)
	_, err := store.DeleteSubmission(ctx, sub.ID)
	require.NoError(t, err)
	store.ClearAll(ctx)
	dispose()
	dispose()
	store.SubmitEvaluation(ctx, sampleRequest("form-1", "B", 3))

	assert.Equal(t, []events.EventType{
		events.SubmissionCreated,
		events.SubmissionRead,
		events.SubmissionsAllRead,
		events.SubmissionDeleted,
		events.SubmissionsCleared,
	}, rec.types())

	rec.mu.Lock()
	data, ok := rec.events[0].Data.(events.SubmissionEventData)
	rec.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, sub.ID, data.SubmissionID)
}

func TestEvaluationStore_PersistFailureSkipsNotification(t *testing.T) {
	ctx := context.Background()
	records := memory.NewRecordMemory()
	store, _ := newTestEvaluationStore(t, records)
	rec := &eventRecorder{}
	store.Subscribe(rec.listen)

	records.FailWith = errors.New("quota exceeded")
	sub := store.SubmitEvaluation(ctx, sampleRequest("form-1", "A", 3))
	assert.Empty(t, rec.types())

	_, err := store.GetSubmission(sub.ID)
	assert.NoError(t, err)

	records.FailWith = nil
	store.MarkAsRead(ctx, sub.ID)
	assert.Equal(t, []events.EventType{events.SubmissionRead}, rec.types())
}

func TestEvaluationStore_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	first, _ := newTestEvaluationStore(t, cache.NewRecordRedis(client, "evalmate:"))
	req := sampleRequest("form-1", "Jordan", 4, 5)
	req.Evaluations[0].Responses["q2"] = models.TextResponse("Great teammate")
	req.Evaluations[1].Responses["q3"] = models.ChoicesResponse("Planning", "Testing")
	sub := first.SubmitEvaluation(ctx, req)
	first.MarkAsRead(ctx, sub.ID)

	second, _ := newTestEvaluationStore(t, cache.NewRecordRedis(client, "evalmate:"))
	got, err := second.GetSubmission(sub.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	assert.True(t, got.SubmittedAt.Equal(sub.SubmittedAt))
	assert.Equal(t, sub.Evaluations, got.Evaluations)
	assert.Equal(t, 4.5, got.Metadata.AvgRating)
}
