package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/evalmate-service/internal/events"
	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/repositories"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
)

const (
	DefaultRecentLimit = 10
	ratingFloor        = 1
	ratingCeiling      = 5
)

// EvaluationStore owns submitted peer evaluations, newest first.
type EvaluationStore struct {
	mu          sync.RWMutex
	submissions []*models.Submission
	records     repositories.RecordStore
	emitter     *events.Emitter
	logger      *slog.Logger
	now         func() time.Time
}

func NewEvaluationStore(ctx context.Context, records repositories.RecordStore, emitter *events.Emitter, logger *slog.Logger) *EvaluationStore {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NewEmitter(logger)
	}
	s := &EvaluationStore{
		records: records,
		emitter: emitter,
		logger:  logger.With("store", "submissions"),
		now:     time.Now,
	}
	loadCollection(ctx, records, repositories.SubmissionsKey, &s.submissions, s.logger)
	s.logger.Info("Evaluation store loaded", "submissions", len(s.submissions))
	return s
}

// SubmitEvaluation records req as a new unread submission at the head of the
// collection. The request is trusted; validation belongs to the wizard.
func (s *EvaluationStore) SubmitEvaluation(ctx context.Context, req *models.SubmissionRequest) *models.Submission {
	now := s.now()
	sub := &models.Submission{
		ID:          utils.NewID("submission", now),
		FormID:      req.FormID,
		FormTitle:   req.FormTitle,
		Course:      req.Course,
		StudentName: req.StudentName,
		TeamID:      req.TeamID,
		SubmittedAt: now,
		Status:      models.SubmissionSubmitted,
		Metadata: models.SubmissionMetadata{
			TotalTeammates: len(req.Teammates),
			AvgRating:      AverageRating(req.Evaluations),
			SubmissionTime: req.SubmissionTime,
		},
	}
	if strings.TrimSpace(sub.StudentName) == "" {
		sub.StudentName = models.DefaultStudentName
	}
	if sub.Metadata.SubmissionTime == "" {
		sub.Metadata.SubmissionTime = models.DefaultSubmissionTime
	}
	sub.Teammates = append([]string{}, req.Teammates...)
	sub.Evaluations = make([]models.TeammateEvaluation, len(req.Evaluations))
	for i, e := range req.Evaluations {
		sub.Evaluations[i] = e.Clone()
	}

	s.mu.Lock()
	s.submissions = append([]*models.Submission{sub}, s.submissions...)
	ok := s.persistLocked(ctx)
	out := sub.Clone()
	s.mu.Unlock()

	if ok {
		s.logger.Info("Evaluation submitted",
			"submission_id", out.ID,
			"form_id", out.FormID,
			"teammates", out.Metadata.TotalTeammates)
		s.emit(events.SubmissionCreated, events.SubmissionEventData{SubmissionID: out.ID, Submission: out.Clone()})
	}
	return out
}

// ===== QUERIES =====

func (s *EvaluationStore) GetAllSubmissions() []*models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSubmissions(s.submissions, nil)
}

func (s *EvaluationStore) GetSubmission(id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.submissions[i].Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
}

func (s *EvaluationStore) GetSubmissionsByForm(formID string) []*models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSubmissions(s.submissions, func(sub *models.Submission) bool {
		return sub.FormID == formID
	})
}

// GetSubmissionsByStudent returns the student's submissions, newest first.
// student is compared verbatim with the stored student name.
func (s *EvaluationStore) GetSubmissionsByStudent(student string) []*models.Submission {
	s.mu.RLock()
	out := cloneSubmissions(s.submissions, func(sub *models.Submission) bool {
		return sub.StudentName == student
	})
	s.mu.RUnlock()

	SortNewestFirst(out)
	return out
}

// GetRecentSubmissions takes the first limit submissions of the collection
// and orders them newest first. limit <= 0 means DefaultRecentLimit.
func (s *EvaluationStore) GetRecentSubmissions(limit int) []*models.Submission {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.RLock()
	head := s.submissions
	if len(head) > limit {
		head = head[:limit]
	}
	out := cloneSubmissions(head, nil)
	s.mu.RUnlock()

	SortNewestFirst(out)
	return out
}

func (s *EvaluationStore) GetUnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unreadLocked()
}

// GetStats summarises the collection. average_rating is the mean of the
// per-submission averages, each already rounded to one decimal.
func (s *EvaluationStore) GetStats() models.SubmissionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

// ExportData bundles every submission with the current statistics.
func (s *EvaluationStore) ExportData() *models.SubmissionExport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.SubmissionExport{
		Submissions: cloneSubmissions(s.submissions, nil),
		ExportedAt:  s.now(),
		Stats:       s.statsLocked(),
	}
}

// ===== MUTATIONS =====

// MarkAsRead flags one submission as read. Unknown ids are ignored.
func (s *EvaluationStore) MarkAsRead(ctx context.Context, id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	updated := s.submissions[i].Clone()
	updated.IsRead = true
	s.submissions[i] = updated
	ok := s.persistLocked(ctx)
	s.mu.Unlock()

	if ok {
		s.emit(events.SubmissionRead, events.SubmissionEventData{SubmissionID: id})
	}
}

func (s *EvaluationStore) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	changed := 0
	for i, sub := range s.submissions {
		if !sub.IsRead {
			updated := sub.Clone()
			updated.IsRead = true
			s.submissions[i] = updated
			changed++
		}
	}
	ok := s.persistLocked(ctx)
	s.mu.Unlock()

	if ok {
		s.emit(events.SubmissionsAllRead, events.BulkEventData{Count: changed})
	}
}

func (s *EvaluationStore) DeleteSubmission(ctx context.Context, id string) (*models.Submission, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
	}
	removed := s.submissions[i]
	s.submissions = append(s.submissions[:i:i], s.submissions[i+1:]...)
	ok := s.persistLocked(ctx)
	s.mu.Unlock()

	if ok {
		s.emit(events.SubmissionDeleted, events.SubmissionEventData{SubmissionID: id})
	}
	return removed, nil
}

// ClearAll drops every submission and removes the stored record.
func (s *EvaluationStore) ClearAll(ctx context.Context) {
	s.mu.Lock()
	count := len(s.submissions)
	s.submissions = nil
	ok := deleteCollection(ctx, s.records, repositories.SubmissionsKey, s.logger)
	s.mu.Unlock()

	if ok {
		s.emit(events.SubmissionsCleared, events.BulkEventData{Count: count})
	}
}

// Subscribe registers l for submission events and returns its disposer.
func (s *EvaluationStore) Subscribe(l events.Listener) func() {
	return s.emitter.Subscribe(l)
}

// ===== CALCULATIONS =====

// AverageRating is the mean of every numeric answer in [1,5] across all
// teammates, rounded to one decimal; 0 when there is none.
func AverageRating(evaluations []models.TeammateEvaluation) float64 {
	var sum float64
	var n int
	for _, e := range evaluations {
		for _, r := range e.Responses {
			if v, ok := r.Number(); ok && v >= ratingFloor && v <= ratingCeiling {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return roundTenth(sum / float64(n))
}

// SortNewestFirst orders submissions by submitted_at, most recent first.
func SortNewestFirst(subs []*models.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].SubmittedAt.After(subs[j].SubmittedAt)
	})
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// ===== HELPERS =====

func (s *EvaluationStore) statsLocked() models.SubmissionStats {
	now := s.now()
	stats := models.SubmissionStats{
		Total:      len(s.submissions),
		Unread:     s.unreadLocked(),
		FormCounts: make(map[string]int),
	}
	var ratingSum float64
	for _, sub := range s.submissions {
		if SameDay(sub.SubmittedAt, now, time.Local) {
			stats.TodaySubmissions++
		}
		ratingSum += sub.Metadata.AvgRating
		stats.FormCounts[sub.FormID]++
	}
	if len(s.submissions) > 0 {
		stats.AverageRating = roundTenth(ratingSum / float64(len(s.submissions)))
	}
	return stats
}

func (s *EvaluationStore) unreadLocked() int {
	count := 0
	for _, sub := range s.submissions {
		if !sub.IsRead {
			count++
		}
	}
	return count
}

func (s *EvaluationStore) persistLocked(ctx context.Context) bool {
	subs := s.submissions
	if subs == nil {
		subs = []*models.Submission{}
	}
	return saveCollection(ctx, s.records, repositories.SubmissionsKey, subs, s.logger)
}

func (s *EvaluationStore) indexOf(id string) int {
	for i, sub := range s.submissions {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

func (s *EvaluationStore) emit(t events.EventType, data interface{}) {
	s.emitter.Emit(events.NewEvent(t, s.now(), data))
}

func cloneSubmissions(subs []*models.Submission, keep func(*models.Submission) bool) []*models.Submission {
	out := make([]*models.Submission, 0, len(subs))
	for _, sub := range subs {
		if keep == nil || keep(sub) {
			out = append(out, sub.Clone())
		}
	}
	return out
}
