package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

const (
	summarySheet     = "Summary"
	evaluationsSheet = "Evaluations"
	xlsxTimeLayout   = "2006-01-02 15:04"
)

// ===== SERVICE INTERFACE =====

type ReportService interface {
	// Faculty submission list with the report filters and orderings
	ListSubmissions(ctx context.Context, query *models.SubmissionQuery) ([]*models.Submission, error)

	// Opens one submission, marking it read
	ViewSubmission(ctx context.Context, id string) (*models.Submission, error)

	// Exports
	ExportJSON(ctx context.Context) (*models.SubmissionExport, error)
	ExportXLSX(ctx context.Context, query *models.SubmissionQuery) (*bytes.Buffer, error)
}

type reportService struct {
	evaluations *EvaluationStore
	validator   *validator.Validator
	logger      *slog.Logger
	now         func() time.Time
}

func NewReportService(evaluations *EvaluationStore, v *validator.Validator, logger *slog.Logger) ReportService {
	return &reportService{
		evaluations: evaluations,
		validator:   v,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *reportService) ListSubmissions(ctx context.Context, query *models.SubmissionQuery) ([]*models.Submission, error) {
	if query == nil {
		query = &models.SubmissionQuery{}
	}
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}

	var subs []*models.Submission
	switch {
	case query.Student != "":
		subs = s.evaluations.GetSubmissionsByStudent(query.Student)
	case query.FormID != "":
		subs = s.evaluations.GetSubmissionsByForm(query.FormID)
	default:
		subs = s.evaluations.GetAllSubmissions()
	}

	subs = FilterSubmissions(subs, query, s.now())
	SortSubmissions(subs, query.Sort)
	return subs, nil
}

func (s *reportService) ViewSubmission(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.evaluations.GetSubmission(id)
	if err != nil {
		return nil, err
	}
	if !sub.IsRead {
		s.evaluations.MarkAsRead(ctx, id)
		sub.IsRead = true
	}
	return sub, nil
}

func (s *reportService) ExportJSON(ctx context.Context) (*models.SubmissionExport, error) {
	return s.evaluations.ExportData(), nil
}

// ExportXLSX writes a workbook with a statistics summary and one row per
// teammate evaluation of the selected submissions.
func (s *reportService) ExportXLSX(ctx context.Context, query *models.SubmissionQuery) (*bytes.Buffer, error) {
	subs, err := s.ListSubmissions(ctx, query)
	if err != nil {
		return nil, err
	}
	stats := s.evaluations.GetStats()

	f := excelize.NewFile()
	defer f.Close()

	summaryIdx, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if _, err := f.NewSheet(evaluationsSheet); err != nil {
		return nil, fmt.Errorf("create evaluations sheet: %w", err)
	}
	f.SetActiveSheet(summaryIdx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// Summary
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Exported at", s.now().Format(xlsxTimeLayout)},
		{"Total submissions", stats.Total},
		{"Submitted today", stats.TodaySubmissions},
		{"Unread", stats.Unread},
		{"Average rating", stats.AverageRating},
		{"Rows in this export", len(subs)},
	}
	for r, row := range summary {
		if err := writeRow(f, summarySheet, r+1, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return nil, fmt.Errorf("style summary header: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return nil, fmt.Errorf("size summary columns: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 20); err != nil {
		return nil, fmt.Errorf("size summary columns: %w", err)
	}

	// Evaluations
	questionIDs := responseColumns(subs)
	headers := []interface{}{"Submission", "Submitted", "Form", "Course", "Student", "Team", "Teammate", "Avg rating", "Read"}
	for _, qid := range questionIDs {
		headers = append(headers, qid)
	}
	if err := writeRow(f, evaluationsSheet, 1, headers); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, fmt.Errorf("evaluations columns: %w", err)
	}
	if err := f.SetCellStyle(evaluationsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style evaluations header: %w", err)
	}
	if err := f.SetColWidth(evaluationsSheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("size evaluations columns: %w", err)
	}

	row := 2
	for _, sub := range subs {
		for _, ev := range sub.Evaluations {
			values := []interface{}{
				sub.ID,
				sub.SubmittedAt.Format(xlsxTimeLayout),
				sub.FormTitle,
				sub.Course,
				sub.StudentName,
				sub.TeamID,
				ev.TeammateName,
				sub.Metadata.AvgRating,
				sub.IsRead,
			}
			for _, qid := range questionIDs {
				values = append(values, cellValue(ev.Responses[qid]))
			}
			if err := writeRow(f, evaluationsSheet, row, values); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("Failed to write submissions workbook", "error", err)
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("Submissions exported", "format", "xlsx", "submissions", len(subs), "rows", row-2)
	return buf, nil
}

// writeRow fills one sheet row starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

// ===== FILTERING / ORDERING =====

// FilterSubmissions keeps the submissions matching the query's filter. Today
// is the local calendar date of now.
func FilterSubmissions(subs []*models.Submission, query *models.SubmissionQuery, now time.Time) []*models.Submission {
	out := subs[:0:0]
	for _, sub := range subs {
		if query.FormID != "" && sub.FormID != query.FormID {
			continue
		}
		switch query.Filter {
		case models.ReportFilterToday:
			if !SameDay(sub.SubmittedAt, now, time.Local) {
				continue
			}
		case models.ReportFilterUnread:
			if sub.IsRead {
				continue
			}
		}
		out = append(out, sub)
	}
	return out
}

// SortSubmissions orders submissions in place. The empty order is "recent".
func SortSubmissions(subs []*models.Submission, order string) {
	var less func(a, b *models.Submission) bool
	switch order {
	case models.ReportSortOldest:
		less = func(a, b *models.Submission) bool { return a.SubmittedAt.Before(b.SubmittedAt) }
	case models.ReportSortRating:
		less = func(a, b *models.Submission) bool { return a.Metadata.AvgRating > b.Metadata.AvgRating }
	case models.ReportSortCourse:
		less = func(a, b *models.Submission) bool { return strings.ToLower(a.Course) < strings.ToLower(b.Course) }
	case models.ReportSortForm:
		less = func(a, b *models.Submission) bool { return strings.ToLower(a.FormTitle) < strings.ToLower(b.FormTitle) }
	case models.ReportSortStudent:
		less = func(a, b *models.Submission) bool { return strings.ToLower(a.StudentName) < strings.ToLower(b.StudentName) }
	default:
		less = func(a, b *models.Submission) bool { return a.SubmittedAt.After(b.SubmittedAt) }
	}
	sort.SliceStable(subs, func(i, j int) bool { return less(subs[i], subs[j]) })
}

// responseColumns lists every question id answered in subs, sorted.
func responseColumns(subs []*models.Submission) []string {
	seen := make(map[string]bool)
	for _, sub := range subs {
		for _, ev := range sub.Evaluations {
			for qid := range ev.Responses {
				seen[qid] = true
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for qid := range seen {
		ids = append(ids, qid)
	}
	sort.Strings(ids)
	return ids
}

func cellValue(r models.Response) interface{} {
	if v, ok := r.Number(); ok {
		return v
	}
	return r.String()
}
