package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ugc-dashboard/reporting/internal/domain/report/dao"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service handles business logic for reports and collected content
type Service struct {
	reports dao.ReportRepository
	content dao.ContentRepository
	now     func() time.Time
}

// New creates a new report service
func New(reports dao.ReportRepository, content dao.ContentRepository) *Service {
	return &Service{
		reports: reports,
		content: content,
		now:     time.Now,
	}
}

// CreateInput represents input for creating a report
type CreateInput struct {
	Title           string
	Description     string
	Period          entity.Period
	GeneratedAt     time.Time // zero means now
	MetricsSummary  entity.MetricsSummary
	Recommendations []entity.Recommendation
}

// CreateReport validates and stores a new report
func (s *Service) CreateReport(ctx context.Context, in CreateInput) (*entity.Report, error) {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = s.now()
	}

	rep := &entity.Report{
		ID:              uuid.New().String(),
		Title:           in.Title,
		Description:     in.Description,
		Period:          entity.Period{Start: in.Period.Start.UTC(), End: in.Period.End.UTC()},
		GeneratedAt:     generatedAt.UTC(),
		MetricsSummary:  in.MetricsSummary,
		Recommendations: in.Recommendations,
	}
	if rep.Recommendations == nil {
		rep.Recommendations = []entity.Recommendation{}
	}

	if err := rep.Validate(); err != nil {
		return nil, err
	}

	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	return rep, nil
}

// GetReport retrieves a report by ID
func (s *Service) GetReport(ctx context.Context, id string) (*entity.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrReportNotFound
	}
	return s.reports.GetByID(ctx, id)
}

// DeleteReport deletes a report
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return entity.ErrReportNotFound
	}
	return s.reports.Delete(ctx, id)
}

// ListInput represents input for listing reports
type ListInput struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ListReports retrieves a page of reports and the total count
func (s *Service) ListReports(ctx context.Context, in ListInput) ([]entity.Report, int64, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	filter := dao.ReportFilter{From: in.From, To: in.To}

	reports, err := s.reports.List(ctx, filter, dao.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}

	total, err := s.reports.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// HasReportFor reports whether a stored report falls within the given period
func (s *Service) HasReportFor(ctx context.Context, period entity.Period) (bool, error) {
	start, end := period.Start.UTC(), period.End.UTC()
	n, err := s.reports.Count(ctx, dao.ReportFilter{From: &start, To: &end})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveContent assigns ids, engagement rates and collection time, then upserts the records
func (s *Service) SaveContent(ctx context.Context, records []entity.ContentRecord) (int, error) {
	now := s.now().UTC()

	for i := range records {
		c := &records[i]
		if !c.Platform.Valid() {
			return 0, fmt.Errorf("%w: %q", entity.ErrInvalidPlatform, c.Platform)
		}
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.Hashtags == nil {
			c.Hashtags = []string{}
		}
		c.EngagementRate = c.ComputeEngagementRate()
		c.CollectedAt = now
	}

	return s.content.Upsert(ctx, records)
}

// SummarizePeriod aggregates the content posted in [start, end)
func (s *Service) SummarizePeriod(ctx context.Context, period entity.Period) (entity.MetricsSummary, error) {
	if period.End.Before(period.Start) {
		return entity.MetricsSummary{}, entity.ErrInvalidPeriod
	}

	records, err := s.content.ListInPeriod(ctx, period.Start, period.End)
	if err != nil {
		return entity.MetricsSummary{}, err
	}
	if len(records) == 0 {
		return entity.MetricsSummary{}, entity.ErrNoContent
	}

	return Summarize(records), nil
}
