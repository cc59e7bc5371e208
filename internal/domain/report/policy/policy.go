package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ugc-dashboard/reporting/internal/delivery"
	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/domain/report/service"
	"github.com/ugc-dashboard/reporting/internal/metrics"
)

const reportWindow = 7 * 24 * time.Hour

// DocumentBuilder renders reports into downloadable artifacts
type DocumentBuilder interface {
	Build(ctx context.Context, r entity.Report, format document.Format, visualTarget string) (*document.Artifact, error)
}

// Deliverer hands an artifact to storage or back to the caller
type Deliverer interface {
	Deliver(ctx context.Context, a *document.Artifact) (*delivery.Result, error)
}

// ContentCollector runs a scraping job and returns the posts it found.
// Implementations map upstream failures to the entity.ErrActor* errors.
type ContentCollector interface {
	Collect(ctx context.Context, in CollectInput) ([]entity.ContentRecord, error)
}

// Recommender drafts recommendations for a metrics summary
type Recommender interface {
	Recommend(ctx context.Context, in RecommendInput) ([]entity.Recommendation, error)
}

// RecommendInput is what a recommender sees of a report
type RecommendInput struct {
	Period  entity.Period
	Summary entity.MetricsSummary
}

// Policy orchestrates report use-cases
type Policy struct {
	svc         *service.Service
	builder     DocumentBuilder
	deliverer   Deliverer
	collector   ContentCollector
	recommender Recommender
	fallback    Recommender
	logger      zerolog.Logger
	now         func() time.Time
}

// Option configures a Policy
type Option func(*Policy)

// WithCollector enables content collection
func WithCollector(c ContentCollector) Option {
	return func(p *Policy) {
		p.collector = c
	}
}

// WithRecommender sets the primary recommender. Rules are used when it is absent or fails.
func WithRecommender(r Recommender) Option {
	return func(p *Policy) {
		p.recommender = r
	}
}

// WithLogger sets the policy logger
func WithLogger(l zerolog.Logger) Option {
	return func(p *Policy) {
		p.logger = l
	}
}

// New creates a new report policy
func New(svc *service.Service, builder DocumentBuilder, deliverer Deliverer, opts ...Option) *Policy {
	p := &Policy{
		svc:       svc,
		builder:   builder,
		deliverer: deliverer,
		fallback:  RulesRecommender{},
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateReport stores a report supplied by the caller
func (p *Policy) CreateReport(ctx context.Context, in service.CreateInput) (*entity.Report, error) {
	return p.svc.CreateReport(ctx, in)
}

// GetReport retrieves a report by ID
func (p *Policy) GetReport(ctx context.Context, id string) (*entity.Report, error) {
	return p.svc.GetReport(ctx, id)
}

// DeleteReport deletes a report
func (p *Policy) DeleteReport(ctx context.Context, id string) error {
	return p.svc.DeleteReport(ctx, id)
}

// ListReportsOutput represents output from listing reports
type ListReportsOutput struct {
	Reports []entity.Report
	Total   int64
}

// ListReports retrieves a page of reports
func (p *Policy) ListReports(ctx context.Context, in service.ListInput) (*ListReportsOutput, error) {
	reports, total, err := p.svc.ListReports(ctx, in)
	if err != nil {
		return nil, err
	}
	return &ListReportsOutput{Reports: reports, Total: total}, nil
}

// ExportInput represents input for exporting a report
type ExportInput struct {
	ID           string
	Format       string
	VisualTarget string // dashboard view to capture; PDF only
}

// ExportReport renders a stored report into a downloadable artifact
func (p *Policy) ExportReport(ctx context.Context, in ExportInput) (*document.Artifact, error) {
	format, err := document.ParseFormat(in.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidFormat, in.Format)
	}

	rep, err := p.svc.GetReport(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	artifact, err := p.builder.Build(ctx, *rep, format, in.VisualTarget)
	if err != nil {
		return nil, fmt.Errorf("building %s for report %s: %w", format, rep.ID, err)
	}

	return artifact, nil
}

// PublishReport exports a report and delivers it through the configured chain
func (p *Policy) PublishReport(ctx context.Context, in ExportInput) (*delivery.Result, error) {
	artifact, err := p.ExportReport(ctx, in)
	if err != nil {
		return nil, err
	}

	res, err := p.deliverer.Deliver(ctx, artifact)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("report_id", in.ID).
		Str("method", string(res.Method)).
		Str("filename", res.Filename).
		Int("size", res.Size).
		Msg("report published")

	return res, nil
}

// GenerateInput represents input for generating a weekly report
type GenerateInput struct {
	End   time.Time // exclusive; zero means the start of today, UTC
	Title string    // optional
}

// GenerateWeeklyReport aggregates the week before End, drafts recommendations and stores the report
func (p *Policy) GenerateWeeklyReport(ctx context.Context, in GenerateInput) (*entity.Report, error) {
	end := in.End.UTC()
	if in.End.IsZero() {
		end = p.now().UTC().Truncate(24 * time.Hour)
	}
	period := entity.Period{Start: end.Add(-reportWindow), End: end}

	summary, err := p.svc.SummarizePeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	recs, source, err := p.recommend(ctx, RecommendInput{Period: period, Summary: summary})
	if err != nil {
		return nil, fmt.Errorf("drafting recommendations: %w", err)
	}
	metrics.ReportsGenerated.WithLabelValues(source).Inc()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Weekly UGC Report"
	}

	return p.svc.CreateReport(ctx, service.CreateInput{
		Title:           title,
		Description:     describe(summary),
		Period:          period,
		MetricsSummary:  summary,
		Recommendations: recs,
	})
}

func (p *Policy) recommend(ctx context.Context, in RecommendInput) ([]entity.Recommendation, string, error) {
	if p.recommender != nil {
		recs, err := p.recommender.Recommend(ctx, in)
		if err == nil && len(recs) > 0 {
			return recs, "llm", nil
		}
		if err == nil {
			err = errors.New("no recommendations returned")
		}
		p.logger.Warn().Err(err).Msg("recommender failed, using rules")
	}

	recs, err := p.fallback.Recommend(ctx, in)
	if err != nil {
		return nil, "", err
	}
	return recs, "rules", nil
}

// ProcessWeeklyReports generates the report for the week that ended today unless one exists
func (p *Policy) ProcessWeeklyReports(ctx context.Context) error {
	end := p.now().UTC().Truncate(24 * time.Hour)
	period := entity.Period{Start: end.Add(-reportWindow), End: end}

	exists, err := p.svc.HasReportFor(ctx, period)
	if err != nil {
		return fmt.Errorf("checking existing reports: %w", err)
	}
	if exists {
		p.logger.Debug().Time("period_end", end).Msg("weekly report already generated")
		return nil
	}

	rep, err := p.GenerateWeeklyReport(ctx, GenerateInput{End: end})
	if errors.Is(err, entity.ErrNoContent) {
		p.logger.Info().Time("period_end", end).Msg("no content for weekly report")
		return nil
	}
	if err != nil {
		return fmt.Errorf("generating weekly report: %w", err)
	}

	p.logger.Info().Str("report_id", rep.ID).Time("period_end", end).Msg("weekly report generated")
	return nil
}

func describe(s entity.MetricsSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d posts analyzed with an average engagement rate of %s.", s.TotalContent, document.Percent(s.AverageEngagementRate))
	if top, ok := s.TopHashtag(); ok {
		fmt.Fprintf(&b, " %s led hashtags at %s.", document.Hashtag(top.Hashtag), document.Percent(top.AvgEngagementRate))
	}
	return b.String()
}
