// Package document turns report records into downloadable artifacts: a
// paginated PDF, a section delimited CSV and a JSON serialization.
//
// PDF generation is split in two steps. Layout walks the report with a
// Writer that owns the page/cursor state and produces a Document of
// positioned ops; Render encodes those ops with fpdf. The footer pass runs
// between the two, once the page count is known.
package document

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/metrics"
)

// Section headings, in their fixed order
const (
	SectionSummary         = "Executive Summary"
	SectionKeyMetrics      = "Key Metrics"
	SectionPlatforms       = "Platform Performance"
	SectionTiming          = "Optimal Posting Times"
	SectionRecommendations = "AI-Powered Recommendations"
)

// DefaultAttribution is stamped bottom-left on every page
const DefaultAttribution = "Generated by UGC Dashboard"

const (
	blockIndent = 5.0
	stepIndent  = 10.0
)

// Format is an export format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat resolves a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// MIMEType returns the content type of the format
func (f Format) MIMEType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "application/pdf"
	}
}

// Artifact is a generated file ready for delivery
type Artifact struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Capturer produces a PNG bitmap of a named render target.
type Capturer interface {
	Capture(ctx context.Context, target string) ([]byte, error)
}

// Builder generates report documents. It keeps no state between calls and
// is safe for concurrent use.
type Builder struct {
	pageSize    PageSize
	attribution string
	newMeasurer func() Measurer
	capturer    Capturer
	render      func(*Document) ([]byte, error)
	now         func() time.Time
	logger      zerolog.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithPageSize sets the page format (A4 by default)
func WithPageSize(size PageSize) Option {
	return func(b *Builder) {
		b.pageSize = size
	}
}

// WithAttribution sets the footer attribution text
func WithAttribution(text string) Option {
	return func(b *Builder) {
		b.attribution = text
	}
}

// WithMeasurer makes every layout use m. m must be safe for concurrent use
// if the builder is shared.
func WithMeasurer(m Measurer) Option {
	return func(b *Builder) {
		b.newMeasurer = func() Measurer { return m }
	}
}

// WithCapturer enables the visual PDF path
func WithCapturer(c Capturer) Option {
	return func(b *Builder) {
		b.capturer = c
	}
}

// WithClock overrides the time source used for filenames
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithLogger sets the logger used for fallback warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a document builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		pageSize:    PageA4,
		attribution: DefaultAttribution,
		newMeasurer: func() Measurer { return NewFontMetrics() },
		render:      Render,
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build generates the artifact for format. A non-empty visualTarget selects
// the visual PDF path; it is ignored for CSV and JSON.
func (b *Builder) Build(ctx context.Context, r entity.Report, format Format, visualTarget string) (*Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatPDF:
		if visualTarget != "" {
			data, err = b.VisualPDF(ctx, r, visualTarget)
		} else {
			data, err = b.PDF(r)
		}
	case FormatCSV:
		data, err = b.CSV(r)
	case FormatJSON:
		data, err = b.JSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Filename: Filename(r.Title, b.now(), string(format)),
		MIMEType: format.MIMEType(),
		Data:     data,
	}, nil
}

// PDF lays out and encodes the report with the plain text layout.
func (b *Builder) PDF(r entity.Report) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.DocumentGenerationDuration.WithLabelValues(string(FormatPDF)).Observe(time.Since(start).Seconds())
	}()

	doc := b.Layout(r)
	data, err := b.render(doc)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	metrics.DocumentsGenerated.WithLabelValues(string(FormatPDF), "plain").Inc()
	metrics.DocumentPages.Observe(float64(len(doc.Pages)))
	return data, nil
}

// Layout positions every section of the report on pages and stamps the
// footers. Sections always come in the same order; optional ones are left
// out when they have no data.
func (b *Builder) Layout(r entity.Report) *Document {
	w := NewWriter(b.pageSize, b.newMeasurer())

	writeTitle(w, r)
	if strings.TrimSpace(r.Description) != "" {
		writeSummary(w, r.Description)
	}
	writeKeyMetrics(w, r.MetricsSummary)
	if len(r.MetricsSummary.PlatformComparison) > 0 {
		writePlatforms(w, r.MetricsSummary.PlatformComparison)
	}
	insights := r.MetricsSummary.TimeBasedInsights
	if len(insights.BestPostingHours) > 0 || len(insights.PeakEngagementDays) > 0 {
		writeTiming(w, insights)
	}
	if len(r.Recommendations) > 0 {
		writeRecommendations(w, r.Recommendations)
	}

	w.StampFooters(b.attribution)
	return w.Document(r.Title)
}

func writeTitle(w *Writer, r entity.Report) {
	w.WriteWrapped(r.Title, StyleTitle, 0)
	w.Space(4)
	w.WriteLine(fmt.Sprintf("Period: %s - %s", longDate(r.Period.Start), longDate(r.Period.End)), StyleBody, 0)
	if !r.GeneratedAt.IsZero() {
		w.WriteLine("Generated: "+r.GeneratedAt.UTC().Format("Jan 2, 2006 15:04 MST"), StyleFootnote, 0)
	}
	w.Space(8)
}

func writeSummary(w *Writer, description string) {
	w.Heading(SectionSummary)
	w.WriteWrapped(description, StyleBody, 0)
	w.Space(8)
}

func writeKeyMetrics(w *Writer, m entity.MetricsSummary) {
	w.Heading(SectionKeyMetrics)

	widths := []float64{w.ContentWidth() * 0.6, w.ContentWidth() * 0.4}
	w.WriteRow([]string{"Metric", "Value"}, widths, Style{Size: StyleCell.Size, Bold: true})
	w.Rule()

	topHashtag := "N/A"
	if top, ok := m.TopHashtag(); ok {
		topHashtag = Hashtag(top.Hashtag)
	}

	rows := [][]string{
		{"Total Content", strconv.Itoa(m.TotalContent)},
		{"Average Engagement Rate", Percent(m.AverageEngagementRate)},
		{"Top Hashtag", topHashtag},
		{"Platforms Analyzed", strconv.Itoa(len(m.PlatformComparison))},
	}
	for _, row := range rows {
		w.WriteRow(row, widths, StyleCell)
	}
	w.Space(8)
}

func writePlatforms(w *Writer, platforms []entity.PlatformComparison) {
	w.Heading(SectionPlatforms)
	for _, p := range platforms {
		// name + two detail lines stay on one page
		w.CheckBreak(StyleBodyBold.LineHeight() + 2*StyleBody.LineHeight())
		w.WriteLine(Title(p.Platform), StyleBodyBold, 0)
		w.WriteLine("Content Count: "+strconv.Itoa(p.ContentCount), StyleBody, blockIndent)
		w.WriteLine("Average Performance: "+Percent(p.AvgPerformance), StyleBody, blockIndent)
		w.Space(3)
	}
	w.Space(5)
}

func writeTiming(w *Writer, insights entity.TimeBasedInsights) {
	w.Heading(SectionTiming)
	if len(insights.BestPostingHours) > 0 {
		w.WriteWrapped("Best Posting Hours: "+Hours(insights.BestPostingHours), StyleBody, 0)
	}
	if len(insights.PeakEngagementDays) > 0 {
		w.WriteWrapped("Peak Engagement Days: "+strings.Join(insights.PeakEngagementDays, ", "), StyleBody, 0)
	}
	w.Space(8)
}

func writeRecommendations(w *Writer, recs []entity.Recommendation) {
	w.Heading(SectionRecommendations)
	for i, rec := range recs {
		// keep the numbered title with its category and score lines
		w.CheckBreak(StyleBodyBold.LineHeight() + 2*StyleBody.LineHeight())
		w.WriteWrapped(fmt.Sprintf("%d. %s", i+1, rec.Title), StyleBodyBold, 0)
		w.WriteLine(fmt.Sprintf("Category: %s | Priority: %s",
			rec.Category.Label(), strings.ToUpper(string(rec.PriorityLevel))), StyleBody, blockIndent)
		w.WriteLine(fmt.Sprintf("Confidence: %s | Impact: %s",
			Score(rec.ConfidenceScore), Score(rec.EstimatedImpact)), StyleBody, blockIndent)

		if rec.Description != "" {
			w.Space(1)
			w.WriteWrapped(rec.Description, StyleBody, blockIndent)
		}

		if len(rec.ActionableSteps) > 0 {
			w.Space(1)
			w.WriteLine("Action Steps:", StyleBodyBold, blockIndent)
			for _, step := range rec.ActionableSteps {
				w.WriteWrapped("• "+step, StyleBody, stepIndent)
			}
		}
		w.Space(6)
	}
}
