package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/metrics"
)

// CSV section header lines. Downstream tooling splits exports on these, so
// the text must not change.
const (
	CSVReportDetails      = "Report Details"
	CSVMetrics            = "Metrics"
	CSVHashtagPerformance = "Hashtag Performance"
	CSVPlatformComparison = "Platform Comparison"
	CSVRecommendations    = "Recommendations"
)

// CSV writes the report as blank-line separated CSV sections. Free text
// columns are always quoted; numeric columns never are.
func (b *Builder) CSV(r entity.Report) ([]byte, error) {
	start := time.Now()
	m := r.MetricsSummary

	var sb strings.Builder
	line := func(fields ...string) {
		sb.WriteString(strings.Join(fields, ","))
		sb.WriteByte('\n')
	}

	line(CSVReportDetails)
	line("Title", quote(r.Title))
	line("Description", quote(r.Description))
	line("Period Start", isoDate(r.Period.Start))
	line("Period End", isoDate(r.Period.End))
	line("Generated At", r.GeneratedAt.UTC().Format(time.RFC3339))
	line()

	line(CSVMetrics)
	line("Total Content", strconv.Itoa(m.TotalContent))
	line("Average Engagement Rate", Percent(m.AverageEngagementRate))
	line()

	line(CSVHashtagPerformance)
	line("Hashtag", "Usage Count", "Avg Engagement Rate")
	for _, h := range m.HashtagPerformance {
		line(quote(h.Hashtag), strconv.Itoa(h.UsageCount), Percent(h.AvgEngagementRate))
	}
	line()

	line(CSVPlatformComparison)
	line("Platform", "Content Count", "Avg Performance")
	for _, p := range m.PlatformComparison {
		line(quote(p.Platform), strconv.Itoa(p.ContentCount), Percent(p.AvgPerformance))
	}
	line()

	line(CSVRecommendations)
	line("Title", "Category", "Priority", "Confidence", "Impact")
	for _, rec := range r.Recommendations {
		line(quote(rec.Title), quote(string(rec.Category)), quote(string(rec.PriorityLevel)),
			Score(rec.ConfidenceScore), Score(rec.EstimatedImpact))
	}

	metrics.DocumentGenerationDuration.WithLabelValues(string(FormatCSV)).Observe(time.Since(start).Seconds())
	metrics.DocumentsGenerated.WithLabelValues(string(FormatCSV), "plain").Inc()
	return []byte(sb.String()), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// JSON serializes the full report. ParseJSON reverses it.
func (b *Builder) JSON(r entity.Report) ([]byte, error) {
	start := time.Now()
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report json: %w", err)
	}
	metrics.DocumentGenerationDuration.WithLabelValues(string(FormatJSON)).Observe(time.Since(start).Seconds())
	metrics.DocumentsGenerated.WithLabelValues(string(FormatJSON), "plain").Inc()
	return data, nil
}

// ParseJSON decodes a report produced by JSON
func ParseJSON(data []byte) (entity.Report, error) {
	var r entity.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return entity.Report{}, fmt.Errorf("decoding report json: %w", err)
	}
	return r, nil
}

// Filename derives a download name: spaces in the title become
// underscores and the date is appended, e.g. "Weekly_Report_2024-03-04.pdf".
func Filename(title string, at time.Time, ext string) string {
	name := strings.Join(strings.Fields(title), "_")
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(name)
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("%s_%s.%s", name, isoDate(at), strings.TrimPrefix(ext, "."))
}
