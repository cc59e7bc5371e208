package entity

import (
	"fmt"
	"time"

	"github.com/ugc-dashboard/reporting/internal/validation"
)

// Category groups recommendations by the area they address
type Category string

const (
	CategoryContentStrategy        Category = "content_strategy"
	CategoryEngagementOptimization Category = "engagement_optimization"
	CategoryHashtagStrategy        Category = "hashtag_strategy"
	CategoryTimingStrategy         Category = "timing_strategy"
	CategoryCreatorDevelopment     Category = "creator_development"
	CategoryTrendingTopics         Category = "trending_topics"
	CategoryPlatformOptimization   Category = "platform_optimization"
)

// Label returns the human readable form, e.g. "Content Strategy"
func (c Category) Label() string {
	switch c {
	case CategoryContentStrategy:
		return "Content Strategy"
	case CategoryEngagementOptimization:
		return "Engagement Optimization"
	case CategoryHashtagStrategy:
		return "Hashtag Strategy"
	case CategoryTimingStrategy:
		return "Timing Strategy"
	case CategoryCreatorDevelopment:
		return "Creator Development"
	case CategoryTrendingTopics:
		return "Trending Topics"
	case CategoryPlatformOptimization:
		return "Platform Optimization"
	default:
		return string(c)
	}
}

// Priority is the urgency of a recommendation
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Period is the reporting window
type Period struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtefield=Start"`
}

// HashtagPerformance holds usage and engagement for one hashtag
type HashtagPerformance struct {
	Hashtag           string  `json:"hashtag" validate:"required"`
	UsageCount        int     `json:"usageCount" validate:"gte=0"`
	AvgEngagementRate float64 `json:"avgEngagementRate"`
}

// PlatformComparison holds aggregated numbers for one platform
type PlatformComparison struct {
	Platform       string  `json:"platform" validate:"required"`
	ContentCount   int     `json:"contentCount" validate:"gte=0"`
	AvgPerformance float64 `json:"avgPerformance"`
}

// TimeBasedInsights holds the best times to post
type TimeBasedInsights struct {
	BestPostingHours   []int    `json:"bestPostingHours" validate:"dive,min=0,max=23"`
	PeakEngagementDays []string `json:"peakEngagementDays"`
}

// MetricsSummary is the aggregated metrics block of a report.
// Slices keep insertion order; the first hashtag is the "top hashtag".
type MetricsSummary struct {
	TotalContent          int                  `json:"totalContent" validate:"gte=0"`
	AverageEngagementRate float64              `json:"averageEngagementRate"`
	HashtagPerformance    []HashtagPerformance `json:"hashtagPerformance" validate:"dive"`
	PlatformComparison    []PlatformComparison `json:"platformComparison" validate:"dive"`
	TimeBasedInsights     TimeBasedInsights    `json:"timeBasedInsights"`
}

// TopHashtag returns the first hashtag entry, if any
func (m MetricsSummary) TopHashtag() (HashtagPerformance, bool) {
	if len(m.HashtagPerformance) == 0 {
		return HashtagPerformance{}, false
	}
	return m.HashtagPerformance[0], true
}

// Recommendation is one AI generated suggestion
type Recommendation struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	Category        Category `json:"category" validate:"oneof=content_strategy engagement_optimization hashtag_strategy timing_strategy creator_development trending_topics platform_optimization"`
	PriorityLevel   Priority `json:"priorityLevel" validate:"oneof=low medium high critical"`
	ConfidenceScore float64  `json:"confidenceScore" validate:"min=0,max=1"`
	EstimatedImpact float64  `json:"estimatedImpact" validate:"min=0,max=1"`
	ActionableSteps []string `json:"actionableSteps"`
}

// Report is a weekly performance report record
type Report struct {
	ID              string           `json:"id,omitempty"`
	Title           string           `json:"title" validate:"required"`
	Description     string           `json:"description,omitempty"`
	Period          Period           `json:"period"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	MetricsSummary  MetricsSummary   `json:"metricsSummary"`
	Recommendations []Recommendation `json:"recommendations" validate:"dive"`
}

// Validate checks the record against its field rules
func (r *Report) Validate() error {
	if err := validation.ValidateStruct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	return nil
}
