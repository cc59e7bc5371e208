package service

import (
	"sort"
	"time"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
)

const (
	TopHashtags = 10
	TopHours    = 3
	TopDays     = 3
)

type bucket struct {
	count int
	sum   float64
}

func (b *bucket) add(rate float64) {
	b.count++
	b.sum += rate
}

func (b bucket) avg() float64 {
	if b.count == 0 {
		return 0
	}
	return b.sum / float64(b.count)
}

// Summarize builds the metrics block from content records.
// Hashtags are ranked by average engagement, platforms by name,
// and posting times by average engagement with UTC hours and weekdays.
func Summarize(records []entity.ContentRecord) entity.MetricsSummary {
	summary := entity.MetricsSummary{
		TotalContent:       len(records),
		HashtagPerformance: []entity.HashtagPerformance{},
		PlatformComparison: []entity.PlatformComparison{},
		TimeBasedInsights: entity.TimeBasedInsights{
			BestPostingHours:   []int{},
			PeakEngagementDays: []string{},
		},
	}
	if len(records) == 0 {
		return summary
	}

	var total float64
	tags := map[string]*bucket{}
	platforms := map[string]*bucket{}
	var hours [24]bucket
	var days [7]bucket

	for _, c := range records {
		rate := c.EngagementRate
		total += rate

		for _, tag := range c.Hashtags {
			b, ok := tags[tag]
			if !ok {
				b = &bucket{}
				tags[tag] = b
			}
			b.add(rate)
		}

		p := string(c.Platform)
		b, ok := platforms[p]
		if !ok {
			b = &bucket{}
			platforms[p] = b
		}
		b.add(rate)

		if !c.PostedAt.IsZero() {
			at := c.PostedAt.UTC()
			hours[at.Hour()].add(rate)
			days[at.Weekday()].add(rate)
		}
	}

	summary.AverageEngagementRate = total / float64(len(records))

	for tag, b := range tags {
		summary.HashtagPerformance = append(summary.HashtagPerformance, entity.HashtagPerformance{
			Hashtag:           tag,
			UsageCount:        b.count,
			AvgEngagementRate: b.avg(),
		})
	}
	sort.Slice(summary.HashtagPerformance, func(i, j int) bool {
		a, b := summary.HashtagPerformance[i], summary.HashtagPerformance[j]
		if a.AvgEngagementRate != b.AvgEngagementRate {
			return a.AvgEngagementRate > b.AvgEngagementRate
		}
		if a.UsageCount != b.UsageCount {
			return a.UsageCount > b.UsageCount
		}
		return a.Hashtag < b.Hashtag
	})
	if len(summary.HashtagPerformance) > TopHashtags {
		summary.HashtagPerformance = summary.HashtagPerformance[:TopHashtags]
	}

	for p, b := range platforms {
		summary.PlatformComparison = append(summary.PlatformComparison, entity.PlatformComparison{
			Platform:       p,
			ContentCount:   b.count,
			AvgPerformance: b.avg(),
		})
	}
	sort.Slice(summary.PlatformComparison, func(i, j int) bool {
		return summary.PlatformComparison[i].Platform < summary.PlatformComparison[j].Platform
	})

	summary.TimeBasedInsights.BestPostingHours = append(summary.TimeBasedInsights.BestPostingHours, rank(hours[:], TopHours)...)
	for _, d := range rank(days[:], TopDays) {
		summary.TimeBasedInsights.PeakEngagementDays = append(summary.TimeBasedInsights.PeakEngagementDays, time.Weekday(d).String())
	}

	return summary
}

// rank returns the indexes of the n non-empty buckets with the best average, best first.
// Ties keep index order.
func rank(buckets []bucket, n int) []int {
	idx := make([]int, 0, len(buckets))
	for i, b := range buckets {
		if b.count > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return buckets[idx[i]].avg() > buckets[idx[j]].avg()
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}
