package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
)

func record(p entity.Platform, rate float64, at time.Time, tags ...string) entity.ContentRecord {
	return entity.ContentRecord{Platform: p, EngagementRate: rate, PostedAt: at, Hashtags: tags}
}

func TestSummarize(t *testing.T) {
	mon9 := time.Date(2024, 3, 4, 9, 10, 0, 0, time.UTC)
	mon18 := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	fri18 := time.Date(2024, 3, 8, 18, 30, 0, 0, time.UTC)
	sat12 := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	s := Summarize([]entity.ContentRecord{
		record(entity.PlatformTikTok, 8, fri18, "dance", "ootd"),
		record(entity.PlatformInstagram, 2, mon9, "ootd"),
		record(entity.PlatformInstagram, 4, mon18, "style"),
		record(entity.PlatformTikTok, 6, sat12, "dance"),
	})

	assert.Equal(t, 4, s.TotalContent)
	assert.InDelta(t, 5.0, s.AverageEngagementRate, 1e-9)

	require.Len(t, s.HashtagPerformance, 3)
	assert.Equal(t, entity.HashtagPerformance{Hashtag: "dance", UsageCount: 2, AvgEngagementRate: 7}, s.HashtagPerformance[0])
	assert.Equal(t, "ootd", s.HashtagPerformance[1].Hashtag)
	assert.Equal(t, "style", s.HashtagPerformance[2].Hashtag)

	assert.Equal(t, []entity.PlatformComparison{
		{Platform: "instagram", ContentCount: 2, AvgPerformance: 3},
		{Platform: "tiktok", ContentCount: 2, AvgPerformance: 7},
	}, s.PlatformComparison)

	// hour 18 averages (8+4)/2 = 6, tied with 12
	assert.Equal(t, []int{12, 18, 9}, s.TimeBasedInsights.BestPostingHours)
	assert.Equal(t, []string{"Friday", "Saturday", "Monday"}, s.TimeBasedInsights.PeakEngagementDays)
}

func TestSummarize_TopHashtagsCapped(t *testing.T) {
	at := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	var records []entity.ContentRecord
	for i := 0; i < 15; i++ {
		records = append(records, record(entity.PlatformInstagram, float64(i), at, fmt.Sprintf("tag%02d", i)))
	}

	s := Summarize(records)

	require.Len(t, s.HashtagPerformance, TopHashtags)
	assert.Equal(t, "tag14", s.HashtagPerformance[0].Hashtag)
	for i := 1; i < len(s.HashtagPerformance); i++ {
		assert.GreaterOrEqual(t, s.HashtagPerformance[i-1].AvgEngagementRate, s.HashtagPerformance[i].AvgEngagementRate)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.TotalContent)
	assert.Equal(t, float64(0), s.AverageEngagementRate)
	assert.NotNil(t, s.HashtagPerformance)
	assert.NotNil(t, s.TimeBasedInsights.BestPostingHours)
}
