package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/validation"
)

const maxRecommendations = 5

// Completer sends one system and one user message to a chat model and returns the reply
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLMRecommender drafts recommendations with a chat model
type LLMRecommender struct {
	completer Completer
}

func NewLLMRecommender(c Completer) *LLMRecommender {
	return &LLMRecommender{completer: c}
}

const systemPrompt = `You are a social media analyst for user generated content campaigns.
Reply with a JSON object {"recommendations": [...]} and nothing else. Each recommendation has:
"title" (string), "description" (string),
"category" (one of content_strategy, engagement_optimization, hashtag_strategy, timing_strategy, creator_development, trending_topics, platform_optimization),
"priorityLevel" (one of low, medium, high, critical),
"confidenceScore" (number 0..1), "estimatedImpact" (number 0..1),
"actionableSteps" (array of short strings).
Return at most 5 recommendations ordered by priority.`

func (r *LLMRecommender) Recommend(ctx context.Context, in RecommendInput) ([]entity.Recommendation, error) {
	if r == nil || r.completer == nil {
		return nil, entity.ErrRecommenderOffline
	}

	payload, err := json.Marshal(struct {
		Period  entity.Period         `json:"period"`
		Metrics entity.MetricsSummary `json:"metrics"`
	}{in.Period, in.Summary})
	if err != nil {
		return nil, fmt.Errorf("encoding prompt: %w", err)
	}

	reply, err := r.completer.Complete(ctx, systemPrompt, "Weekly metrics:\n"+string(payload))
	if err != nil {
		return nil, fmt.Errorf("requesting recommendations: %w", err)
	}

	return parseRecommendations(reply)
}

// parseRecommendations accepts a bare array or an object with a recommendations key,
// optionally inside a markdown code fence. Entries failing validation are dropped.
func parseRecommendations(reply string) ([]entity.Recommendation, error) {
	body := strings.TrimSpace(reply)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}

	var recs []entity.Recommendation
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &recs); err != nil {
			return nil, fmt.Errorf("decoding recommendations: %w", err)
		}
	} else {
		var wrapped struct {
			Recommendations []entity.Recommendation `json:"recommendations"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, fmt.Errorf("decoding recommendations: %w", err)
		}
		recs = wrapped.Recommendations
	}

	valid := make([]entity.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.ActionableSteps == nil {
			rec.ActionableSteps = []string{}
		}
		if err := validation.ValidateStruct(rec); err != nil {
			continue
		}
		valid = append(valid, rec)
		if len(valid) == maxRecommendations {
			break
		}
	}
	if len(valid) == 0 {
		return nil, errors.New("model returned no usable recommendations")
	}

	return valid, nil
}

// RulesRecommender derives recommendations from the summary alone. Output is deterministic.
type RulesRecommender struct{}

func (RulesRecommender) Recommend(_ context.Context, in RecommendInput) ([]entity.Recommendation, error) {
	s := in.Summary
	var recs []entity.Recommendation

	if top, ok := s.TopHashtag(); ok {
		priority := entity.PriorityMedium
		if top.AvgEngagementRate >= s.AverageEngagementRate*1.2 {
			priority = entity.PriorityHigh
		}
		tag := document.Hashtag(top.Hashtag)
		recs = append(recs, entity.Recommendation{
			Title:           "Build on " + tag,
			Description:     fmt.Sprintf("%s averaged %s engagement across %d posts.", tag, document.Percent(top.AvgEngagementRate), top.UsageCount),
			Category:        entity.CategoryHashtagStrategy,
			PriorityLevel:   priority,
			ConfidenceScore: 0.7,
			EstimatedImpact: 0.5,
			ActionableSteps: []string{
				"Brief creators to include " + tag,
				"Pair " + tag + " with two related niche hashtags",
			},
		})
	}

	if hours := s.TimeBasedInsights.BestPostingHours; len(hours) > 0 {
		steps := []string{"Schedule posts around " + document.Hours(hours) + " UTC"}
		if days := s.TimeBasedInsights.PeakEngagementDays; len(days) > 0 {
			steps = append(steps, "Concentrate launches on "+strings.Join(days, ", "))
		}
		recs = append(recs, entity.Recommendation{
			Title:           "Post during peak hours",
			Description:     "Engagement was highest for content published at " + document.Hours(hours) + " UTC.",
			Category:        entity.CategoryTimingStrategy,
			PriorityLevel:   entity.PriorityMedium,
			ConfidenceScore: 0.65,
			EstimatedImpact: 0.4,
			ActionableSteps: steps,
		})
	}

	if len(s.PlatformComparison) > 1 {
		best := s.PlatformComparison[0]
		for _, pc := range s.PlatformComparison[1:] {
			if pc.AvgPerformance > best.AvgPerformance {
				best = pc
			}
		}
		name := document.Title(best.Platform)
		recs = append(recs, entity.Recommendation{
			Title:           "Prioritize " + name,
			Description:     fmt.Sprintf("%s content performed best at %s average engagement.", name, document.Percent(best.AvgPerformance)),
			Category:        entity.CategoryPlatformOptimization,
			PriorityLevel:   entity.PriorityMedium,
			ConfidenceScore: 0.6,
			EstimatedImpact: 0.45,
			ActionableSteps: []string{"Shift a larger share of creator briefs to " + name},
		})
	}

	if s.AverageEngagementRate < 2 {
		recs = append(recs, entity.Recommendation{
			Title:           "Lift overall engagement",
			Description:     "Average engagement is below 2%. Hooks and calls to action need work.",
			Category:        entity.CategoryEngagementOptimization,
			PriorityLevel:   entity.PriorityHigh,
			ConfidenceScore: 0.6,
			EstimatedImpact: 0.6,
			ActionableSteps: []string{"Open videos with a hook in the first two seconds", "End captions with a question"},
		})
	} else {
		recs = append(recs, entity.Recommendation{
			Title:           "Keep the current content mix",
			Description:     "Engagement is healthy. Continue the formats that worked this week.",
			Category:        entity.CategoryContentStrategy,
			PriorityLevel:   entity.PriorityLow,
			ConfidenceScore: 0.5,
			EstimatedImpact: 0.3,
			ActionableSteps: []string{"Repost the three best performing posts as remixes"},
		})
	}

	return recs, nil
}
