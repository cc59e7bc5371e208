package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/metrics"
)

const (
	defaultCollectLimit = 50
	maxCollectLimit     = 500
)

// CollectInput represents input for a collection run
type CollectInput struct {
	Platform  entity.Platform
	Hashtags  []string
	Usernames []string
	Limit     int
}

// CollectOutput represents output from a collection run
type CollectOutput struct {
	Collected int `json:"collected"`
	Stored    int `json:"stored"`
}

// CollectContent runs the scraping actor for a platform and stores what it returns
func (p *Policy) CollectContent(ctx context.Context, in CollectInput) (*CollectOutput, error) {
	if p.collector == nil {
		return nil, entity.ErrActorFailure
	}
	if !in.Platform.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidPlatform, in.Platform)
	}

	in.Hashtags = clean(in.Hashtags, "#")
	in.Usernames = clean(in.Usernames, "@")
	if len(in.Hashtags) == 0 && len(in.Usernames) == 0 {
		return nil, entity.ErrNoCollectTarget
	}
	switch {
	case in.Limit <= 0:
		in.Limit = defaultCollectLimit
	case in.Limit > maxCollectLimit:
		in.Limit = maxCollectLimit
	}

	records, err := p.collector.Collect(ctx, in)
	if err != nil {
		return nil, err
	}
	metrics.ContentCollected.WithLabelValues(string(in.Platform)).Add(float64(len(records)))

	stored, err := p.svc.SaveContent(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("storing collected content: %w", err)
	}

	p.logger.Info().
		Str("platform", string(in.Platform)).
		Int("collected", len(records)).
		Int("stored", stored).
		Msg("content collected")

	return &CollectOutput{Collected: len(records), Stored: stored}, nil
}

func clean(values []string, prefix string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimPrefix(strings.TrimSpace(v), prefix)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
