package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/domain/report/policy"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/actor"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/capture"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/llm"
)

// captureAdapter adapts capture.Capturer to document.Capturer
type captureAdapter struct {
	capturer capture.Capturer
}

func (a *captureAdapter) Capture(ctx context.Context, target string) ([]byte, error) {
	data, err := a.capturer.Capture(ctx, target)
	if errors.Is(err, capture.ErrTargetNotFound) {
		return nil, fmt.Errorf("%w: %s", document.ErrCaptureTargetMissing, target)
	}
	return data, err
}

type postRunner interface {
	Run(ctx context.Context, in actor.RunInput) ([]actor.Post, error)
}

// collectorAdapter adapts the actor client to policy.ContentCollector
type collectorAdapter struct {
	runner postRunner
}

func (a *collectorAdapter) Collect(ctx context.Context, in policy.CollectInput) ([]entity.ContentRecord, error) {
	posts, err := a.runner.Run(ctx, actor.RunInput{
		Platform:  actor.Platform(in.Platform),
		Hashtags:  in.Hashtags,
		Usernames: in.Usernames,
		Limit:     in.Limit,
	})
	switch {
	case err == nil:
	case errors.Is(err, actor.ErrUnauthorized):
		return nil, entity.ErrActorUnauthorized
	case errors.Is(err, actor.ErrRateLimited):
		return nil, entity.ErrActorRateLimited
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %v", entity.ErrActorFailure, err)
	}

	records := make([]entity.ContentRecord, 0, len(posts))
	for _, p := range posts {
		records = append(records, entity.ContentRecord{
			Platform:   in.Platform,
			ExternalID: p.ExternalID,
			URL:        p.URL,
			Author:     p.Author,
			Caption:    p.Caption,
			Hashtags:   p.Hashtags,
			Likes:      p.Likes,
			Comments:   p.Comments,
			Shares:     p.Shares,
			Views:      p.Views,
			PostedAt:   p.PostedAt,
		})
	}
	return records, nil
}

type chatClient interface {
	ChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
}

// completerAdapter adapts the chat client to policy.Completer
type completerAdapter struct {
	client      chatClient
	temperature float64
	maxTokens   int
}

func (a *completerAdapter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.ChatCompletion(ctx, llm.ChatCompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    a.temperature,
		MaxTokens:      a.maxTokens,
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}
	return resp.Content()
}
