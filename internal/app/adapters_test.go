package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/domain/report/policy"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/actor"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/capture"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/llm"
)

type mockCapturer struct {
	mock.Mock
}

func (m *mockCapturer) Capture(ctx context.Context, target string) ([]byte, error) {
	args := m.Called(ctx, target)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, in actor.RunInput) ([]actor.Post, error) {
	args := m.Called(ctx, in)
	posts, _ := args.Get(0).([]actor.Post)
	return posts, args.Error(1)
}

type mockChat struct {
	mock.Mock
}

func (m *mockChat) ChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*llm.ChatCompletionResponse)
	return resp, args.Error(1)
}

func TestCaptureAdapter(t *testing.T) {
	c := new(mockCapturer)
	c.On("Capture", mock.Anything, "dashboard").Return([]byte("png"), nil)
	c.On("Capture", mock.Anything, "gone").Return(nil, capture.ErrTargetNotFound)
	c.On("Capture", mock.Anything, "boom").Return(nil, errors.New("timeout"))

	a := &captureAdapter{capturer: c}

	data, err := a.Capture(context.Background(), "dashboard")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = a.Capture(context.Background(), "gone")
	assert.ErrorIs(t, err, document.ErrCaptureTargetMissing)

	_, err = a.Capture(context.Background(), "boom")
	assert.EqualError(t, err, "timeout")
}

func TestCollectorAdapter_MapsPosts(t *testing.T) {
	posted := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	r := new(mockRunner)
	r.On("Run", mock.Anything, actor.RunInput{
		Platform: actor.PlatformTikTok,
		Hashtags: []string{"ootd"},
		Limit:    10,
	}).Return([]actor.Post{{
		ExternalID: "73",
		Author:     "maya",
		Hashtags:   []string{"ootd"},
		Likes:      10,
		Views:      200,
		PostedAt:   posted,
	}}, nil)

	records, err := (&collectorAdapter{runner: r}).Collect(context.Background(), policy.CollectInput{
		Platform: entity.PlatformTikTok,
		Hashtags: []string{"ootd"},
		Limit:    10,
	})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.PlatformTikTok, records[0].Platform)
	assert.Equal(t, "73", records[0].ExternalID)
	assert.Equal(t, int64(200), records[0].Views)
	assert.Equal(t, posted, records[0].PostedAt)
}

func TestCollectorAdapter_MapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorized", actor.ErrUnauthorized, entity.ErrActorUnauthorized},
		{"rate limited", actor.ErrRateLimited, entity.ErrActorRateLimited},
		{"api error", &actor.APIError{StatusCode: 500, Message: "crashed"}, entity.ErrActorFailure},
		{"canceled", context.Canceled, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(mockRunner)
			r.On("Run", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := (&collectorAdapter{runner: r}).Collect(context.Background(), policy.CollectInput{Platform: entity.PlatformInstagram})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompleterAdapter(t *testing.T) {
	c := new(mockChat)
	c.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req llm.ChatCompletionRequest) bool {
		return len(req.Messages) == 2 &&
			req.Messages[0].Role == "system" && req.Messages[1].Content == "summary" &&
			req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" &&
			req.MaxTokens == 500
	})).Return(&llm.ChatCompletionResponse{Choices: []llm.Choice{{Message: llm.Message{Content: "  {\"recommendations\":[]} "}}}}, nil)

	out, err := (&completerAdapter{client: c, maxTokens: 500}).Complete(context.Background(), "system prompt", "summary")

	require.NoError(t, err)
	assert.Equal(t, `{"recommendations":[]}`, out)
}

func TestCompleterAdapter_Error(t *testing.T) {
	c := new(mockChat)
	c.On("ChatCompletion", mock.Anything, mock.Anything).Return(nil, llm.ErrMissingAPIKey)

	_, err := (&completerAdapter{client: c}).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
