package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)

		w.Write([]byte(`{"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  [] \n"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL+"/"), WithModel("test-model"))
	resp, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)

	content, err := resp.Content()
	require.NoError(t, err)
	assert.Equal(t, "[]", content)
}

func TestClient_ChatCompletion_Errors(t *testing.T) {
	_, err := NewClient("").ChatCompletion(context.Background(), ChatCompletionRequest{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	_, err = NewClient("key", WithBaseURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{})
	assert.ErrorContains(t, err, "api error 429")

	_, err = (&ChatCompletionResponse{}).Content()
	assert.Error(t, err)
}
