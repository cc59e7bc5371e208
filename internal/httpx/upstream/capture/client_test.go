package capture

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Capture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/capture", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req captureRequest
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "dashboard", req.Target)
		assert.Equal(t, 1440, req.Width)
		assert.True(t, req.FullPage)

		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG fake"))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithAPIKey("secret"), WithViewportWidth(1440))
	data, err := c.Capture(context.Background(), "dashboard")

	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), data)
}

func TestClient_Capture_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unknown target",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrTargetNotFound)
			},
		},
		{
			name:   "api error",
			status: http.StatusBadGateway,
			body:   `{"error":"browser pool exhausted"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
				assert.Equal(t, "browser pool exhausted", apiErr.Message)
			},
		},
		{
			name:   "plain text error",
			status: http.StatusInternalServerError,
			body:   "oops",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "oops", apiErr.Message)
			},
		},
		{
			name:   "empty bitmap",
			status: http.StatusOK,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "empty bitmap")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(WithBaseURL(srv.URL)).Capture(context.Background(), "x")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

type stubCapturer struct {
	calls int
	err   error
}

func (s *stubCapturer) Capture(context.Context, string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png"), nil
}

func TestBreakerClient_OpensAfterFailures(t *testing.T) {
	stub := &stubCapturer{err: errors.New("timeout")}
	bc := NewBreakerClient(stub, BreakerSettings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := bc.Capture(context.Background(), "dashboard")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, bc.State())

	_, err := bc.Capture(context.Background(), "dashboard")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, stub.calls)
}

func TestBreakerClient_MissingTargetDoesNotTrip(t *testing.T) {
	stub := &stubCapturer{err: ErrTargetNotFound}
	bc := NewBreakerClient(stub, BreakerSettings{MinRequests: 2, FailureRatio: 0.5}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, err := bc.Capture(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrTargetNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, bc.State())
}
