package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultBaseURL  = "http://localhost:3001"
	defaultTimeout  = 45 * time.Second
	defaultWidth    = 1280
	maxBitmapBytes  = 32 << 20
	maxErrBodyBytes = 4096
)

// ErrTargetNotFound is returned when the capture service does not know the target
var ErrTargetNotFound = errors.New("capture target not found")

// Client talks to the headless capture service that screenshots dashboard views
type Client struct {
	baseURL    string
	apiKey     string
	width      int
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAPIKey sets the bearer token sent with each request
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithViewportWidth sets the browser viewport width in pixels
func WithViewportWidth(px int) ClientOption {
	return func(c *Client) {
		if px > 0 {
			c.width = px
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new capture client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		width:   defaultWidth,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the capture service
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("capture API error: %s (status: %d)", e.Message, e.StatusCode)
}

type captureRequest struct {
	Target   string `json:"target"`
	Width    int    `json:"width"`
	FullPage bool   `json:"fullPage"`
	Format   string `json:"format"`
}

// Capture renders the named dashboard view and returns it as a PNG
func (c *Client) Capture(ctx context.Context, target string) ([]byte, error) {
	body, err := json.Marshal(captureRequest{
		Target:   target,
		Width:    c.width,
		FullPage: true,
		Format:   "png",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/capture", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyBytes))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(raw)
		}
		return nil, apiErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBitmapBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("capture service returned an empty bitmap")
	}

	return data, nil
}
