package actor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.apify.com"
	defaultTimeout  = 5 * time.Minute
	defaultRate     = rate.Limit(0.5)
	defaultBurst    = 1
	maxErrBodyBytes = 4096
)

var (
	ErrUnauthorized = errors.New("actor API rejected the token")
	ErrRateLimited  = errors.New("actor API rate limit exceeded")
)

// Client runs scraping actors synchronously and returns their dataset items
type Client struct {
	baseURL    string
	token      string
	actors     map[Platform]string
	limiter    *rate.Limiter
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

// WithActor overrides the actor id used for a platform
func WithActor(p Platform, actorID string) ClientOption {
	return func(c *Client) {
		if actorID != "" {
			c.actors[p] = actorID
		}
	}
}

// WithRateLimit sets how many actor runs may start per second
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new actor API client
func New(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		actors: map[Platform]string{
			PlatformInstagram: "apify~instagram-hashtag-scraper",
			PlatformTikTok:    "clockworks~tiktok-scraper",
		},
		limiter: rate.NewLimiter(defaultRate, defaultBurst),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the actor API
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("actor API error: %s (type: %s, status: %d)", e.Message, e.Type, e.StatusCode)
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// RunInput describes a scraping run
type RunInput struct {
	Platform  Platform
	Hashtags  []string
	Usernames []string
	Limit     int
}

// Run starts the platform's actor, waits for it to finish and returns the posts it collected
func (c *Client) Run(ctx context.Context, in RunInput) ([]Post, error) {
	actorID, ok := c.actors[in.Platform]
	if !ok {
		return nil, fmt.Errorf("no actor configured for platform %q", in.Platform)
	}

	body, err := json.Marshal(runPayload(in))
	if err != nil {
		return nil, fmt.Errorf("encoding run input: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items", c.baseURL, url.PathEscape(actorID))
	params := url.Values{}
	params.Set("format", "json")
	params.Set("clean", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	switch in.Platform {
	case PlatformInstagram:
		var items []instagramItem
		if err := c.do(req, &items); err != nil {
			return nil, err
		}
		return fromInstagram(items), nil
	default:
		var items []tiktokItem
		if err := c.do(req, &items); err != nil {
			return nil, err
		}
		return fromTikTok(items), nil
	}
}

func runPayload(in RunInput) map[string]any {
	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}

	switch in.Platform {
	case PlatformInstagram:
		p := map[string]any{"resultsLimit": limit}
		if len(in.Hashtags) > 0 {
			p["hashtags"] = in.Hashtags
		}
		if len(in.Usernames) > 0 {
			p["usernames"] = in.Usernames
		}
		return p
	default:
		p := map[string]any{"resultsPerPage": limit}
		if len(in.Hashtags) > 0 {
			p["hashtags"] = in.Hashtags
		}
		if len(in.Usernames) > 0 {
			p["profiles"] = in.Usernames
		}
		return p
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 400:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyBytes))
		var errResp ErrorResponse
		if err := json.Unmarshal(raw, &errResp); err != nil || errResp.Error.Message == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
		}
		errResp.Error.StatusCode = resp.StatusCode
		return &errResp.Error
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
