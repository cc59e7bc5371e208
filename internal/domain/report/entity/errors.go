package entity

import "errors"

// Domain errors for reports and content
var (
	// Validation errors
	ErrInvalidReport   = errors.New("invalid report")
	ErrInvalidFormat   = errors.New("unsupported export format")
	ErrInvalidPlatform = errors.New("unsupported platform")
	ErrNoCollectTarget = errors.New("at least one hashtag or username is required")
	ErrInvalidPeriod   = errors.New("period end must not be before start")

	// Business logic errors
	ErrReportNotFound = errors.New("report not found")
	ErrNoContent      = errors.New("no content collected in period")

	// Upstream errors
	ErrActorFailure       = errors.New("scraping actor run failed")
	ErrActorRateLimited   = errors.New("scraping actor rate limit exceeded")
	ErrActorUnauthorized  = errors.New("scraping actor token is invalid")
	ErrRecommenderOffline = errors.New("recommendation model is not configured")
)
