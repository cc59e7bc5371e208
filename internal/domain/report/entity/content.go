package entity

import (
	"time"
)

// Platform is a social network content is collected from
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Valid reports whether p is a supported platform
func (p Platform) Valid() bool {
	return p == PlatformInstagram || p == PlatformTikTok
}

// ContentRecord is a single collected post
type ContentRecord struct {
	ID             string    `json:"id"`
	Platform       Platform  `json:"platform"`
	ExternalID     string    `json:"externalId"`
	URL            string    `json:"url,omitempty"`
	Author         string    `json:"author"`
	Caption        string    `json:"caption"`
	Hashtags       []string  `json:"hashtags"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	Shares         int64     `json:"shares"`
	Views          int64     `json:"views"`
	EngagementRate float64   `json:"engagementRate"`
	PostedAt       time.Time `json:"postedAt"`
	CollectedAt    time.Time `json:"collectedAt"`
}

// ComputeEngagementRate returns interactions per view as a percentage.
// Posts without a view count score 0.
func (c *ContentRecord) ComputeEngagementRate() float64 {
	if c.Views <= 0 {
		return 0
	}
	return float64(c.Likes+c.Comments+c.Shares) / float64(c.Views) * 100
}
