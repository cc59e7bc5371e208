package actor

import (
	"strings"
	"time"
)

// Platform identifies which actor to run
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Post is a platform-neutral dataset item
type Post struct {
	ExternalID string
	URL        string
	Author     string
	Caption    string
	Hashtags   []string
	Likes      int64
	Comments   int64
	Shares     int64
	Views      int64
	PostedAt   time.Time
}

type instagramItem struct {
	ID             string    `json:"id"`
	ShortCode      string    `json:"shortCode"`
	URL            string    `json:"url"`
	OwnerUsername  string    `json:"ownerUsername"`
	Caption        string    `json:"caption"`
	Hashtags       []string  `json:"hashtags"`
	LikesCount     int64     `json:"likesCount"`
	CommentsCount  int64     `json:"commentsCount"`
	VideoViewCount int64     `json:"videoViewCount"`
	VideoPlayCount int64     `json:"videoPlayCount"`
	Timestamp      time.Time `json:"timestamp"`
}

type tiktokItem struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	WebVideoURL  string `json:"webVideoUrl"`
	CreateTime   int64  `json:"createTime"`
	DiggCount    int64  `json:"diggCount"`
	ShareCount   int64  `json:"shareCount"`
	PlayCount    int64  `json:"playCount"`
	CommentCount int64  `json:"commentCount"`
	AuthorMeta   struct {
		Name string `json:"name"`
	} `json:"authorMeta"`
	Hashtags []struct {
		Name string `json:"name"`
	} `json:"hashtags"`
}

func fromInstagram(items []instagramItem) []Post {
	posts := make([]Post, 0, len(items))
	for _, it := range items {
		id := it.ID
		if id == "" {
			id = it.ShortCode
		}
		if id == "" {
			continue
		}

		views := it.VideoViewCount
		if it.VideoPlayCount > views {
			views = it.VideoPlayCount
		}

		posts = append(posts, Post{
			ExternalID: id,
			URL:        it.URL,
			Author:     it.OwnerUsername,
			Caption:    it.Caption,
			Hashtags:   normalizeTags(it.Hashtags),
			Likes:      nonNegative(it.LikesCount),
			Comments:   nonNegative(it.CommentsCount),
			Views:      nonNegative(views),
			PostedAt:   it.Timestamp.UTC(),
		})
	}
	return posts
}

func fromTikTok(items []tiktokItem) []Post {
	posts := make([]Post, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}

		tags := make([]string, 0, len(it.Hashtags))
		for _, h := range it.Hashtags {
			tags = append(tags, h.Name)
		}

		posts = append(posts, Post{
			ExternalID: it.ID,
			URL:        it.WebVideoURL,
			Author:     it.AuthorMeta.Name,
			Caption:    it.Text,
			Hashtags:   normalizeTags(tags),
			Likes:      nonNegative(it.DiggCount),
			Comments:   nonNegative(it.CommentCount),
			Shares:     nonNegative(it.ShareCount),
			Views:      nonNegative(it.PlayCount),
			PostedAt:   unixTime(it.CreateTime),
		})
	}
	return posts
}

// unixTime leaves missing timestamps as the zero time
func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// normalizeTags lowercases, strips the leading # and drops duplicates
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Actors report -1 for hidden counters
func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
