package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
)

// ContentPostgres implements ContentRepository for PostgreSQL
type ContentPostgres struct {
	pool *pgxpool.Pool
}

// NewContentPostgres creates a new PostgreSQL content repository
func NewContentPostgres(pool *pgxpool.Pool) *ContentPostgres {
	return &ContentPostgres{pool: pool}
}

// Upsert writes records in one batch. Counters of existing posts are refreshed.
func (r *ContentPostgres) Upsert(ctx context.Context, records []entity.ContentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO content_records (
			id, platform, external_id, url, author, caption, hashtags,
			likes, comments, shares, views, engagement_rate, posted_at, collected_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (platform, external_id) DO UPDATE SET
			likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			shares = EXCLUDED.shares,
			views = EXCLUDED.views,
			engagement_rate = EXCLUDED.engagement_rate,
			caption = EXCLUDED.caption,
			hashtags = EXCLUDED.hashtags,
			collected_at = EXCLUDED.collected_at
	`

	batch := &pgx.Batch{}
	for _, c := range records {
		batch.Queue(query,
			c.ID, c.Platform, c.ExternalID, c.URL, c.Author, c.Caption, c.Hashtags,
			c.Likes, c.Comments, c.Shares, c.Views, c.EngagementRate, c.PostedAt, c.CollectedAt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range records {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("upserting content %s/%s: %w", records[i].Platform, records[i].ExternalID, err)
		}
	}

	return len(records), nil
}

// ListInPeriod returns records posted in [start, end), oldest first
func (r *ContentPostgres) ListInPeriod(ctx context.Context, start, end time.Time) ([]entity.ContentRecord, error) {
	query := `
		SELECT id, platform, external_id, url, author, caption, hashtags,
		       likes, comments, shares, views, engagement_rate, posted_at, collected_at
		FROM content_records
		WHERE posted_at >= $1 AND posted_at < $2
		ORDER BY posted_at, id
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying content: %w", err)
	}
	defer rows.Close()

	var records []entity.ContentRecord
	for rows.Next() {
		var c entity.ContentRecord
		var url *string
		err := rows.Scan(
			&c.ID, &c.Platform, &c.ExternalID, &url, &c.Author, &c.Caption, &c.Hashtags,
			&c.Likes, &c.Comments, &c.Shares, &c.Views, &c.EngagementRate, &c.PostedAt, &c.CollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		if url != nil {
			c.URL = *url
		}
		c.PostedAt = c.PostedAt.UTC()
		c.CollectedAt = c.CollectedAt.UTC()
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content: %w", err)
	}

	return records, nil
}
