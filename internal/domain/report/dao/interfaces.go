package dao

import (
	"context"
	"time"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
)

// ReportFilter contains filters for listing reports
type ReportFilter struct {
	From *time.Time // period start >= From
	To   *time.Time // period end <= To
}

// ListOptions contains pagination options. Reports are ordered by generation time, newest first.
type ListOptions struct {
	Limit  int
	Offset int
}

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// Create inserts a new report
	Create(ctx context.Context, r *entity.Report) error

	// GetByID retrieves a report by its ID. Returns entity.ErrReportNotFound when absent.
	GetByID(ctx context.Context, id string) (*entity.Report, error)

	// Delete removes a report by ID
	Delete(ctx context.Context, id string) error

	// List retrieves reports with optional filtering and pagination
	List(ctx context.Context, filter ReportFilter, opts ListOptions) ([]entity.Report, error)

	// Count returns the total number of reports matching the filter
	Count(ctx context.Context, filter ReportFilter) (int64, error)
}

// ContentRepository defines the interface for collected content
type ContentRepository interface {
	// Upsert inserts or refreshes records keyed by platform and external id
	Upsert(ctx context.Context, records []entity.ContentRecord) (int, error)

	// ListInPeriod returns records posted in [start, end)
	ListInPeriod(ctx context.Context, start, end time.Time) ([]entity.ContentRecord, error)
}
