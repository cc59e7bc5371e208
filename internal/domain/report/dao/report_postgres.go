package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
)

// ReportPostgres implements ReportRepository for PostgreSQL
type ReportPostgres struct {
	pool *pgxpool.Pool
}

// NewReportPostgres creates a new PostgreSQL report repository
func NewReportPostgres(pool *pgxpool.Pool) *ReportPostgres {
	return &ReportPostgres{pool: pool}
}

const reportColumns = `id, title, description, period_start, period_end, generated_at, metrics_summary, recommendations`

// Create inserts a new report
func (r *ReportPostgres) Create(ctx context.Context, rep *entity.Report) error {
	summary, err := json.Marshal(rep.MetricsSummary)
	if err != nil {
		return fmt.Errorf("encoding metrics summary: %w", err)
	}
	recs, err := json.Marshal(rep.Recommendations)
	if err != nil {
		return fmt.Errorf("encoding recommendations: %w", err)
	}

	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		rep.ID,
		rep.Title,
		rep.Description,
		rep.Period.Start,
		rep.Period.End,
		rep.GeneratedAt,
		summary,
		recs,
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by ID
func (r *ReportPostgres) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	rep, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}

	return rep, nil
}

// Delete removes a report
func (r *ReportPostgres) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM reports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrReportNotFound
	}
	return nil
}

// List retrieves reports with filtering
func (r *ReportPostgres) List(ctx context.Context, filter ReportFilter, opts ListOptions) ([]entity.Report, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + reportColumns + ` FROM reports` + where + ` ORDER BY generated_at DESC, id`

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	reports := []entity.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	return reports, nil
}

// Count returns the number of reports matching the filter
func (r *ReportPostgres) Count(ctx context.Context, filter ReportFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM reports"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}
	return count, nil
}

func buildWhere(filter ReportFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("period_start >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("period_end <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanReport decodes one row and validates it. Stored records are not trusted
// to still satisfy the current field rules.
func scanReport(row pgx.Row) (*entity.Report, error) {
	var rep entity.Report
	var description *string
	var summary, recs []byte

	err := row.Scan(
		&rep.ID,
		&rep.Title,
		&description,
		&rep.Period.Start,
		&rep.Period.End,
		&rep.GeneratedAt,
		&summary,
		&recs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	if description != nil {
		rep.Description = *description
	}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &rep.MetricsSummary); err != nil {
			return nil, fmt.Errorf("decoding metrics summary of %s: %w", rep.ID, err)
		}
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &rep.Recommendations); err != nil {
			return nil, fmt.Errorf("decoding recommendations of %s: %w", rep.ID, err)
		}
	}

	rep.Period.Start = rep.Period.Start.UTC()
	rep.Period.End = rep.Period.End.UTC()
	rep.GeneratedAt = rep.GeneratedAt.UTC()

	if err := rep.Validate(); err != nil {
		return nil, fmt.Errorf("report %s: %w", rep.ID, err)
	}

	return &rep, nil
}
