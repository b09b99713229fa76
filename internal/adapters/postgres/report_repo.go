package postgres

import (
	"context"

	"github.com/samirrijal/oinez/internal/core/domain"
)

// ReportRepo implements ports.ReportRepository with pgx.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Insert appends a report to the history and fills in its generated ID.
func (r *ReportRepo) Insert(ctx context.Context, report *domain.Report) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO reports (kind, type, lat, lon, description, temporary_until, reported_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id
	`, report.Kind, report.Type, report.Location.Lat, report.Location.Lon,
		report.Description, report.TemporaryUntil, report.ReportedAt,
	).Scan(&report.ID)
}

// ListRecent returns a page of the report history, newest first.
func (r *ReportRepo) ListRecent(ctx context.Context, limit, offset int) ([]domain.Report, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, kind, COALESCE(type, ''), lat, lon, COALESCE(description, ''),
		       temporary_until, reported_at
		FROM reports
		ORDER BY reported_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(
			&rep.ID, &rep.Kind, &rep.Type,
			&rep.Location.Lat, &rep.Location.Lon, &rep.Description,
			&rep.TemporaryUntil, &rep.ReportedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Count returns the total number of history entries.
func (r *ReportRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM reports`).Scan(&n)
	return n, err
}

// CountByKind returns history entry counts grouped by kind.
func (r *ReportRepo) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT kind, count(*) FROM reports GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
