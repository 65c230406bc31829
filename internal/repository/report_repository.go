package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// ReportRepository computes aggregate counts. Date-ranged queries filter on
// created_at within [rng.Start(), rng.End()).
type ReportRepository interface {
	CountDiasporas(ctx context.Context, rng domain.DateRange) (int64, error)
	CountActiveCases(ctx context.Context) (int64, error)
	ReferralsByStatus(ctx context.Context, rng domain.DateRange) ([]domain.StatusCount, error)
	PurposesByType(ctx context.Context, rng domain.DateRange) ([]domain.TypeCount, error)
	DiasporasByPeriod(ctx context.Context, group domain.PeriodGroup, rng domain.DateRange) ([]domain.PeriodCount, error)
	PurposeProgress(ctx context.Context, purposeType *domain.PurposeType, rng domain.DateRange) ([]domain.TypeStatusCount, error)
	CasesByStage(ctx context.Context) ([]domain.StageCount, error)
	CasesByOverallStatus(ctx context.Context) ([]domain.OverallStatusCount, error)
	ReferralTotalsByOffice(ctx context.Context, rng domain.DateRange) ([]domain.OfficeTotal, error)
	ReferralsByOfficeStatus(ctx context.Context, rng domain.DateRange) ([]domain.OfficeStatusCount, error)
}

type reportRepository struct {
	db DBTX
}

// NewReportRepository returns a Postgres-backed implementation.
func NewReportRepository(db DBTX) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountDiasporas(ctx context.Context, rng domain.DateRange) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM diasporas WHERE created_at >= $1 AND created_at < $2`,
		rng.Start(), rng.End()).Scan(&total)
	return total, mapPgError(err)
}

func (r *reportRepository) CountActiveCases(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM cases WHERE overall_status <> $1`, domain.CaseStatusDone).Scan(&total)
	return total, mapPgError(err)
}

func (r *reportRepository) ReferralsByStatus(ctx context.Context, rng domain.DateRange) ([]domain.StatusCount, error) {
	const query = `
        SELECT status, COUNT(*) FROM referrals
        WHERE created_at >= $1 AND created_at < $2
        GROUP BY status ORDER BY status`
	return collect(ctx, r.db, query, []any{rng.Start(), rng.End()}, func(row pgx.Rows) (domain.StatusCount, error) {
		var c domain.StatusCount
		return c, row.Scan(&c.Status, &c.Count)
	})
}

func (r *reportRepository) PurposesByType(ctx context.Context, rng domain.DateRange) ([]domain.TypeCount, error) {
	const query = `
        SELECT type, COUNT(*) FROM purposes
        WHERE created_at >= $1 AND created_at < $2
        GROUP BY type ORDER BY type`
	return collect(ctx, r.db, query, []any{rng.Start(), rng.End()}, func(row pgx.Rows) (domain.TypeCount, error) {
		var c domain.TypeCount
		return c, row.Scan(&c.Type, &c.Count)
	})
}

func (r *reportRepository) DiasporasByPeriod(ctx context.Context, group domain.PeriodGroup, rng domain.DateRange) ([]domain.PeriodCount, error) {
	const query = `
        SELECT date_trunc($1, created_at AT TIME ZONE $2)::date AS period, COUNT(*)
        FROM diasporas
        WHERE created_at >= $3 AND created_at < $4
        GROUP BY 1 ORDER BY 1`
	args := []any{group.SQLUnit(), rng.Location().String(), rng.Start(), rng.End()}
	return collect(ctx, r.db, query, args, func(row pgx.Rows) (domain.PeriodCount, error) {
		var (
			c      domain.PeriodCount
			period time.Time
		)
		if err := row.Scan(&period, &c.Count); err != nil {
			return c, err
		}
		c.Period = period.Format(domain.DateLayout)
		return c, nil
	})
}

func (r *reportRepository) PurposeProgress(ctx context.Context, purposeType *domain.PurposeType, rng domain.DateRange) ([]domain.TypeStatusCount, error) {
	w := newWhere()
	w.add("created_at >= %s AND created_at < %s", rng.Start(), rng.End())
	if purposeType != nil {
		w.add("type=%s", *purposeType)
	}
	query := `SELECT type, status, COUNT(*) FROM purposes WHERE ` + w.String() +
		` GROUP BY type, status ORDER BY type, status`
	return collect(ctx, r.db, query, w.args, func(row pgx.Rows) (domain.TypeStatusCount, error) {
		var c domain.TypeStatusCount
		return c, row.Scan(&c.Type, &c.Status, &c.Count)
	})
}

func (r *reportRepository) CasesByStage(ctx context.Context) ([]domain.StageCount, error) {
	const query = `SELECT current_stage, COUNT(*) FROM cases GROUP BY current_stage ORDER BY current_stage`
	return collect(ctx, r.db, query, nil, func(row pgx.Rows) (domain.StageCount, error) {
		var c domain.StageCount
		return c, row.Scan(&c.Stage, &c.Count)
	})
}

func (r *reportRepository) CasesByOverallStatus(ctx context.Context) ([]domain.OverallStatusCount, error) {
	const query = `SELECT overall_status, COUNT(*) FROM cases GROUP BY overall_status ORDER BY overall_status`
	return collect(ctx, r.db, query, nil, func(row pgx.Rows) (domain.OverallStatusCount, error) {
		var c domain.OverallStatusCount
		return c, row.Scan(&c.OverallStatus, &c.Count)
	})
}

func (r *reportRepository) ReferralTotalsByOffice(ctx context.Context, rng domain.DateRange) ([]domain.OfficeTotal, error) {
	const query = `
        SELECT o.id, o.name, o.code, COUNT(*)
        FROM referrals r JOIN offices o ON o.id = r.to_office_id
        WHERE r.created_at >= $1 AND r.created_at < $2
        GROUP BY o.id, o.name, o.code ORDER BY o.name, o.id`
	return collect(ctx, r.db, query, []any{rng.Start(), rng.End()}, func(row pgx.Rows) (domain.OfficeTotal, error) {
		var c domain.OfficeTotal
		return c, row.Scan(&c.OfficeID, &c.OfficeName, &c.OfficeCode, &c.Total)
	})
}

func (r *reportRepository) ReferralsByOfficeStatus(ctx context.Context, rng domain.DateRange) ([]domain.OfficeStatusCount, error) {
	const query = `
        SELECT o.id, o.name, o.code, r.status, COUNT(*)
        FROM referrals r JOIN offices o ON o.id = r.to_office_id
        WHERE r.created_at >= $1 AND r.created_at < $2
        GROUP BY o.id, o.name, o.code, r.status ORDER BY o.name, o.id, r.status`
	return collect(ctx, r.db, query, []any{rng.Start(), rng.End()}, func(row pgx.Rows) (domain.OfficeStatusCount, error) {
		var c domain.OfficeStatusCount
		return c, row.Scan(&c.OfficeID, &c.OfficeName, &c.OfficeCode, &c.Status, &c.Count)
	})
}

// collect runs query and scans every row with scan. The result is never nil.
func collect[T any](ctx context.Context, db DBTX, query string, args []any, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
