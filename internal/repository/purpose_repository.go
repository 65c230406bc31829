package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// PurposeRepository persists engagement purposes.
type PurposeRepository interface {
	Create(ctx context.Context, p *domain.Purpose) error
	Update(ctx context.Context, p *domain.Purpose) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Purpose, error)
	List(ctx context.Context, filter PurposeFilter) ([]domain.Purpose, error)
}

type purposeRepository struct {
	db DBTX
}

// NewPurposeRepository returns a Postgres-backed implementation.
func NewPurposeRepository(db DBTX) PurposeRepository {
	return &purposeRepository{db: db}
}

const purposeColumns = `p.id, p.diaspora_id, p.type, p.description, p.sector, p.sub_sector, p.investment_type,
    p.estimated_capital, p.currency, p.jobs_expected, p.land_requirement, p.land_size,
    p.preferred_location_note, p.status, p.created_at`

var purposeOrderColumns = map[string]string{
	"created_at":        "p.created_at",
	"status":            "p.status",
	"type":              "p.type",
	"estimated_capital": "p.estimated_capital",
}

func (r *purposeRepository) Create(ctx context.Context, p *domain.Purpose) error {
	const query = `
        INSERT INTO purposes (id, diaspora_id, type, description, sector, sub_sector, investment_type,
            estimated_capital, currency, jobs_expected, land_requirement, land_size,
            preferred_location_note, status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.DiasporaID,
		p.Type,
		p.Description,
		p.Sector,
		p.SubSector,
		p.InvestmentType,
		p.EstimatedCapital,
		p.Currency,
		p.JobsExpected,
		p.LandRequirement,
		p.LandSize,
		p.PreferredLocationNote,
		p.Status,
		p.CreatedAt,
	)
	return mapPgError(err)
}

func (r *purposeRepository) Update(ctx context.Context, p *domain.Purpose) error {
	if !validID(p.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE purposes SET type=$1, description=$2, sector=$3, sub_sector=$4, investment_type=$5,
            estimated_capital=$6, currency=$7, jobs_expected=$8, land_requirement=$9, land_size=$10,
            preferred_location_note=$11, status=$12
        WHERE id=$13`
	cmd, err := r.db.Exec(ctx, query,
		p.Type,
		p.Description,
		p.Sector,
		p.SubSector,
		p.InvestmentType,
		p.EstimatedCapital,
		p.Currency,
		p.JobsExpected,
		p.LandRequirement,
		p.LandSize,
		p.PreferredLocationNote,
		p.Status,
		p.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *purposeRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM purposes WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *purposeRepository) GetByID(ctx context.Context, id string) (*domain.Purpose, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	p, err := scanPurpose(r.db.QueryRow(ctx, `SELECT `+purposeColumns+` FROM purposes p WHERE p.id=$1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return p, nil
}

func (r *purposeRepository) List(ctx context.Context, filter PurposeFilter) ([]domain.Purpose, error) {
	w := newWhere()
	if filter.DiasporaID != nil {
		w.id("p.diaspora_id", *filter.DiasporaID)
	}
	if filter.Type != nil {
		w.add("p.type=%s", *filter.Type)
	}
	if filter.Status != nil {
		w.add("p.status=%s", *filter.Status)
	}
	w.search(filter.Term(), "a.first_name", "a.last_name", "p.type", "p.status", "p.sector", "p.sub_sector")

	limit, offset := filter.Page()
	order := ParseOrder(filter.Ordering, PurposeOrderFields, DefaultPurposeOrder)
	query := `SELECT ` + purposeColumns + ` FROM purposes p
        JOIN diasporas d ON d.id = p.diaspora_id
        JOIN accounts a ON a.id = d.account_id
        WHERE ` + w.String() + ` ORDER BY ` + orderClause(order, purposeOrderColumns, "p.id") +
		` LIMIT ` + w.arg(limit) + ` OFFSET ` + w.arg(offset)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []domain.Purpose{}
	for rows.Next() {
		p, err := scanPurpose(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanPurpose(row pgx.Row) (*domain.Purpose, error) {
	var p domain.Purpose
	if err := row.Scan(
		&p.ID,
		&p.DiasporaID,
		&p.Type,
		&p.Description,
		&p.Sector,
		&p.SubSector,
		&p.InvestmentType,
		&p.EstimatedCapital,
		&p.Currency,
		&p.JobsExpected,
		&p.LandRequirement,
		&p.LandSize,
		&p.PreferredLocationNote,
		&p.Status,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
