package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// CaseRepository persists case records.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	// GetForUpdate reads a case and locks it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*domain.Case, error)
	GetByDiasporaID(ctx context.Context, diasporaID string) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
}

type caseRepository struct {
	db DBTX
}

// NewCaseRepository returns a Postgres-backed implementation.
func NewCaseRepository(db DBTX) CaseRepository {
	return &caseRepository{db: db}
}

const caseColumns = `c.id, c.diaspora_id, c.current_stage, c.overall_status, c.created_at, c.updated_at`

var caseOrderColumns = map[string]string{
	"created_at":     "c.created_at",
	"updated_at":     "c.updated_at",
	"current_stage":  "c.current_stage",
	"overall_status": "c.overall_status",
}

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (id, diaspora_id, current_stage, overall_status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.DiasporaID,
		c.CurrentStage,
		c.OverallStatus,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return mapPgError(err)
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	if !validID(c.ID) {
		return ErrNotFound
	}
	const query = `UPDATE cases SET current_stage=$1, overall_status=$2, updated_at=$3 WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query, c.CurrentStage, c.OverallStatus, c.UpdatedAt, c.ID)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return r.fetchSingle(ctx, `SELECT `+caseColumns+` FROM cases c WHERE c.id=$1`, id)
}

func (r *caseRepository) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return r.fetchSingle(ctx, `SELECT `+caseColumns+` FROM cases c WHERE c.id=$1 FOR UPDATE`, id)
}

func (r *caseRepository) GetByDiasporaID(ctx context.Context, diasporaID string) (*domain.Case, error) {
	if !validID(diasporaID) {
		return nil, ErrNotFound
	}
	return r.fetchSingle(ctx, `SELECT `+caseColumns+` FROM cases c WHERE c.diaspora_id=$1`, diasporaID)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	c, err := scanCase(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapPgError(err)
	}
	return c, nil
}

func (r *caseRepository) List(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	w := newWhere()
	if filter.Stage != nil {
		w.add("c.current_stage=%s", *filter.Stage)
	}
	if filter.OverallStatus != nil {
		w.add("c.overall_status=%s", *filter.OverallStatus)
	}
	w.search(filter.Term(), "a.first_name", "a.last_name", "d.primary_phone", "d.diaspora_id")

	limit, offset := filter.Page()
	order := ParseOrder(filter.Ordering, CaseOrderFields, DefaultCaseOrder)
	query := `SELECT ` + caseColumns + ` FROM cases c
        JOIN diasporas d ON d.id = c.diaspora_id
        JOIN accounts a ON a.id = d.account_id
        WHERE ` + w.String() + ` ORDER BY ` + orderClause(order, caseOrderColumns, "c.id") +
		` LIMIT ` + w.arg(limit) + ` OFFSET ` + w.arg(offset)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []domain.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanCase(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	if err := row.Scan(
		&c.ID,
		&c.DiasporaID,
		&c.CurrentStage,
		&c.OverallStatus,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
