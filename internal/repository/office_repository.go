package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// OfficeRepository persists administrative offices.
type OfficeRepository interface {
	Create(ctx context.Context, office *domain.Office) error
	Update(ctx context.Context, office *domain.Office) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Office, error)
	List(ctx context.Context, filter OfficeFilter) ([]domain.Office, error)
}

type officeRepository struct {
	db DBTX
}

// NewOfficeRepository returns a Postgres-backed implementation.
func NewOfficeRepository(db DBTX) OfficeRepository {
	return &officeRepository{db: db}
}

const officeColumns = `id, name, code, type, contact_email, contact_phone, address, created_at`

var officeOrderColumns = map[string]string{"name": "name", "code": "code", "type": "type"}

func (r *officeRepository) Create(ctx context.Context, office *domain.Office) error {
	const query = `
        INSERT INTO offices (id, name, code, type, contact_email, contact_phone, address, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		office.ID,
		office.Name,
		office.Code,
		office.Type,
		office.ContactEmail,
		office.ContactPhone,
		office.Address,
		office.CreatedAt,
	)
	return mapPgError(err)
}

func (r *officeRepository) Update(ctx context.Context, office *domain.Office) error {
	if !validID(office.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE offices SET name=$1, code=$2, type=$3, contact_email=$4, contact_phone=$5, address=$6
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		office.Name,
		office.Code,
		office.Type,
		office.ContactEmail,
		office.ContactPhone,
		office.Address,
		office.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *officeRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM offices WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *officeRepository) GetByID(ctx context.Context, id string) (*domain.Office, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+officeColumns+` FROM offices WHERE id=$1`, id)
	office, err := scanOffice(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return office, nil
}

func (r *officeRepository) List(ctx context.Context, filter OfficeFilter) ([]domain.Office, error) {
	w := newWhere()
	if filter.Type != nil {
		w.add("type=%s", *filter.Type)
	}
	w.search(filter.Term(), "name", "code", "type")

	limit, offset := filter.Page()
	order := ParseOrder(filter.Ordering, OfficeOrderFields, DefaultOfficeOrder)
	query := `SELECT ` + officeColumns + ` FROM offices WHERE ` + w.String() +
		` ORDER BY ` + orderClause(order, officeOrderColumns, "id") +
		` LIMIT ` + w.arg(limit) + ` OFFSET ` + w.arg(offset)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []domain.Office{}
	for rows.Next() {
		office, err := scanOffice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *office)
	}
	return result, rows.Err()
}

func scanOffice(row pgx.Row) (*domain.Office, error) {
	var office domain.Office
	if err := row.Scan(
		&office.ID,
		&office.Name,
		&office.Code,
		&office.Type,
		&office.ContactEmail,
		&office.ContactPhone,
		&office.Address,
		&office.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &office, nil
}
