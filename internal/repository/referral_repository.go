package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// ReferralRepository persists referrals between offices.
type ReferralRepository interface {
	Create(ctx context.Context, r *domain.Referral) error
	Update(ctx context.Context, r *domain.Referral) error
	GetByID(ctx context.Context, id string) (*domain.Referral, error)
	// GetForUpdate reads a referral and locks it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*domain.Referral, error)
	List(ctx context.Context, filter ReferralFilter) ([]domain.Referral, error)
}

type referralRepository struct {
	db DBTX
}

// NewReferralRepository returns a Postgres-backed implementation.
func NewReferralRepository(db DBTX) ReferralRepository {
	return &referralRepository{db: db}
}

const referralColumns = `r.id, r.case_id, r.from_office_id, r.to_office_id, r.reason, r.checklist, r.status,
    r.received_at, r.completed_at, r.sla_due_at, r.created_at, r.last_synced_at`

var referralOrderColumns = map[string]string{
	"created_at":   "r.created_at",
	"status":       "r.status",
	"sla_due_at":   "r.sla_due_at",
	"completed_at": "r.completed_at",
}

func (r *referralRepository) Create(ctx context.Context, ref *domain.Referral) error {
	const query = `
        INSERT INTO referrals (id, case_id, from_office_id, to_office_id, reason, checklist, status,
            received_at, completed_at, sla_due_at, created_at, last_synced_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.db.Exec(ctx, query,
		ref.ID,
		ref.CaseID,
		ref.FromOfficeID,
		ref.ToOfficeID,
		ref.Reason,
		checklistValue(ref.Checklist),
		ref.Status,
		ref.ReceivedAt,
		ref.CompletedAt,
		ref.SLADueAt,
		ref.CreatedAt,
		ref.LastSyncedAt,
	)
	return mapPgError(err)
}

func (r *referralRepository) Update(ctx context.Context, ref *domain.Referral) error {
	if !validID(ref.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE referrals SET reason=$1, checklist=$2, status=$3, received_at=$4, completed_at=$5,
            sla_due_at=$6, last_synced_at=$7
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		ref.Reason,
		checklistValue(ref.Checklist),
		ref.Status,
		ref.ReceivedAt,
		ref.CompletedAt,
		ref.SLADueAt,
		ref.LastSyncedAt,
		ref.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *referralRepository) GetByID(ctx context.Context, id string) (*domain.Referral, error) {
	return r.fetchSingle(ctx, `SELECT `+referralColumns+` FROM referrals r WHERE r.id=$1`, id)
}

func (r *referralRepository) GetForUpdate(ctx context.Context, id string) (*domain.Referral, error) {
	return r.fetchSingle(ctx, `SELECT `+referralColumns+` FROM referrals r WHERE r.id=$1 FOR UPDATE`, id)
}

func (r *referralRepository) fetchSingle(ctx context.Context, query, id string) (*domain.Referral, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ref, err := scanReferral(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ref, nil
}

func (r *referralRepository) List(ctx context.Context, filter ReferralFilter) ([]domain.Referral, error) {
	w := newWhere()
	if filter.CaseID != nil {
		w.id("r.case_id", *filter.CaseID)
	}
	if filter.Status != nil {
		w.add("r.status=%s", *filter.Status)
	}
	if filter.ToOfficeID != nil {
		w.id("r.to_office_id", *filter.ToOfficeID)
	}
	if filter.OverdueAt != nil {
		w.add("r.sla_due_at < %s AND r.status NOT IN (%s, %s)",
			*filter.OverdueAt, domain.ReferralStatusCompleted, domain.ReferralStatusRejected)
	}
	w.search(filter.Term(), "a.first_name", "a.last_name", "fo.name", "tof.name", "r.status")

	limit, offset := filter.Page()
	order := ParseOrder(filter.Ordering, ReferralOrderFields, DefaultReferralOrder)
	query := `SELECT ` + referralColumns + ` FROM referrals r
        JOIN cases c ON c.id = r.case_id
        JOIN diasporas d ON d.id = c.diaspora_id
        JOIN accounts a ON a.id = d.account_id
        JOIN offices fo ON fo.id = r.from_office_id
        JOIN offices tof ON tof.id = r.to_office_id
        WHERE ` + w.String() + ` ORDER BY ` + orderClause(order, referralOrderColumns, "r.id") +
		` LIMIT ` + w.arg(limit) + ` OFFSET ` + w.arg(offset)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []domain.Referral{}
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ref)
	}
	return result, rows.Err()
}

// checklistValue stores an absent checklist as an empty object.
func checklistValue(checklist map[string]any) map[string]any {
	if checklist == nil {
		return map[string]any{}
	}
	return checklist
}

func scanReferral(row pgx.Row) (*domain.Referral, error) {
	var ref domain.Referral
	if err := row.Scan(
		&ref.ID,
		&ref.CaseID,
		&ref.FromOfficeID,
		&ref.ToOfficeID,
		&ref.Reason,
		&ref.Checklist,
		&ref.Status,
		&ref.ReceivedAt,
		&ref.CompletedAt,
		&ref.SLADueAt,
		&ref.CreatedAt,
		&ref.LastSyncedAt,
	); err != nil {
		return nil, err
	}
	return &ref, nil
}
