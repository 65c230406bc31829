package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// DiasporaRepository persists registered diaspora individuals.
type DiasporaRepository interface {
	Create(ctx context.Context, d *domain.Diaspora) error
	Update(ctx context.Context, d *domain.Diaspora) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Diaspora, error)
	GetByAccountID(ctx context.Context, accountID string) (*domain.Diaspora, error)
	GetProfile(ctx context.Context, id string) (*domain.DiasporaProfile, error)
	List(ctx context.Context, filter DiasporaFilter) ([]domain.DiasporaProfile, error)
}

type diasporaRepository struct {
	db DBTX
}

// NewDiasporaRepository returns a Postgres-backed implementation.
func NewDiasporaRepository(db DBTX) DiasporaRepository {
	return &diasporaRepository{db: db}
}

const diasporaColumns = `d.id, d.diaspora_id, d.account_id, d.gender, d.dob, d.primary_phone, d.whatsapp,
    d.country_of_residence, d.city_of_residence, d.arrival_date, d.expected_stay_duration, d.is_returnee,
    d.preferred_language, d.communication_opt_in, d.address_local, d.emergency_contact_name,
    d.emergency_contact_phone, d.passport_no, d.id_number, d.owner_office_id, d.created_by_id,
    d.created_at, d.updated_at`

const profileColumns = diasporaColumns + `,
    a.id, a.username, a.email, a.first_name, a.last_name, a.password_hash, a.role, a.created_at`

var diasporaOrderColumns = map[string]string{
	"created_at": "d.created_at",
	"updated_at": "d.updated_at",
	"first_name": "a.first_name",
	"last_name":  "a.last_name",
}

func (r *diasporaRepository) Create(ctx context.Context, d *domain.Diaspora) error {
	const query = `
        INSERT INTO diasporas (id, diaspora_id, account_id, gender, dob, primary_phone, whatsapp,
            country_of_residence, city_of_residence, arrival_date, expected_stay_duration, is_returnee,
            preferred_language, communication_opt_in, address_local, emergency_contact_name,
            emergency_contact_phone, passport_no, id_number, owner_office_id, created_by_id,
            created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`
	_, err := r.db.Exec(ctx, query,
		d.ID,
		d.DiasporaCode,
		d.AccountID,
		d.Gender,
		d.DOB,
		d.PrimaryPhone,
		d.Whatsapp,
		d.CountryOfResidence,
		d.CityOfResidence,
		d.ArrivalDate,
		d.ExpectedStayDuration,
		d.IsReturnee,
		d.PreferredLanguage,
		d.CommunicationOptIn,
		d.AddressLocal,
		d.EmergencyContactName,
		d.EmergencyContactPhone,
		d.PassportNo,
		d.IDNumber,
		d.OwnerOfficeID,
		d.CreatedByID,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return mapPgError(err)
}

func (r *diasporaRepository) Update(ctx context.Context, d *domain.Diaspora) error {
	if !validID(d.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE diasporas SET gender=$1, dob=$2, primary_phone=$3, whatsapp=$4, country_of_residence=$5,
            city_of_residence=$6, arrival_date=$7, expected_stay_duration=$8, is_returnee=$9,
            preferred_language=$10, communication_opt_in=$11, address_local=$12,
            emergency_contact_name=$13, emergency_contact_phone=$14, passport_no=$15, id_number=$16,
            owner_office_id=$17, updated_at=$18
        WHERE id=$19`
	cmd, err := r.db.Exec(ctx, query,
		d.Gender,
		d.DOB,
		d.PrimaryPhone,
		d.Whatsapp,
		d.CountryOfResidence,
		d.CityOfResidence,
		d.ArrivalDate,
		d.ExpectedStayDuration,
		d.IsReturnee,
		d.PreferredLanguage,
		d.CommunicationOptIn,
		d.AddressLocal,
		d.EmergencyContactName,
		d.EmergencyContactPhone,
		d.PassportNo,
		d.IDNumber,
		d.OwnerOfficeID,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *diasporaRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM diasporas WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *diasporaRepository) GetByID(ctx context.Context, id string) (*domain.Diaspora, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+diasporaColumns+` FROM diasporas d WHERE d.id=$1`, id)
	var d domain.Diaspora
	if err := row.Scan(diasporaTargets(&d)...); err != nil {
		return nil, mapPgError(err)
	}
	return &d, nil
}

func (r *diasporaRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Diaspora, error) {
	if !validID(accountID) {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+diasporaColumns+` FROM diasporas d WHERE d.account_id=$1`, accountID)
	var d domain.Diaspora
	if err := row.Scan(diasporaTargets(&d)...); err != nil {
		return nil, mapPgError(err)
	}
	return &d, nil
}

func (r *diasporaRepository) GetProfile(ctx context.Context, id string) (*domain.DiasporaProfile, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM diasporas d JOIN accounts a ON a.id = d.account_id WHERE d.id=$1`, id)
	profile, err := scanProfile(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return profile, nil
}

func (r *diasporaRepository) List(ctx context.Context, filter DiasporaFilter) ([]domain.DiasporaProfile, error) {
	w := newWhere()
	if filter.OwnerOfficeID != nil {
		w.id("d.owner_office_id", *filter.OwnerOfficeID)
	}
	w.search(filter.Term(),
		"a.first_name", "a.last_name", "a.email", "a.username",
		"d.primary_phone", "d.passport_no", "d.id_number", "d.diaspora_id")

	limit, offset := filter.Page()
	order := ParseOrder(filter.Ordering, DiasporaOrderFields, DefaultDiasporaOrder)
	query := `SELECT ` + profileColumns + ` FROM diasporas d JOIN accounts a ON a.id = d.account_id WHERE ` +
		w.String() + ` ORDER BY ` + orderClause(order, diasporaOrderColumns, "d.id") +
		` LIMIT ` + w.arg(limit) + ` OFFSET ` + w.arg(offset)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []domain.DiasporaProfile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *profile)
	}
	return result, rows.Err()
}

func diasporaTargets(d *domain.Diaspora) []any {
	return []any{
		&d.ID,
		&d.DiasporaCode,
		&d.AccountID,
		&d.Gender,
		&d.DOB,
		&d.PrimaryPhone,
		&d.Whatsapp,
		&d.CountryOfResidence,
		&d.CityOfResidence,
		&d.ArrivalDate,
		&d.ExpectedStayDuration,
		&d.IsReturnee,
		&d.PreferredLanguage,
		&d.CommunicationOptIn,
		&d.AddressLocal,
		&d.EmergencyContactName,
		&d.EmergencyContactPhone,
		&d.PassportNo,
		&d.IDNumber,
		&d.OwnerOfficeID,
		&d.CreatedByID,
		&d.CreatedAt,
		&d.UpdatedAt,
	}
}

func scanProfile(row pgx.Row) (*domain.DiasporaProfile, error) {
	var (
		d       domain.Diaspora
		account domain.Account
	)
	targets := append(diasporaTargets(&d),
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
	)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	profile := domain.NewDiasporaProfile(&d, &account)
	return &profile, nil
}
