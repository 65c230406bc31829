package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// Store sentinels. Services translate them into domain errors.
var (
	ErrNotFound   = apperrors.ErrRecordNotFound
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is referenced")
)

// Constraint names shared by the postgres schema and the memory store.
const (
	ConstraintOfficeName         = "offices_name_key"
	ConstraintOfficeCode         = "offices_code_key"
	ConstraintAccountUsername    = "accounts_username_key"
	ConstraintAccountEmail       = "accounts_email_key"
	ConstraintDiasporaCode       = "diasporas_diaspora_id_key"
	ConstraintDiasporaAccount    = "diasporas_account_id_key"
	ConstraintCaseDiaspora       = "cases_diaspora_id_key"
	ConstraintReferralFromOffice = "referrals_from_office_id_fkey"
	ConstraintReferralToOffice   = "referrals_to_office_id_fkey"
)

// ConstraintError reports a violated store constraint.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IsConstraint reports whether err violated the named constraint.
func IsConstraint(err error, name string) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Constraint == name
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextValue    = "22P02"
)

// validID reports whether every id is a well-formed row key. Malformed keys
// can never match a row, so callers treat them as not found.
func validID(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

// mapPgError converts driver errors into store sentinels.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &ConstraintError{Constraint: pgErr.ConstraintName, Err: ErrDuplicate}
		case pgForeignKeyViolation:
			return &ConstraintError{Constraint: pgErr.ConstraintName, Err: ErrReferenced}
		case pgInvalidTextValue:
			return ErrNotFound
		}
	}
	return err
}
