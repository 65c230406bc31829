package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both the pool and an open transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups every entity repository bound to one connection scope.
type Repositories struct {
	Offices     OfficeRepository
	Accounts    AccountRepository
	Diasporas   DiasporaRepository
	Purposes    PurposeRepository
	Cases       CaseRepository
	Referrals   ReferralRepository
	Transitions TransitionRepository
	Reports     ReportRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repositories() Repositories
	// WithinTx runs fn against repositories bound to a single transaction.
	// Any error returned by fn rolls the transaction back.
	WithinTx(ctx context.Context, fn func(Repositories) error) error
	Ping(ctx context.Context) error
}

// PostgresStore is the pgx backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Repositories() Repositories {
	return bind(s.pool)
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(bind(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", mapPgError(err))
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func bind(db DBTX) Repositories {
	return Repositories{
		Offices:     NewOfficeRepository(db),
		Accounts:    NewAccountRepository(db),
		Diasporas:   NewDiasporaRepository(db),
		Purposes:    NewPurposeRepository(db),
		Cases:       NewCaseRepository(db),
		Referrals:   NewReferralRepository(db),
		Transitions: NewTransitionRepository(db),
		Reports:     NewReportRepository(db),
	}
}
