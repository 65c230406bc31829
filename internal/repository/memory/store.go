// Package memory is a process-local Store used when no database is configured
// and by unit tests. It mirrors the postgres schema's constraints.
package memory

import (
	"context"
	"sync"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

type tables struct {
	offices     map[string]domain.Office
	accounts    map[string]domain.Account
	diasporas   map[string]domain.Diaspora
	purposes    map[string]domain.Purpose
	cases       map[string]domain.Case
	referrals   map[string]domain.Referral
	transitions []domain.TransitionLog
}

func newTables() *tables {
	return &tables{
		offices:   map[string]domain.Office{},
		accounts:  map[string]domain.Account{},
		diasporas: map[string]domain.Diaspora{},
		purposes:  map[string]domain.Purpose{},
		cases:     map[string]domain.Case{},
		referrals: map[string]domain.Referral{},
	}
}

func (t *tables) clone() *tables {
	return &tables{
		offices:     cloneMap(t.offices),
		accounts:    cloneMap(t.accounts),
		diasporas:   cloneMap(t.diasporas),
		purposes:    cloneMap(t.purposes),
		cases:       cloneMap(t.cases),
		referrals:   cloneMap(t.referrals),
		transitions: append([]domain.TransitionLog(nil), t.transitions...),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store keeps every table in maps guarded by one lock. Transactions are
// serialised and restore a snapshot when they fail.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *tables
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newTables()}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Repositories() repository.Repositories {
	return s.bind(false)
}

func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s.bind(true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) bind(inTx bool) repository.Repositories {
	h := handle{s: s, inTx: inTx}
	return repository.Repositories{
		Offices:     &officeRepo{h},
		Accounts:    &accountRepo{h},
		Diasporas:   &diasporaRepo{h},
		Purposes:    &purposeRepo{h},
		Cases:       &caseRepo{h},
		Referrals:   &referralRepo{h},
		Transitions: &transitionRepo{h},
		Reports:     &reportRepo{h},
	}
}

// handle is shared by every repository. Writes outside a transaction take
// the transaction lock so they cannot interleave with one.
type handle struct {
	s    *Store
	inTx bool
}

func (h handle) write(fn func(t *tables) error) error {
	if !h.inTx {
		h.s.txMu.Lock()
		defer h.s.txMu.Unlock()
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.data)
}

func (h handle) read(fn func(t *tables)) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	fn(h.s.data)
}

func duplicate(constraint string) error {
	return &repository.ConstraintError{Constraint: constraint, Err: repository.ErrDuplicate}
}

func referenced(constraint string) error {
	return &repository.ConstraintError{Constraint: constraint, Err: repository.ErrReferenced}
}
