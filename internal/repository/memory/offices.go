package memory

import (
	"context"
	"strings"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

type officeRepo struct{ handle }

func checkOfficeUnique(t *tables, office *domain.Office) error {
	for id, existing := range t.offices {
		if id == office.ID {
			continue
		}
		if existing.Name == office.Name {
			return duplicate(repository.ConstraintOfficeName)
		}
		if existing.Code == office.Code {
			return duplicate(repository.ConstraintOfficeCode)
		}
	}
	return nil
}

func (r *officeRepo) Create(_ context.Context, office *domain.Office) error {
	return r.write(func(t *tables) error {
		if err := checkOfficeUnique(t, office); err != nil {
			return err
		}
		t.offices[office.ID] = *office
		return nil
	})
}

func (r *officeRepo) Update(_ context.Context, office *domain.Office) error {
	return r.write(func(t *tables) error {
		existing, ok := t.offices[office.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := checkOfficeUnique(t, office); err != nil {
			return err
		}
		updated := *office
		updated.CreatedAt = existing.CreatedAt
		t.offices[office.ID] = updated
		return nil
	})
}

func (r *officeRepo) Delete(_ context.Context, id string) error {
	return r.write(func(t *tables) error {
		if _, ok := t.offices[id]; !ok {
			return repository.ErrNotFound
		}
		for _, ref := range t.referrals {
			if ref.ToOfficeID == id {
				return referenced(repository.ConstraintReferralToOffice)
			}
			if ref.FromOfficeID == id {
				return referenced(repository.ConstraintReferralFromOffice)
			}
		}
		for key, d := range t.diasporas {
			if d.OwnerOfficeID != nil && *d.OwnerOfficeID == id {
				d.OwnerOfficeID = nil
				t.diasporas[key] = d
			}
		}
		delete(t.offices, id)
		return nil
	})
}

func (r *officeRepo) GetByID(_ context.Context, id string) (*domain.Office, error) {
	var (
		office domain.Office
		ok     bool
	)
	r.read(func(t *tables) { office, ok = t.offices[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &office, nil
}

func (r *officeRepo) List(_ context.Context, filter repository.OfficeFilter) ([]domain.Office, error) {
	term := filter.Term()
	var items []domain.Office
	r.read(func(t *tables) {
		for _, office := range t.offices {
			if filter.Type != nil && office.Type != *filter.Type {
				continue
			}
			if !matches(term, office.Name, office.Code, string(office.Type)) {
				continue
			}
			items = append(items, office)
		}
	})

	o := repository.ParseOrder(filter.Ordering, repository.OfficeOrderFields, repository.DefaultOfficeOrder)
	order(items, o, func(field string, office domain.Office) sortKey {
		switch field {
		case "code":
			return strKey(office.Code)
		case "type":
			return strKey(string(office.Type))
		default:
			return strKey(office.Name)
		}
	}, func(office domain.Office) string { return office.ID })
	return paginate(items, filter.ListQuery), nil
}

type accountRepo struct{ handle }

func checkAccountUnique(t *tables, account *domain.Account) error {
	for id, existing := range t.accounts {
		if id == account.ID {
			continue
		}
		if existing.Username == account.Username {
			return duplicate(repository.ConstraintAccountUsername)
		}
		if existing.Email == account.Email {
			return duplicate(repository.ConstraintAccountEmail)
		}
	}
	return nil
}

func (r *accountRepo) Create(_ context.Context, account *domain.Account) error {
	return r.write(func(t *tables) error {
		if err := checkAccountUnique(t, account); err != nil {
			return err
		}
		t.accounts[account.ID] = *account
		return nil
	})
}

func (r *accountRepo) Update(_ context.Context, account *domain.Account) error {
	return r.write(func(t *tables) error {
		if _, ok := t.accounts[account.ID]; !ok {
			return repository.ErrNotFound
		}
		if err := checkAccountUnique(t, account); err != nil {
			return err
		}
		t.accounts[account.ID] = *account
		return nil
	})
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.ID == id })
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (r *accountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Username == username })
}

func (r *accountRepo) find(pred func(domain.Account) bool) (*domain.Account, error) {
	var found *domain.Account
	r.read(func(t *tables) {
		for _, a := range t.accounts {
			if pred(a) {
				account := a
				found = &account
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}
