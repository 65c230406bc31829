package memory

import (
	"context"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

type diasporaRepo struct{ handle }

func checkDiasporaUnique(t *tables, d *domain.Diaspora) error {
	for id, existing := range t.diasporas {
		if id == d.ID {
			continue
		}
		if existing.DiasporaCode == d.DiasporaCode {
			return duplicate(repository.ConstraintDiasporaCode)
		}
		if existing.AccountID == d.AccountID {
			return duplicate(repository.ConstraintDiasporaAccount)
		}
	}
	return nil
}

func (r *diasporaRepo) Create(_ context.Context, d *domain.Diaspora) error {
	return r.write(func(t *tables) error {
		if _, ok := t.accounts[d.AccountID]; !ok {
			return referenced("diasporas_account_id_fkey")
		}
		if err := checkDiasporaUnique(t, d); err != nil {
			return err
		}
		t.diasporas[d.ID] = *d
		return nil
	})
}

func (r *diasporaRepo) Update(_ context.Context, d *domain.Diaspora) error {
	return r.write(func(t *tables) error {
		existing, ok := t.diasporas[d.ID]
		if !ok {
			return repository.ErrNotFound
		}
		updated := *d
		// identity columns are not updatable
		updated.DiasporaCode = existing.DiasporaCode
		updated.AccountID = existing.AccountID
		updated.CreatedByID = existing.CreatedByID
		updated.CreatedAt = existing.CreatedAt
		t.diasporas[d.ID] = updated
		return nil
	})
}

func (r *diasporaRepo) Delete(_ context.Context, id string) error {
	return r.write(func(t *tables) error {
		if _, ok := t.diasporas[id]; !ok {
			return repository.ErrNotFound
		}
		for key, p := range t.purposes {
			if p.DiasporaID == id {
				delete(t.purposes, key)
			}
		}
		for caseID, c := range t.cases {
			if c.DiasporaID != id {
				continue
			}
			for refID, ref := range t.referrals {
				if ref.CaseID == caseID {
					delete(t.referrals, refID)
				}
			}
			delete(t.cases, caseID)
		}
		delete(t.diasporas, id)
		return nil
	})
}

func (r *diasporaRepo) GetByID(_ context.Context, id string) (*domain.Diaspora, error) {
	var (
		d  domain.Diaspora
		ok bool
	)
	r.read(func(t *tables) { d, ok = t.diasporas[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *diasporaRepo) GetByAccountID(_ context.Context, accountID string) (*domain.Diaspora, error) {
	var found *domain.Diaspora
	r.read(func(t *tables) {
		for _, d := range t.diasporas {
			if d.AccountID == accountID {
				item := d
				found = &item
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *diasporaRepo) GetProfile(_ context.Context, id string) (*domain.DiasporaProfile, error) {
	var profile *domain.DiasporaProfile
	r.read(func(t *tables) {
		d, ok := t.diasporas[id]
		if !ok {
			return
		}
		p := profileOf(t, d)
		profile = &p
	})
	if profile == nil {
		return nil, repository.ErrNotFound
	}
	return profile, nil
}

func (r *diasporaRepo) List(_ context.Context, filter repository.DiasporaFilter) ([]domain.DiasporaProfile, error) {
	term := filter.Term()
	var items []domain.DiasporaProfile
	r.read(func(t *tables) {
		for _, d := range t.diasporas {
			if filter.OwnerOfficeID != nil && (d.OwnerOfficeID == nil || *d.OwnerOfficeID != *filter.OwnerOfficeID) {
				continue
			}
			p := profileOf(t, d)
			if !matches(term,
				p.Identity.FirstName, p.Identity.LastName, p.Identity.Email, p.Identity.Username,
				d.PrimaryPhone, deref(d.PassportNo), deref(d.IDNumber), d.DiasporaCode) {
				continue
			}
			items = append(items, p)
		}
	})

	o := repository.ParseOrder(filter.Ordering, repository.DiasporaOrderFields, repository.DefaultDiasporaOrder)
	order(items, o, func(field string, p domain.DiasporaProfile) sortKey {
		switch field {
		case "updated_at":
			return timeKey(p.UpdatedAt)
		case "first_name":
			return strKey(p.Identity.FirstName)
		case "last_name":
			return strKey(p.Identity.LastName)
		default:
			return timeKey(p.CreatedAt)
		}
	}, func(p domain.DiasporaProfile) string { return p.ID })
	return paginate(items, filter.ListQuery), nil
}

func profileOf(t *tables, d domain.Diaspora) domain.DiasporaProfile {
	var account *domain.Account
	if a, ok := t.accounts[d.AccountID]; ok {
		account = &a
	}
	return domain.NewDiasporaProfile(&d, account)
}

// accountFor returns the account behind a diaspora id, zero when unknown.
func accountFor(t *tables, diasporaID string) (domain.Diaspora, domain.Account) {
	d := t.diasporas[diasporaID]
	return d, t.accounts[d.AccountID]
}
