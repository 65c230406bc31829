package memory

import (
	"context"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

type purposeRepo struct{ handle }

func (r *purposeRepo) Create(_ context.Context, p *domain.Purpose) error {
	return r.write(func(t *tables) error {
		if _, ok := t.diasporas[p.DiasporaID]; !ok {
			return referenced("purposes_diaspora_id_fkey")
		}
		t.purposes[p.ID] = *p
		return nil
	})
}

func (r *purposeRepo) Update(_ context.Context, p *domain.Purpose) error {
	return r.write(func(t *tables) error {
		existing, ok := t.purposes[p.ID]
		if !ok {
			return repository.ErrNotFound
		}
		updated := *p
		updated.DiasporaID = existing.DiasporaID
		updated.CreatedAt = existing.CreatedAt
		t.purposes[p.ID] = updated
		return nil
	})
}

func (r *purposeRepo) Delete(_ context.Context, id string) error {
	return r.write(func(t *tables) error {
		if _, ok := t.purposes[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.purposes, id)
		return nil
	})
}

func (r *purposeRepo) GetByID(_ context.Context, id string) (*domain.Purpose, error) {
	var (
		p  domain.Purpose
		ok bool
	)
	r.read(func(t *tables) { p, ok = t.purposes[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *purposeRepo) List(_ context.Context, filter repository.PurposeFilter) ([]domain.Purpose, error) {
	term := filter.Term()
	var items []domain.Purpose
	r.read(func(t *tables) {
		for _, p := range t.purposes {
			if filter.DiasporaID != nil && p.DiasporaID != *filter.DiasporaID {
				continue
			}
			if filter.Type != nil && p.Type != *filter.Type {
				continue
			}
			if filter.Status != nil && p.Status != *filter.Status {
				continue
			}
			_, account := accountFor(t, p.DiasporaID)
			if !matches(term, account.FirstName, account.LastName, string(p.Type), string(p.Status),
				deref(p.Sector), deref(p.SubSector)) {
				continue
			}
			items = append(items, p)
		}
	})

	o := repository.ParseOrder(filter.Ordering, repository.PurposeOrderFields, repository.DefaultPurposeOrder)
	order(items, o, func(field string, p domain.Purpose) sortKey {
		switch field {
		case "status":
			return strKey(string(p.Status))
		case "type":
			return strKey(string(p.Type))
		case "estimated_capital":
			return floatPtrKey(p.EstimatedCapital)
		default:
			return timeKey(p.CreatedAt)
		}
	}, func(p domain.Purpose) string { return p.ID })
	return paginate(items, filter.ListQuery), nil
}
