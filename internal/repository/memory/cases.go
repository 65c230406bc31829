package memory

import (
	"context"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

type caseRepo struct{ handle }

func (r *caseRepo) Create(_ context.Context, c *domain.Case) error {
	return r.write(func(t *tables) error {
		if _, ok := t.diasporas[c.DiasporaID]; !ok {
			return referenced("cases_diaspora_id_fkey")
		}
		for _, existing := range t.cases {
			if existing.DiasporaID == c.DiasporaID {
				return duplicate(repository.ConstraintCaseDiaspora)
			}
		}
		t.cases[c.ID] = *c
		return nil
	})
}

func (r *caseRepo) Update(_ context.Context, c *domain.Case) error {
	return r.write(func(t *tables) error {
		existing, ok := t.cases[c.ID]
		if !ok {
			return repository.ErrNotFound
		}
		existing.CurrentStage = c.CurrentStage
		existing.OverallStatus = c.OverallStatus
		existing.UpdatedAt = c.UpdatedAt
		t.cases[c.ID] = existing
		return nil
	})
}

func (r *caseRepo) GetByID(_ context.Context, id string) (*domain.Case, error) {
	var (
		c  domain.Case
		ok bool
	)
	r.read(func(t *tables) { c, ok = t.cases[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

// GetForUpdate needs no row lock: transactions are already serialised.
func (r *caseRepo) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	return r.GetByID(ctx, id)
}

func (r *caseRepo) GetByDiasporaID(_ context.Context, diasporaID string) (*domain.Case, error) {
	var found *domain.Case
	r.read(func(t *tables) {
		for _, c := range t.cases {
			if c.DiasporaID == diasporaID {
				item := c
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

func (r *caseRepo) List(_ context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	term := filter.Term()
	var items []domain.Case
	r.read(func(t *tables) {
		for _, c := range t.cases {
			if filter.Stage != nil && c.CurrentStage != *filter.Stage {
				continue
			}
			if filter.OverallStatus != nil && c.OverallStatus != *filter.OverallStatus {
				continue
			}
			d, account := accountFor(t, c.DiasporaID)
			if !matches(term, account.FirstName, account.LastName, d.PrimaryPhone, d.DiasporaCode) {
				continue
			}
			items = append(items, c)
		}
	})

	o := repository.ParseOrder(filter.Ordering, repository.CaseOrderFields, repository.DefaultCaseOrder)
	order(items, o, func(field string, c domain.Case) sortKey {
		switch field {
		case "created_at":
			return timeKey(c.CreatedAt)
		case "current_stage":
			return strKey(string(c.CurrentStage))
		case "overall_status":
			return strKey(string(c.OverallStatus))
		default:
			return timeKey(c.UpdatedAt)
		}
	}, func(c domain.Case) string { return c.ID })
	return paginate(items, filter.ListQuery), nil
}

type referralRepo struct{ handle }

func (r *referralRepo) Create(_ context.Context, ref *domain.Referral) error {
	return r.write(func(t *tables) error {
		if _, ok := t.cases[ref.CaseID]; !ok {
			return referenced("referrals_case_id_fkey")
		}
		if _, ok := t.offices[ref.FromOfficeID]; !ok {
			return referenced(repository.ConstraintReferralFromOffice)
		}
		if _, ok := t.offices[ref.ToOfficeID]; !ok {
			return referenced(repository.ConstraintReferralToOffice)
		}
		item := *ref
		item.Checklist = copyChecklist(ref.Checklist)
		t.referrals[ref.ID] = item
		return nil
	})
}

func (r *referralRepo) Update(_ context.Context, ref *domain.Referral) error {
	return r.write(func(t *tables) error {
		existing, ok := t.referrals[ref.ID]
		if !ok {
			return repository.ErrNotFound
		}
		existing.Reason = ref.Reason
		existing.Checklist = copyChecklist(ref.Checklist)
		existing.Status = ref.Status
		existing.ReceivedAt = ref.ReceivedAt
		existing.CompletedAt = ref.CompletedAt
		existing.SLADueAt = ref.SLADueAt
		existing.LastSyncedAt = ref.LastSyncedAt
		t.referrals[ref.ID] = existing
		return nil
	})
}

func (r *referralRepo) GetByID(_ context.Context, id string) (*domain.Referral, error) {
	var (
		ref domain.Referral
		ok  bool
	)
	r.read(func(t *tables) { ref, ok = t.referrals[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	ref.Checklist = copyChecklist(ref.Checklist)
	return &ref, nil
}

func (r *referralRepo) GetForUpdate(ctx context.Context, id string) (*domain.Referral, error) {
	return r.GetByID(ctx, id)
}

func (r *referralRepo) List(_ context.Context, filter repository.ReferralFilter) ([]domain.Referral, error) {
	term := filter.Term()
	var items []domain.Referral
	r.read(func(t *tables) {
		for _, ref := range t.referrals {
			if filter.CaseID != nil && ref.CaseID != *filter.CaseID {
				continue
			}
			if filter.Status != nil && ref.Status != *filter.Status {
				continue
			}
			if filter.ToOfficeID != nil && ref.ToOfficeID != *filter.ToOfficeID {
				continue
			}
			if filter.OverdueAt != nil && !ref.Overdue(*filter.OverdueAt) {
				continue
			}
			_, account := accountFor(t, t.cases[ref.CaseID].DiasporaID)
			if !matches(term, account.FirstName, account.LastName,
				t.offices[ref.FromOfficeID].Name, t.offices[ref.ToOfficeID].Name, string(ref.Status)) {
				continue
			}
			ref.Checklist = copyChecklist(ref.Checklist)
			items = append(items, ref)
		}
	})

	o := repository.ParseOrder(filter.Ordering, repository.ReferralOrderFields, repository.DefaultReferralOrder)
	order(items, o, func(field string, ref domain.Referral) sortKey {
		switch field {
		case "status":
			return strKey(string(ref.Status))
		case "sla_due_at":
			return timePtrKey(ref.SLADueAt)
		case "completed_at":
			return timePtrKey(ref.CompletedAt)
		default:
			return timeKey(ref.CreatedAt)
		}
	}, func(ref domain.Referral) string { return ref.ID })
	return paginate(items, filter.ListQuery), nil
}

func copyChecklist(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type transitionRepo struct{ handle }

func (r *transitionRepo) Create(_ context.Context, entry *domain.TransitionLog) error {
	return r.write(func(t *tables) error {
		t.transitions = append(t.transitions, *entry)
		return nil
	})
}

func (r *transitionRepo) ListByEntity(_ context.Context, entity domain.TransitionEntity, entityID string) ([]domain.TransitionLog, error) {
	result := []domain.TransitionLog{}
	r.read(func(t *tables) {
		for _, entry := range t.transitions {
			if entry.Entity == entity && entry.EntityID == entityID {
				result = append(result, entry)
			}
		}
	})
	return result, nil
}
