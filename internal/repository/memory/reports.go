package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

type reportRepo struct{ handle }

func (r *reportRepo) CountDiasporas(_ context.Context, rng domain.DateRange) (int64, error) {
	var total int64
	r.read(func(t *tables) {
		for _, d := range t.diasporas {
			if rng.Contains(d.CreatedAt) {
				total++
			}
		}
	})
	return total, nil
}

func (r *reportRepo) CountActiveCases(context.Context) (int64, error) {
	var total int64
	r.read(func(t *tables) {
		for _, c := range t.cases {
			if c.OverallStatus != domain.CaseStatusDone {
				total++
			}
		}
	})
	return total, nil
}

func (r *reportRepo) ReferralsByStatus(_ context.Context, rng domain.DateRange) ([]domain.StatusCount, error) {
	counts := map[string]int64{}
	r.read(func(t *tables) {
		for _, ref := range t.referrals {
			if rng.Contains(ref.CreatedAt) {
				counts[string(ref.Status)]++
			}
		}
	})
	result := []domain.StatusCount{}
	for _, key := range sortedKeys(counts) {
		result = append(result, domain.StatusCount{Status: key, Count: counts[key]})
	}
	return result, nil
}

func (r *reportRepo) PurposesByType(_ context.Context, rng domain.DateRange) ([]domain.TypeCount, error) {
	counts := map[string]int64{}
	r.read(func(t *tables) {
		for _, p := range t.purposes {
			if rng.Contains(p.CreatedAt) {
				counts[string(p.Type)]++
			}
		}
	})
	result := []domain.TypeCount{}
	for _, key := range sortedKeys(counts) {
		result = append(result, domain.TypeCount{Type: key, Count: counts[key]})
	}
	return result, nil
}

func (r *reportRepo) DiasporasByPeriod(_ context.Context, group domain.PeriodGroup, rng domain.DateRange) ([]domain.PeriodCount, error) {
	counts := map[string]int64{}
	loc := rng.Location()
	r.read(func(t *tables) {
		for _, d := range t.diasporas {
			if rng.Contains(d.CreatedAt) {
				counts[group.Truncate(d.CreatedAt, loc).Format(domain.DateLayout)]++
			}
		}
	})
	result := []domain.PeriodCount{}
	for _, key := range sortedKeys(counts) {
		result = append(result, domain.PeriodCount{Period: key, Count: counts[key]})
	}
	return result, nil
}

func (r *reportRepo) PurposeProgress(_ context.Context, purposeType *domain.PurposeType, rng domain.DateRange) ([]domain.TypeStatusCount, error) {
	type pair struct{ typ, status string }
	counts := map[pair]int64{}
	r.read(func(t *tables) {
		for _, p := range t.purposes {
			if !rng.Contains(p.CreatedAt) {
				continue
			}
			if purposeType != nil && p.Type != *purposeType {
				continue
			}
			counts[pair{string(p.Type), string(p.Status)}]++
		}
	})
	result := []domain.TypeStatusCount{}
	for key, n := range counts {
		result = append(result, domain.TypeStatusCount{Type: key.typ, Status: key.status, Count: n})
	}
	slices.SortFunc(result, func(a, b domain.TypeStatusCount) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.Status, b.Status))
	})
	return result, nil
}

func (r *reportRepo) CasesByStage(context.Context) ([]domain.StageCount, error) {
	counts := map[string]int64{}
	r.read(func(t *tables) {
		for _, c := range t.cases {
			counts[string(c.CurrentStage)]++
		}
	})
	result := []domain.StageCount{}
	for _, key := range sortedKeys(counts) {
		result = append(result, domain.StageCount{Stage: key, Count: counts[key]})
	}
	return result, nil
}

func (r *reportRepo) CasesByOverallStatus(context.Context) ([]domain.OverallStatusCount, error) {
	counts := map[string]int64{}
	r.read(func(t *tables) {
		for _, c := range t.cases {
			counts[string(c.OverallStatus)]++
		}
	})
	result := []domain.OverallStatusCount{}
	for _, key := range sortedKeys(counts) {
		result = append(result, domain.OverallStatusCount{OverallStatus: key, Count: counts[key]})
	}
	return result, nil
}

func (r *reportRepo) ReferralTotalsByOffice(_ context.Context, rng domain.DateRange) ([]domain.OfficeTotal, error) {
	totals := map[string]*domain.OfficeTotal{}
	r.read(func(t *tables) {
		for _, ref := range t.referrals {
			if !rng.Contains(ref.CreatedAt) {
				continue
			}
			row, ok := totals[ref.ToOfficeID]
			if !ok {
				office := t.offices[ref.ToOfficeID]
				row = &domain.OfficeTotal{OfficeID: office.ID, OfficeName: office.Name, OfficeCode: office.Code}
				totals[ref.ToOfficeID] = row
			}
			row.Total++
		}
	})
	result := []domain.OfficeTotal{}
	for _, row := range totals {
		result = append(result, *row)
	}
	slices.SortFunc(result, func(a, b domain.OfficeTotal) int {
		return cmp.Or(cmp.Compare(a.OfficeName, b.OfficeName), cmp.Compare(a.OfficeID, b.OfficeID))
	})
	return result, nil
}

func (r *reportRepo) ReferralsByOfficeStatus(_ context.Context, rng domain.DateRange) ([]domain.OfficeStatusCount, error) {
	type key struct{ office, status string }
	rows := map[key]*domain.OfficeStatusCount{}
	r.read(func(t *tables) {
		for _, ref := range t.referrals {
			if !rng.Contains(ref.CreatedAt) {
				continue
			}
			k := key{ref.ToOfficeID, string(ref.Status)}
			row, ok := rows[k]
			if !ok {
				office := t.offices[ref.ToOfficeID]
				row = &domain.OfficeStatusCount{
					OfficeID:   office.ID,
					OfficeName: office.Name,
					OfficeCode: office.Code,
					Status:     string(ref.Status),
				}
				rows[k] = row
			}
			row.Count++
		}
	})
	result := []domain.OfficeStatusCount{}
	for _, row := range rows {
		result = append(result, *row)
	}
	slices.SortFunc(result, func(a, b domain.OfficeStatusCount) int {
		return cmp.Or(
			cmp.Compare(a.OfficeName, b.OfficeName),
			cmp.Compare(a.OfficeID, b.OfficeID),
			cmp.Compare(a.Status, b.Status),
		)
	})
	return result, nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
