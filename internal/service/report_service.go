package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// ReportObserver records report latencies.
type ReportObserver interface {
	ObserveReport(report string, d time.Duration)
}

// ReportService computes read-only aggregates fresh on every call.
type ReportService struct {
	store    repository.Store
	clock    clock.Clock
	observer ReportObserver
	logger   *zap.Logger
}

// ReportDependencies bundles report service collaborators.
type ReportDependencies struct {
	Store    repository.Store
	Clock    clock.Clock
	Observer ReportObserver
	Logger   *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		store:    deps.Store,
		clock:    deps.Clock,
		observer: deps.Observer,
		logger:   nopLogger(deps.Logger),
	}
}

// ResolveRange parses an inclusive ISO date range in the clock's timezone.
// A missing to defaults to today; a missing from to one year before to.
func (s *ReportService) ResolveRange(from, to string) (domain.DateRange, error) {
	loc := s.clock.Location()

	rng := domain.DateRange{To: clock.Today(s.clock)}
	var err error
	if to = strings.TrimSpace(to); to != "" {
		if rng.To, err = time.ParseInLocation(domain.DateLayout, to, loc); err != nil {
			return domain.DateRange{}, apperrors.NewInvalidRange("to must be an ISO date (YYYY-MM-DD)",
				map[string]any{"to": to})
		}
	}
	rng.From = rng.To.AddDate(-1, 0, 0)
	if from = strings.TrimSpace(from); from != "" {
		if rng.From, err = time.ParseInLocation(domain.DateLayout, from, loc); err != nil {
			return domain.DateRange{}, apperrors.NewInvalidRange("from must be an ISO date (YYYY-MM-DD)",
				map[string]any{"from": from})
		}
	}
	if rng.To.Before(rng.From) {
		return domain.DateRange{}, apperrors.NewInvalidRange("from must not be after to",
			map[string]any{"from": rng.FromString(), "to": rng.ToString()})
	}
	return rng, nil
}

func (s *ReportService) observe(report string, started time.Time) {
	if s.observer != nil {
		s.observer.ObserveReport(report, time.Since(started))
	}
}

// Summary returns headline counts for the range. Its queries run
// concurrently, each consistent on its own.
func (s *ReportService) Summary(ctx context.Context, rng domain.DateRange) (*domain.Summary, error) {
	defer s.observe("summary", time.Now())
	reports := s.store.Repositories().Reports
	out := &domain.Summary{From: rng.FromString(), To: rng.ToString()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalDiasporas, err = reports.CountDiasporas(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveCases, err = reports.CountActiveCases(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.ReferralsByStatus, err = reports.ReferralsByStatus(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		out.PurposesBreakdown, err = reports.PurposesByType(gctx, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("summary report", zap.Error(err))
		return nil, err
	}
	out.ReferralsByStatus = nonNil(out.ReferralsByStatus)
	out.PurposesBreakdown = nonNil(out.PurposesBreakdown)
	return out, nil
}

// DiasporasByPeriod buckets registrations by calendar period. Empty buckets
// are omitted.
func (s *ReportService) DiasporasByPeriod(ctx context.Context, group domain.PeriodGroup, rng domain.DateRange) (*domain.PeriodReport, error) {
	defer s.observe("diasporas_by_period", time.Now())
	rows, err := s.store.Repositories().Reports.DiasporasByPeriod(ctx, group, rng)
	if err != nil {
		return nil, err
	}
	return &domain.PeriodReport{Group: group, From: rng.FromString(), To: rng.ToString(), Rows: nonNil(rows)}, nil
}

// ProgressByPurpose counts purposes by type and status, optionally for one type.
func (s *ReportService) ProgressByPurpose(ctx context.Context, purposeType string, rng domain.DateRange) (*domain.PurposeProgressReport, error) {
	defer s.observe("progress_by_purpose", time.Now())
	var filter *domain.PurposeType
	if purposeType = strings.ToUpper(strings.TrimSpace(purposeType)); purposeType != "" {
		t := domain.PurposeType(purposeType)
		if !t.Valid() {
			// No stored purpose can carry an unknown type.
			return &domain.PurposeProgressReport{From: rng.FromString(), To: rng.ToString(), Rows: []domain.TypeStatusCount{}}, nil
		}
		filter = &t
	}
	rows, err := s.store.Repositories().Reports.PurposeProgress(ctx, filter, rng)
	if err != nil {
		return nil, err
	}
	return &domain.PurposeProgressReport{From: rng.FromString(), To: rng.ToString(), Rows: nonNil(rows)}, nil
}

// CasesByStatus counts every case by stage and by overall status.
func (s *ReportService) CasesByStatus(ctx context.Context) (*domain.CaseStatusReport, error) {
	defer s.observe("cases_by_status", time.Now())
	reports := s.store.Repositories().Reports
	byStage, err := reports.CasesByStage(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := reports.CasesByOverallStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.CaseStatusReport{ByStage: nonNil(byStage), ByOverallStatus: nonNil(byStatus)}, nil
}

// ReferralsByOffice reports the referral load of each receiving office.
func (s *ReportService) ReferralsByOffice(ctx context.Context, rng domain.DateRange) (*domain.OfficeLoadReport, error) {
	defer s.observe("referrals_by_office", time.Now())
	reports := s.store.Repositories().Reports
	totals, err := reports.ReferralTotalsByOffice(ctx, rng)
	if err != nil {
		return nil, err
	}
	byStatus, err := reports.ReferralsByOfficeStatus(ctx, rng)
	if err != nil {
		return nil, err
	}
	return &domain.OfficeLoadReport{
		From:     rng.FromString(),
		To:       rng.ToString(),
		Totals:   nonNil(totals),
		ByStatus: nonNil(byStatus),
	}, nil
}

// nonNil keeps empty result sets rendering as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
