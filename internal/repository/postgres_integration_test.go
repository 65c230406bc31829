//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/config"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/persistence"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/service"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *repository.PostgresStore
	clock     *clock.Fixed
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("diaspora"),
		tcpostgres.WithUsername("diaspora"),
		tcpostgres.WithPassword("diaspora"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.pool, err = pgxpool.New(s.ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(persistence.RunMigrations(s.ctx, s.pool, "../../migrations", zap.NewNop()))
	s.store = repository.NewPostgresStore(s.pool)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE transition_logs, referrals, cases, purposes, diasporas, accounts, offices CASCADE`)
	s.Require().NoError(err)
	s.clock = clock.NewFixed(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
}

func (s *PostgresSuite) services(codes domain.CodeGenerator) *service.Services {
	return service.NewServices(service.Dependencies{
		Store:  s.store,
		Clock:  s.clock,
		Logger: zap.NewNop(),
		Auth:   config.AuthConfig{JWTSecret: "it", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Codes:  codes,
	})
}

func registration(email string) service.RegistrationInput {
	return service.RegistrationInput{
		Email:     email,
		Password:  "integration-pass",
		FirstName: "Lensa",
		LastName:  "Mohammed",
		Profile: service.DiasporaInput{
			PrimaryPhone:       "+251911000101",
			CountryOfResidence: "UAE",
		},
	}
}

func (s *PostgresSuite) TestDiasporaCodeCollisionRetries() {
	calls := 0
	codes := func(now time.Time) string {
		calls++
		if calls <= 2 {
			return domain.FormatDiasporaCode(now.Year(), "AAAA")
		}
		return domain.FormatDiasporaCode(now.Year(), "BBBB")
	}
	svc := s.services(codes)

	first, err := svc.Diasporas.Register(s.ctx, service.SystemActor, registration("first@example.org"))
	s.Require().NoError(err)
	s.Equal("HR-DIAS-2024-AAAA", first.DiasporaCode)

	second, err := svc.Diasporas.Register(s.ctx, service.SystemActor, registration("second@example.org"))
	s.Require().NoError(err)
	s.Equal("HR-DIAS-2024-BBBB", second.DiasporaCode)

	var accounts int
	s.Require().NoError(s.pool.QueryRow(s.ctx, `SELECT COUNT(*) FROM accounts`).Scan(&accounts))
	s.Equal(2, accounts)
}

func (s *PostgresSuite) TestDuplicateEmailIsRejected() {
	svc := s.services(nil)
	_, err := svc.Diasporas.Register(s.ctx, service.SystemActor, registration("dup@example.org"))
	s.Require().NoError(err)

	_, err = svc.Diasporas.Register(s.ctx, service.SystemActor, registration("dup@example.org"))
	s.True(apperrors.HasCode(err, apperrors.CodeAlreadyExists))
}

func (s *PostgresSuite) TestMalformedIDsAreNotFound() {
	svc := s.services(nil)

	_, err := svc.Cases.Get(s.ctx, "abc")
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = svc.Referrals.Create(s.ctx, service.SystemActor, service.ReferralInput{
		CaseID: "x", FromOfficeID: "y", ToOfficeID: "z",
	})
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))

	caseID := "x"
	rows, err := svc.Referrals.List(s.ctx, repository.ReferralFilter{CaseID: &caseID}, false)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *PostgresSuite) TestSearchTreatsWildcardsLiterally() {
	svc := s.services(nil)
	_, err := svc.Offices.Create(s.ctx, service.OfficeInput{Name: "Land & Housing Bureau", Code: "LAND"})
	s.Require().NoError(err)

	found, err := svc.Offices.List(s.ctx, repository.OfficeFilter{ListQuery: repository.ListQuery{Search: "land & housing"}})
	s.Require().NoError(err)
	s.Len(found, 1)

	found, err = svc.Offices.List(s.ctx, repository.OfficeFilter{ListQuery: repository.ListQuery{Search: "l_nd"}})
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *PostgresSuite) TestLifecycleAndReports() {
	svc := s.services(nil)
	from, err := svc.Offices.Create(s.ctx, service.OfficeInput{Name: "Diaspora Desk", Code: "DD"})
	s.Require().NoError(err)
	to, err := svc.Offices.Create(s.ctx, service.OfficeInput{Name: "Land Office", Code: "LAND", Type: domain.OfficeTypeLand})
	s.Require().NoError(err)

	profile, err := svc.Diasporas.Register(s.ctx, service.SystemActor, registration("life@example.org"))
	s.Require().NoError(err)

	opened, err := svc.Cases.OpenCase(s.ctx, service.SystemActor, profile.ID)
	s.Require().NoError(err)
	_, err = svc.Cases.OpenCase(s.ctx, service.SystemActor, profile.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeAlreadyExists))

	_, backward, err := svc.Cases.AdvanceStage(s.ctx, service.SystemActor, opened.ID, domain.CaseStageReferral)
	s.Require().NoError(err)
	s.False(backward)

	due := s.clock.Now().Add(24 * time.Hour)
	ref, err := svc.Referrals.Create(s.ctx, service.SystemActor, service.ReferralInput{
		CaseID:       opened.ID,
		FromOfficeID: from.ID,
		ToOfficeID:   to.ID,
		Checklist:    map[string]any{"documents": []any{"passport"}},
		SLADueAt:     &due,
	})
	s.Require().NoError(err)

	s.clock.Advance(48 * time.Hour)
	overdue, err := svc.Referrals.List(s.ctx, repository.ReferralFilter{}, true)
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(ref.ID, overdue[0].ID)
	s.Equal([]any{"passport"}, overdue[0].Checklist["documents"])

	_, err = svc.Referrals.MarkReceived(s.ctx, service.SystemActor, ref.ID)
	s.Require().NoError(err)
	completedAt := s.clock.Now()
	_, err = svc.Referrals.Advance(s.ctx, service.SystemActor, ref.ID, domain.ReferralStatusCompleted, &completedAt)
	s.Require().NoError(err)

	history, err := svc.Referrals.History(s.ctx, ref.ID)
	s.Require().NoError(err)
	s.Len(history, 2)

	err = svc.Offices.Delete(s.ctx, to.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeReferencedProtected))

	rng, err := svc.Reports.ResolveRange("2024-01-01", "2024-01-31")
	s.Require().NoError(err)
	summary, err := svc.Reports.Summary(s.ctx, rng)
	s.Require().NoError(err)
	s.EqualValues(1, summary.TotalDiasporas)
	s.EqualValues(1, summary.ActiveCases)

	load, err := svc.Reports.ReferralsByOffice(s.ctx, rng)
	s.Require().NoError(err)
	s.Require().Len(load.Totals, 1)
	s.Equal("LAND", load.Totals[0].OfficeCode)

	s.Require().NoError(svc.Diasporas.Delete(s.ctx, profile.ID))
	_, err = svc.Cases.Get(s.ctx, opened.ID)
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
}
