package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	repos repository.Repositories
	now   time.Time
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
	s.repos = s.store.Repositories()
	s.now = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
}

func (s *StoreSuite) office(name, code string) *domain.Office {
	office := &domain.Office{ID: uuid.NewString(), Name: name, Code: code, Type: domain.OfficeTypeDiaspora, CreatedAt: s.now}
	s.Require().NoError(s.repos.Offices.Create(s.ctx, office))
	return office
}

func (s *StoreSuite) diaspora(username string, createdAt time.Time) *domain.Diaspora {
	account := &domain.Account{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		Role:      domain.RoleDiaspora,
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.repos.Accounts.Create(s.ctx, account))
	d := &domain.Diaspora{
		ID:                 uuid.NewString(),
		DiasporaCode:       domain.RandomDiasporaCode(createdAt),
		AccountID:          account.ID,
		PrimaryPhone:       "+251900000000",
		CountryOfResidence: "Canada",
		PreferredLanguage:  domain.DefaultPreferredLanguage,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	s.Require().NoError(s.repos.Diasporas.Create(s.ctx, d))
	return d
}

func (s *StoreSuite) openCase(d *domain.Diaspora) *domain.Case {
	c := &domain.Case{
		ID:            uuid.NewString(),
		DiasporaID:    d.ID,
		CurrentStage:  domain.CaseStageIntake,
		OverallStatus: domain.CaseStatusActive,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
	s.Require().NoError(s.repos.Cases.Create(s.ctx, c))
	return c
}

func (s *StoreSuite) referral(c *domain.Case, from, to *domain.Office, status domain.ReferralStatus) *domain.Referral {
	ref := &domain.Referral{
		ID:           uuid.NewString(),
		CaseID:       c.ID,
		FromOfficeID: from.ID,
		ToOfficeID:   to.ID,
		Status:       status,
		CreatedAt:    s.now,
	}
	s.Require().NoError(s.repos.Referrals.Create(s.ctx, ref))
	return ref
}

func (s *StoreSuite) TestOfficeUniqueConstraints() {
	s.office("HRO Diaspora", "HRO-DIAS")

	err := s.repos.Offices.Create(s.ctx, &domain.Office{ID: uuid.NewString(), Name: "HRO Diaspora", Code: "OTHER"})
	s.True(errors.Is(err, repository.ErrDuplicate))
	s.True(repository.IsConstraint(err, repository.ConstraintOfficeName))

	err = s.repos.Offices.Create(s.ctx, &domain.Office{ID: uuid.NewString(), Name: "Other", Code: "HRO-DIAS"})
	s.True(repository.IsConstraint(err, repository.ConstraintOfficeCode))
}

func (s *StoreSuite) TestOneCasePerDiaspora() {
	d := s.diaspora("lensa", s.now)
	s.openCase(d)

	err := s.repos.Cases.Create(s.ctx, &domain.Case{ID: uuid.NewString(), DiasporaID: d.ID})
	s.True(repository.IsConstraint(err, repository.ConstraintCaseDiaspora))
}

func (s *StoreSuite) TestOfficeDeleteProtectedByReferral() {
	o1 := s.office("HRO Diaspora", "HRO-DIAS")
	o2 := s.office("HRO Investment", "HRO-INV")
	c := s.openCase(s.diaspora("lensa", s.now))
	s.referral(c, o1, o2, domain.ReferralStatusSent)

	err := s.repos.Offices.Delete(s.ctx, o2.ID)
	s.True(errors.Is(err, repository.ErrReferenced))
	s.True(repository.IsConstraint(err, repository.ConstraintReferralToOffice))

	_, err = s.repos.Offices.GetByID(s.ctx, o2.ID)
	s.NoError(err)
}

func (s *StoreSuite) TestOfficeDeleteClearsOwnerOffice() {
	o := s.office("HRO Land", "HRO-LAND")
	d := s.diaspora("lensa", s.now)
	d.OwnerOfficeID = &o.ID
	s.Require().NoError(s.repos.Diasporas.Update(s.ctx, d))

	s.Require().NoError(s.repos.Offices.Delete(s.ctx, o.ID))

	reloaded, err := s.repos.Diasporas.GetByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.OwnerOfficeID)
}

func (s *StoreSuite) TestDiasporaDeleteCascades() {
	o1 := s.office("HRO Diaspora", "HRO-DIAS")
	o2 := s.office("HRO Investment", "HRO-INV")
	d := s.diaspora("lensa", s.now)
	c := s.openCase(d)
	ref := s.referral(c, o1, o2, domain.ReferralStatusSent)
	purpose := &domain.Purpose{ID: uuid.NewString(), DiasporaID: d.ID, Type: domain.PurposeTypeFamily, Status: domain.PurposeStatusDraft}
	s.Require().NoError(s.repos.Purposes.Create(s.ctx, purpose))

	s.Require().NoError(s.repos.Diasporas.Delete(s.ctx, d.ID))

	_, err := s.repos.Cases.GetByID(s.ctx, c.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.repos.Referrals.GetByID(s.ctx, ref.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.repos.Purposes.GetByID(s.ctx, purpose.ID)
	s.ErrorIs(err, repository.ErrNotFound)

	// offices are shared and survive
	s.NoError(s.repos.Offices.Delete(s.ctx, o2.ID))
}

func (s *StoreSuite) TestWithinTxRollsBackOnError() {
	boom := errors.New("boom")
	err := s.store.WithinTx(s.ctx, func(r repository.Repositories) error {
		if err := r.Offices.Create(s.ctx, &domain.Office{ID: uuid.NewString(), Name: "Temp", Code: "TMP"}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	offices, err := s.repos.Offices.List(s.ctx, repository.OfficeFilter{})
	s.Require().NoError(err)
	s.Empty(offices)
}

func (s *StoreSuite) TestWithinTxCommits() {
	err := s.store.WithinTx(s.ctx, func(r repository.Repositories) error {
		return r.Offices.Create(s.ctx, &domain.Office{ID: uuid.NewString(), Name: "Kept", Code: "KEPT"})
	})
	s.Require().NoError(err)

	offices, err := s.repos.Offices.List(s.ctx, repository.OfficeFilter{})
	s.Require().NoError(err)
	s.Len(offices, 1)
}

func (s *StoreSuite) TestListSearchAndOrdering() {
	s.office("Bravo", "B")
	s.office("alpha", "A")
	s.office("Charlie", "C")

	offices, err := s.repos.Offices.List(s.ctx, repository.OfficeFilter{ListQuery: repository.ListQuery{Ordering: "-code"}})
	s.Require().NoError(err)
	s.Equal([]string{"C", "B", "A"}, []string{offices[0].Code, offices[1].Code, offices[2].Code})

	offices, err = s.repos.Offices.List(s.ctx, repository.OfficeFilter{ListQuery: repository.ListQuery{Search: "ALP"}})
	s.Require().NoError(err)
	s.Require().Len(offices, 1)
	s.Equal("alpha", offices[0].Name)

	offices, err = s.repos.Offices.List(s.ctx, repository.OfficeFilter{ListQuery: repository.ListQuery{Ordering: "code", Limit: 1, Offset: 1}})
	s.Require().NoError(err)
	s.Require().Len(offices, 1)
	s.Equal("B", offices[0].Code)
}

func (s *StoreSuite) TestReferralOverdueFilter() {
	o1 := s.office("HRO Diaspora", "HRO-DIAS")
	o2 := s.office("HRO Investment", "HRO-INV")
	c := s.openCase(s.diaspora("lensa", s.now))

	due := s.now.Add(24 * time.Hour)
	open := s.referral(c, o1, o2, domain.ReferralStatusSent)
	open.SLADueAt = &due
	s.Require().NoError(s.repos.Referrals.Update(s.ctx, open))

	done := s.referral(c, o1, o2, domain.ReferralStatusCompleted)
	done.SLADueAt = &due
	s.Require().NoError(s.repos.Referrals.Update(s.ctx, done))

	later := due.Add(time.Hour)
	refs, err := s.repos.Referrals.List(s.ctx, repository.ReferralFilter{OverdueAt: &later})
	s.Require().NoError(err)
	s.Require().Len(refs, 1)
	s.Equal(open.ID, refs[0].ID)
}

func (s *StoreSuite) TestReportsFilterByCalendarDateInLocation() {
	eat := time.FixedZone("EAT", 3*60*60)
	// 2024-01-31 22:30 UTC is already February 1st in EAT.
	s.diaspora("late", time.Date(2024, time.January, 31, 22, 30, 0, 0, time.UTC))
	s.diaspora("early", time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC))

	jan := domain.DateRange{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, eat),
		To:   time.Date(2024, time.January, 31, 0, 0, 0, 0, eat),
	}
	total, err := s.repos.Reports.CountDiasporas(s.ctx, jan)
	s.Require().NoError(err)
	s.EqualValues(1, total)

	quarter := domain.DateRange{From: jan.From, To: time.Date(2024, time.March, 31, 0, 0, 0, 0, eat)}
	rows, err := s.repos.Reports.DiasporasByPeriod(s.ctx, domain.PeriodMonthly, quarter)
	s.Require().NoError(err)
	s.Equal([]domain.PeriodCount{{Period: "2024-01-01", Count: 1}, {Period: "2024-02-01", Count: 1}}, rows)
}

func (s *StoreSuite) TestReferralsByOffice() {
	o1 := s.office("Zeta Office", "Z")
	o2 := s.office("Alpha Office", "A")
	c := s.openCase(s.diaspora("lensa", s.now))
	s.referral(c, o1, o2, domain.ReferralStatusSent)
	s.referral(c, o1, o2, domain.ReferralStatusCompleted)
	s.referral(c, o2, o1, domain.ReferralStatusSent)

	rng := domain.DateRange{From: s.now.AddDate(0, 0, -1), To: s.now}
	totals, err := s.repos.Reports.ReferralTotalsByOffice(s.ctx, rng)
	s.Require().NoError(err)
	s.Equal([]domain.OfficeTotal{
		{OfficeID: o2.ID, OfficeName: "Alpha Office", OfficeCode: "A", Total: 2},
		{OfficeID: o1.ID, OfficeName: "Zeta Office", OfficeCode: "Z", Total: 1},
	}, totals)

	byStatus, err := s.repos.Reports.ReferralsByOfficeStatus(s.ctx, rng)
	s.Require().NoError(err)
	s.Require().Len(byStatus, 3)
	s.Equal("COMPLETED", byStatus[0].Status)
	s.Equal("SENT", byStatus[1].Status)
	s.Equal(o1.ID, byStatus[2].OfficeID)
}

func TestActiveCasesIgnoresDone(t *testing.T) {
	store := New()
	repos := store.Repositories()
	ctx := context.Background()

	for i, status := range []domain.CaseStatus{domain.CaseStatusActive, domain.CaseStatusPaused, domain.CaseStatusDone} {
		account := &domain.Account{ID: uuid.NewString(), Username: uuid.NewString(), Email: uuid.NewString()}
		require.NoError(t, repos.Accounts.Create(ctx, account))
		d := &domain.Diaspora{ID: uuid.NewString(), DiasporaCode: domain.FormatDiasporaCode(2020, []string{"AAAA", "BBBB", "CCCC"}[i]), AccountID: account.ID}
		require.NoError(t, repos.Diasporas.Create(ctx, d))
		require.NoError(t, repos.Cases.Create(ctx, &domain.Case{ID: uuid.NewString(), DiasporaID: d.ID, OverallStatus: status}))
	}

	total, err := repos.Reports.CountActiveCases(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}
