package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/repository/memory"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

type recorder struct {
	mu         sync.Mutex
	events     []events.Event
	collisions int
	reports    []string
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) IncrementIDCollision() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collisions++
}

func (r *recorder) ObserveReport(report string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	ctx       context.Context
	store     *memory.Store
	clock     *clock.Fixed
	rec       *recorder
	offices   *OfficeService
	diasporas *DiasporaService
	purposes  *PurposeService
	cases     *CaseService
	referrals *ReferralService
	reports   *ReportService
	auth      *AuthService
}

type harnessOptions struct {
	codes          domain.CodeGenerator
	stagePolicy    domain.StagePolicy
	referralPolicy domain.ReferralPolicy
	strictPurposes bool
}

func newHarness(t *testing.T, opts ...func(*harnessOptions)) *harness {
	t.Helper()
	var o harnessOptions
	for _, opt := range opts {
		opt(&o)
	}

	h := &harness{
		ctx:   context.Background(),
		store: memory.New(),
		clock: clock.NewFixed(time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)),
		rec:   &recorder{},
	}
	dispatcher := events.NewInMemoryDispatcher(nil)
	events.SubscribeAll(dispatcher, h.rec.handle)

	h.offices = NewOfficeService(OfficeDependencies{Store: h.store, Clock: h.clock})
	h.diasporas = NewDiasporaService(DiasporaDependencies{
		Store:      h.store,
		Clock:      h.clock,
		Dispatcher: dispatcher,
		Codes:      o.codes,
		BcryptCost: 4,
		Collisions: h.rec,
	})
	h.purposes = NewPurposeService(PurposeDependencies{Store: h.store, Clock: h.clock, StrictFields: o.strictPurposes})
	h.cases = NewCaseService(CaseDependencies{
		Store:       h.store,
		Clock:       h.clock,
		Dispatcher:  dispatcher,
		StagePolicy: o.stagePolicy,
	})
	h.referrals = NewReferralService(ReferralDependencies{
		Store:      h.store,
		Clock:      h.clock,
		Dispatcher: dispatcher,
		Policy:     o.referralPolicy,
	})
	h.reports = NewReportService(ReportDependencies{Store: h.store, Clock: h.clock, Observer: h.rec})
	h.auth = NewAuthService(AuthDependencies{Store: h.store, Clock: h.clock, BcryptCost: 4})
	return h
}

func (h *harness) office(t *testing.T, name, code string) *domain.Office {
	t.Helper()
	office, err := h.offices.Create(h.ctx, OfficeInput{Name: name, Code: code})
	require.NoError(t, err)
	return office
}

func (h *harness) register(t *testing.T, username string) *domain.DiasporaProfile {
	t.Helper()
	profile, err := h.diasporas.Register(h.ctx, Actor{}, RegistrationInput{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		LastName:  "Tester",
		Password:  "s3cret-pass",
		Profile: DiasporaInput{
			PrimaryPhone:       "+1 555 0100",
			CountryOfResidence: "Canada",
		},
	})
	require.NoError(t, err)
	return profile
}

func (h *harness) openCase(t *testing.T, diasporaID string) *domain.Case {
	t.Helper()
	c, err := h.cases.OpenCase(h.ctx, SystemActor, diasporaID)
	require.NoError(t, err)
	return c
}

func (h *harness) refer(t *testing.T, caseID string, from, to *domain.Office) *domain.Referral {
	t.Helper()
	ref, err := h.referrals.Create(h.ctx, SystemActor, ReferralInput{
		CaseID:       caseID,
		FromOfficeID: from.ID,
		ToOfficeID:   to.ID,
		Reason:       "investment follow-up",
	})
	require.NoError(t, err)
	return ref
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func ptr[T any](v T) *T { return &v }

func diasporaActor(p *domain.DiasporaProfile) Actor {
	return Actor{AccountID: ptr(p.AccountID), Role: domain.RoleDiaspora}
}
