package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/config"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/repository/memory"
	"github.com/hrdiaspora/diaspora-service/internal/service"
)

func newServices(policy config.PolicyConfig) (*service.Services, *clock.Fixed) {
	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := service.NewServices(service.Dependencies{
		Store:  memory.New(),
		Clock:  clk,
		Logger: zap.NewNop(),
		Auth:   config.AuthConfig{JWTSecret: "seed", AccessTokenTTLMinutes: 10, BcryptCost: 4},
		Policy: policy,
	})
	return svc, clk
}

func TestRunCreatesFiveOfEach(t *testing.T) {
	ctx := context.Background()
	svc, clk := newServices(config.PolicyConfig{})
	now := clk.Now()

	res, err := Run(ctx, svc, clk, now, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Offices: 5, Diasporas: 5, Purposes: 5, Cases: 5, Referrals: 5}, res)
	assert.Equal(t, now, clk.Now())

	rng := domain.DateRange{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	periods, err := svc.Reports.DiasporasByPeriod(ctx, domain.PeriodMonthly, rng)
	require.NoError(t, err)
	assert.Len(t, periods.Rows, 5)

	cases, err := svc.Reports.CasesByStatus(ctx)
	require.NoError(t, err)
	var done int64
	for _, row := range cases.ByOverallStatus {
		if row.OverallStatus == string(domain.CaseStatusDone) {
			done = row.Count
		}
	}
	assert.EqualValues(t, 1, done)

	completed := domain.ReferralStatusCompleted
	refs, err := svc.Referrals.List(ctx, repository.ReferralFilter{Status: &completed}, false)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.NotNil(t, refs[0].CompletedAt)
}

func TestRunHonoursStrictPolicies(t *testing.T) {
	svc, clk := newServices(config.PolicyConfig{
		StrictReferralTransitions: true,
		ForwardOnlyStages:         true,
		StrictPurposeFields:       true,
	})
	_, err := Run(context.Background(), svc, clk, clk.Now(), zap.NewNop())
	require.NoError(t, err)
}

func TestRunTwiceReportsAlreadySeeded(t *testing.T) {
	ctx := context.Background()
	svc, clk := newServices(config.PolicyConfig{})
	_, err := Run(ctx, svc, clk, clk.Now(), zap.NewNop())
	require.NoError(t, err)

	_, err = Run(ctx, svc, clk, clk.Now(), zap.NewNop())
	assert.ErrorIs(t, err, ErrAlreadySeeded)
}
