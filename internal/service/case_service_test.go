package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

func TestOpenCase(t *testing.T) {
	h := newHarness(t)
	d := h.register(t, "abebe")

	c := h.openCase(t, d.ID)
	assert.Equal(t, domain.CaseStageIntake, c.CurrentStage)
	assert.Equal(t, domain.CaseStatusActive, c.OverallStatus)

	_, err := h.cases.OpenCase(h.ctx, SystemActor, d.ID)
	requireCode(t, err, apperrors.CodeAlreadyExists)

	_, err = h.cases.OpenCase(h.ctx, SystemActor, "missing")
	requireCode(t, err, apperrors.CodeNotFound)

	got, err := h.cases.GetByDiaspora(h.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestAdvanceStageFlagsBackwardMoves(t *testing.T) {
	h := newHarness(t)
	c := h.openCase(t, h.register(t, "abebe").ID)
	officer := Actor{AccountID: ptr("officer-1"), Role: domain.RoleOfficer}

	h.clock.Advance(time.Hour)
	updated, backward, err := h.cases.AdvanceStage(h.ctx, officer, c.ID, domain.CaseStageProcessing)
	require.NoError(t, err)
	assert.False(t, backward)
	assert.Equal(t, domain.CaseStageProcessing, updated.CurrentStage)
	assert.Equal(t, h.clock.Now(), updated.UpdatedAt)

	_, backward, err = h.cases.AdvanceStage(h.ctx, officer, c.ID, domain.CaseStageScreening)
	require.NoError(t, err)
	assert.True(t, backward)

	history, err := h.cases.History(h.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "INTAKE", history[0].OldValue)
	assert.Equal(t, "PROCESSING", history[0].NewValue)
	assert.Equal(t, "SCREENING", history[1].NewValue)
	assert.Equal(t, "officer-1", *history[1].ActorID)

	last := h.rec.events[len(h.rec.events)-1]
	assert.Equal(t, events.EventCaseStageChanged, last.Type)
	assert.True(t, last.Payload.(events.CaseStageChangedPayload).Backward)
}

func TestAdvanceStageHonoursPolicy(t *testing.T) {
	h := newHarness(t, func(o *harnessOptions) { o.stagePolicy = domain.ForwardOnlyStagePolicy{} })
	c := h.openCase(t, h.register(t, "abebe").ID)

	_, _, err := h.cases.AdvanceStage(h.ctx, SystemActor, c.ID, domain.CaseStageReferral)
	require.NoError(t, err)

	_, _, err = h.cases.AdvanceStage(h.ctx, SystemActor, c.ID, domain.CaseStageIntake)
	requireCode(t, err, apperrors.CodeInvalidTransition)

	_, _, err = h.cases.AdvanceStage(h.ctx, SystemActor, c.ID, "ARCHIVED")
	requireCode(t, err, apperrors.CodeValidationFailed)

	got, err := h.cases.Get(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStageReferral, got.CurrentStage)
}

func TestDoneCaseKeepsReferralsOpen(t *testing.T) {
	h := newHarness(t)
	o1 := h.office(t, "Diaspora Office", "HRO-DIAS")
	c := h.openCase(t, h.register(t, "abebe").ID)
	ref := h.refer(t, c.ID, o1, o1)

	updated, err := h.cases.SetOverallStatus(h.ctx, SystemActor, c.ID, domain.CaseStatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusDone, updated.OverallStatus)

	got, err := h.referrals.Get(h.ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralStatusSent, got.Status)

	_, err = h.cases.SetOverallStatus(h.ctx, SystemActor, c.ID, "FINISHED")
	requireCode(t, err, apperrors.CodeValidationFailed)
}
