package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

func TestCreateReferralRequiresExistingRecords(t *testing.T) {
	h := newHarness(t)
	o1 := h.office(t, "Diaspora Office", "HRO-DIAS")
	c := h.openCase(t, h.register(t, "abebe").ID)

	_, err := h.referrals.Create(h.ctx, SystemActor, ReferralInput{CaseID: "missing", FromOfficeID: o1.ID, ToOfficeID: o1.ID})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = h.referrals.Create(h.ctx, SystemActor, ReferralInput{CaseID: c.ID, FromOfficeID: o1.ID, ToOfficeID: "missing"})
	requireCode(t, err, apperrors.CodeNotFound)

	ref, err := h.referrals.Create(h.ctx, SystemActor, ReferralInput{CaseID: c.ID, FromOfficeID: o1.ID, ToOfficeID: o1.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralStatusSent, ref.Status)
	assert.Nil(t, ref.ReceivedAt)
	assert.Nil(t, ref.CompletedAt)
	assert.NotNil(t, ref.Checklist)
}

func TestMarkReceivedOnlyFromSent(t *testing.T) {
	h := newHarness(t)
	o1 := h.office(t, "Diaspora Office", "HRO-DIAS")
	ref := h.refer(t, h.openCase(t, h.register(t, "abebe").ID).ID, o1, o1)

	h.clock.Advance(time.Hour)
	received, err := h.referrals.MarkReceived(h.ctx, SystemActor, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)
	assert.Equal(t, h.clock.Now(), *received.ReceivedAt)

	_, err = h.referrals.MarkReceived(h.ctx, SystemActor, ref.ID)
	requireCode(t, err, apperrors.CodeInvalidTransition)

	_, err = h.referrals.MarkReceived(h.ctx, SystemActor, "missing")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestAdvanceEnforcesCompletionStamp(t *testing.T) {
	h := newHarness(t)
	o1 := h.office(t, "Diaspora Office", "HRO-DIAS")
	ref := h.refer(t, h.openCase(t, h.register(t, "abebe").ID).ID, o1, o1)
	done := h.clock.Now().Add(2 * time.Hour)

	_, err := h.referrals.Advance(h.ctx, SystemActor, ref.ID, domain.ReferralStatusCompleted, nil)
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = h.referrals.Advance(h.ctx, SystemActor, ref.ID, domain.ReferralStatusInProgress, &done)
	requireCode(t, err, apperrors.CodeValidationFailed)

	// Permissive by default: SENT straight to COMPLETED is accepted.
	completed, err := h.referrals.Advance(h.ctx, SystemActor, ref.ID, domain.ReferralStatusCompleted, &done)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, done, *completed.CompletedAt)

	reopened, err := h.referrals.Advance(h.ctx, SystemActor, ref.ID, domain.ReferralStatusInProgress, nil)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	history, err := h.referrals.History(h.ctx, ref.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "COMPLETED", history[1].OldValue)
}

func TestStrictReferralPolicy(t *testing.T) {
	h := newHarness(t, func(o *harnessOptions) { o.referralPolicy = domain.StrictReferralPolicy{} })
	o1 := h.office(t, "Diaspora Office", "HRO-DIAS")
	ref := h.refer(t, h.openCase(t, h.register(t, "abebe").ID).ID, o1, o1)
	done := h.clock.Now()

	_, err := h.referrals.Advance(h.ctx, SystemActor, ref.ID, domain.ReferralStatusCompleted, &done)
	requireCode(t, err, apperrors.CodeInvalidTransition)

	_, err = h.referrals.MarkReceived(h.ctx, SystemActor, ref.ID)
	require.NoError(t, err)
	_, err = h.referrals.Advance(h.ctx, SystemActor, ref.ID, domain.ReferralStatusInProgress, nil)
	require.NoError(t, err)
	_, err = h.referrals.Advance(h.ctx, SystemActor, ref.ID, domain.ReferralStatusCompleted, &done)
	require.NoError(t, err)
}

func TestOverdueListingAndSync(t *testing.T) {
	h := newHarness(t)
	o1 := h.office(t, "Diaspora Office", "HRO-DIAS")
	o2 := h.office(t, "Investment Office", "HRO-INV")
	c := h.openCase(t, h.register(t, "abebe").ID)
	due := h.clock.Now().Add(24 * time.Hour)

	late, err := h.referrals.Create(h.ctx, SystemActor, ReferralInput{CaseID: c.ID, FromOfficeID: o1.ID, ToOfficeID: o2.ID, SLADueAt: &due})
	require.NoError(t, err)
	closed, err := h.referrals.Create(h.ctx, SystemActor, ReferralInput{CaseID: c.ID, FromOfficeID: o1.ID, ToOfficeID: o2.ID, SLADueAt: &due})
	require.NoError(t, err)
	_, err = h.referrals.Advance(h.ctx, SystemActor, closed.ID, domain.ReferralStatusRejected, ptr(h.clock.Now()))
	require.NoError(t, err)

	overdue, err := h.referrals.List(h.ctx, repository.ReferralFilter{}, true)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	h.clock.Advance(48 * time.Hour)
	overdue, err = h.referrals.List(h.ctx, repository.ReferralFilter{}, true)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	synced, err := h.referrals.MarkSynced(h.ctx, late.ID)
	require.NoError(t, err)
	require.NotNil(t, synced.LastSyncedAt)
	assert.Equal(t, h.clock.Now(), *synced.LastSyncedAt)
}
