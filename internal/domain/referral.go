package domain

import (
	"time"

	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// ReferralStatus tracks a referral through the receiving office.
type ReferralStatus string

const (
	ReferralStatusSent       ReferralStatus = "SENT"
	ReferralStatusReceived   ReferralStatus = "RECEIVED"
	ReferralStatusInProgress ReferralStatus = "IN_PROGRESS"
	ReferralStatusCompleted  ReferralStatus = "COMPLETED"
	ReferralStatusRejected   ReferralStatus = "REJECTED"
)

// Valid reports whether s is a known referral status.
func (s ReferralStatus) Valid() bool {
	switch s {
	case ReferralStatusSent, ReferralStatusReceived, ReferralStatusInProgress,
		ReferralStatusCompleted, ReferralStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s ends the referral.
func (s ReferralStatus) Terminal() bool {
	return s == ReferralStatusCompleted || s == ReferralStatusRejected
}

// Referral routes a Case from one office to another.
type Referral struct {
	ID           string
	CaseID       string
	FromOfficeID string
	ToOfficeID   string
	Reason       string
	Checklist    map[string]any
	Status       ReferralStatus
	ReceivedAt   *time.Time
	CompletedAt  *time.Time
	SLADueAt     *time.Time
	CreatedAt    time.Time
	LastSyncedAt *time.Time
}

// Overdue reports whether the SLA deadline passed while the referral is still open.
func (r *Referral) Overdue(now time.Time) bool {
	return r.SLADueAt != nil && !r.Status.Terminal() && now.After(*r.SLADueAt)
}

// ValidateCompletion enforces that completed_at accompanies exactly the
// terminal statuses.
func ValidateCompletion(status ReferralStatus, completedAt *time.Time) error {
	if status.Terminal() && completedAt == nil {
		return apperrors.NewValidationError("completed_at is required for terminal referral status",
			map[string]any{"status": status})
	}
	if !status.Terminal() && completedAt != nil {
		return apperrors.NewValidationError("completed_at is only accepted for terminal referral status",
			map[string]any{"status": status})
	}
	return nil
}

// ReferralPolicy decides whether a referral status change is allowed.
type ReferralPolicy interface {
	CheckReferral(from, to ReferralStatus) error
}

// PermissiveReferralPolicy allows any status change.
type PermissiveReferralPolicy struct{}

func (PermissiveReferralPolicy) CheckReferral(_, _ ReferralStatus) error { return nil }

// StrictReferralPolicy follows SENT -> RECEIVED -> IN_PROGRESS -> COMPLETED/REJECTED.
type StrictReferralPolicy struct{}

var allowedReferralTransitions = map[ReferralStatus][]ReferralStatus{
	ReferralStatusSent:       {ReferralStatusReceived, ReferralStatusRejected},
	ReferralStatusReceived:   {ReferralStatusInProgress, ReferralStatusRejected},
	ReferralStatusInProgress: {ReferralStatusCompleted, ReferralStatusRejected},
	ReferralStatusCompleted:  {},
	ReferralStatusRejected:   {},
}

func (StrictReferralPolicy) CheckReferral(from, to ReferralStatus) error {
	for _, candidate := range allowedReferralTransitions[from] {
		if candidate == to {
			return nil
		}
	}
	return apperrors.NewInvalidTransition("referral status change not permitted",
		map[string]any{"from": from, "to": to})
}
