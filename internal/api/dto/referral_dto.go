package dto

import (
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// CreateReferralRequest payload.
type CreateReferralRequest struct {
	CaseID       string         `json:"case_id"`
	FromOfficeID string         `json:"from_office_id"`
	ToOfficeID   string         `json:"to_office_id"`
	Reason       string         `json:"reason"`
	Checklist    map[string]any `json:"checklist"`
	SLADueAt     *time.Time     `json:"sla_due_at"`
}

// AdvanceReferralRequest sets a referral status. CompletedAt is required
// for COMPLETED and REJECTED.
type AdvanceReferralRequest struct {
	Status      domain.ReferralStatus `json:"status"`
	CompletedAt *time.Time            `json:"completed_at"`
}

// ReferralResponse represents a referral.
type ReferralResponse struct {
	ID           string                `json:"id"`
	CaseID       string                `json:"case_id"`
	FromOfficeID string                `json:"from_office_id"`
	ToOfficeID   string                `json:"to_office_id"`
	Reason       string                `json:"reason"`
	Checklist    map[string]any        `json:"checklist"`
	Status       domain.ReferralStatus `json:"status"`
	ReceivedAt   *time.Time            `json:"received_at"`
	CompletedAt  *time.Time            `json:"completed_at"`
	SLADueAt     *time.Time            `json:"sla_due_at"`
	Overdue      bool                  `json:"overdue"`
	CreatedAt    time.Time             `json:"created_at"`
	LastSyncedAt *time.Time            `json:"last_synced_at"`
}

// NewReferralResponse maps a referral; now decides the overdue flag.
func NewReferralResponse(r *domain.Referral, now time.Time) ReferralResponse {
	return ReferralResponse{
		ID:           r.ID,
		CaseID:       r.CaseID,
		FromOfficeID: r.FromOfficeID,
		ToOfficeID:   r.ToOfficeID,
		Reason:       r.Reason,
		Checklist:    r.Checklist,
		Status:       r.Status,
		ReceivedAt:   r.ReceivedAt,
		CompletedAt:  r.CompletedAt,
		SLADueAt:     r.SLADueAt,
		Overdue:      r.Overdue(now),
		CreatedAt:    r.CreatedAt,
		LastSyncedAt: r.LastSyncedAt,
	}
}
