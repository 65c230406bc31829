package domain

import (
	"time"

	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// PurposeType categorises why a diaspora engages with the offices.
type PurposeType string

const (
	PurposeTypeInvestment PurposeType = "INVESTMENT"
	PurposeTypeTourism    PurposeType = "TOURISM"
	PurposeTypeFamily     PurposeType = "FAMILY"
	PurposeTypeStudy      PurposeType = "STUDY"
	PurposeTypeCharityNGO PurposeType = "CHARITY_NGO"
	PurposeTypeOther      PurposeType = "OTHER"
)

// Valid reports whether t is a known purpose type.
func (t PurposeType) Valid() bool {
	switch t {
	case PurposeTypeInvestment, PurposeTypeTourism, PurposeTypeFamily,
		PurposeTypeStudy, PurposeTypeCharityNGO, PurposeTypeOther:
		return true
	}
	return false
}

// PurposeStatus tracks review progress of a purpose.
type PurposeStatus string

const (
	PurposeStatusDraft       PurposeStatus = "DRAFT"
	PurposeStatusSubmitted   PurposeStatus = "SUBMITTED"
	PurposeStatusUnderReview PurposeStatus = "UNDER_REVIEW"
	PurposeStatusApproved    PurposeStatus = "APPROVED"
	PurposeStatusRejected    PurposeStatus = "REJECTED"
	PurposeStatusOnHold      PurposeStatus = "ON_HOLD"
)

// Valid reports whether s is a known purpose status.
func (s PurposeStatus) Valid() bool {
	switch s {
	case PurposeStatusDraft, PurposeStatusSubmitted, PurposeStatusUnderReview,
		PurposeStatusApproved, PurposeStatusRejected, PurposeStatusOnHold:
		return true
	}
	return false
}

// Purpose is a typed reason for engagement attached to a Diaspora.
type Purpose struct {
	ID                    string
	DiasporaID            string
	Type                  PurposeType
	Description           string
	Sector                *string
	SubSector             *string
	InvestmentType        *string
	EstimatedCapital      *float64
	Currency              *string
	JobsExpected          *int
	LandRequirement       bool
	LandSize              *float64
	PreferredLocationNote *string
	Status                PurposeStatus
	CreatedAt             time.Time
}

// HasInvestmentFields reports whether any investment-only field is populated.
func (p *Purpose) HasInvestmentFields() bool {
	return p.Sector != nil || p.SubSector != nil || p.InvestmentType != nil ||
		p.EstimatedCapital != nil || p.Currency != nil || p.JobsExpected != nil ||
		p.LandRequirement || p.LandSize != nil
}

// ValidatePurpose checks a purpose before it is written. Investment fields on
// non-investment purposes are tolerated unless strict is set.
func ValidatePurpose(p *Purpose, strict bool) error {
	if !p.Type.Valid() {
		return apperrors.NewValidationError("invalid purpose type", map[string]any{"type": p.Type})
	}
	if !p.Status.Valid() {
		return apperrors.NewValidationError("invalid purpose status", map[string]any{"status": p.Status})
	}
	if p.EstimatedCapital != nil && *p.EstimatedCapital < 0 {
		return apperrors.NewValidationError("estimated_capital must not be negative", nil)
	}
	if p.JobsExpected != nil && *p.JobsExpected < 0 {
		return apperrors.NewValidationError("jobs_expected must not be negative", nil)
	}
	if p.LandSize != nil && *p.LandSize < 0 {
		return apperrors.NewValidationError("land_size must not be negative", nil)
	}
	if strict && p.Type != PurposeTypeInvestment && p.HasInvestmentFields() {
		return apperrors.NewValidationError("investment fields are only accepted on INVESTMENT purposes",
			map[string]any{"type": p.Type})
	}
	return nil
}
