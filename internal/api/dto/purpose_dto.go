package dto

import (
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// PurposeRequest payload for purpose create and update. Diaspora is the
// record id and is ignored on update.
type PurposeRequest struct {
	DiasporaID            string               `json:"diaspora"`
	Type                  domain.PurposeType   `json:"type"`
	Description           string               `json:"description"`
	Sector                *string              `json:"sector"`
	SubSector             *string              `json:"sub_sector"`
	InvestmentType        *string              `json:"investment_type"`
	EstimatedCapital      *float64             `json:"estimated_capital"`
	Currency              *string              `json:"currency"`
	JobsExpected          *int                 `json:"jobs_expected"`
	LandRequirement       bool                 `json:"land_requirement"`
	LandSize              *float64             `json:"land_size"`
	PreferredLocationNote *string              `json:"preferred_location_note"`
	Status                domain.PurposeStatus `json:"status"`
}

// PurposeResponse represents a purpose.
type PurposeResponse struct {
	ID                    string               `json:"id"`
	DiasporaID            string               `json:"diaspora"`
	Type                  domain.PurposeType   `json:"type"`
	Description           string               `json:"description"`
	Sector                *string              `json:"sector"`
	SubSector             *string              `json:"sub_sector"`
	InvestmentType        *string              `json:"investment_type"`
	EstimatedCapital      *float64             `json:"estimated_capital"`
	Currency              *string              `json:"currency"`
	JobsExpected          *int                 `json:"jobs_expected"`
	LandRequirement       bool                 `json:"land_requirement"`
	LandSize              *float64             `json:"land_size"`
	PreferredLocationNote *string              `json:"preferred_location_note"`
	Status                domain.PurposeStatus `json:"status"`
	CreatedAt             time.Time            `json:"created_at"`
}

func NewPurposeResponse(p *domain.Purpose) PurposeResponse {
	return PurposeResponse{
		ID:                    p.ID,
		DiasporaID:            p.DiasporaID,
		Type:                  p.Type,
		Description:           p.Description,
		Sector:                p.Sector,
		SubSector:             p.SubSector,
		InvestmentType:        p.InvestmentType,
		EstimatedCapital:      p.EstimatedCapital,
		Currency:              p.Currency,
		JobsExpected:          p.JobsExpected,
		LandRequirement:       p.LandRequirement,
		LandSize:              p.LandSize,
		PreferredLocationNote: p.PreferredLocationNote,
		Status:                p.Status,
		CreatedAt:             p.CreatedAt,
	}
}
