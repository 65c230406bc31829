package dto

import (
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// OfficeRequest payload for office create and update.
type OfficeRequest struct {
	Name         string            `json:"name"`
	Code         string            `json:"code"`
	Type         domain.OfficeType `json:"type"`
	ContactEmail *string           `json:"contact_email"`
	ContactPhone *string           `json:"contact_phone"`
	Address      string            `json:"address"`
}

// OfficeResponse represents an office.
type OfficeResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Code         string            `json:"code"`
	Type         domain.OfficeType `json:"type"`
	ContactEmail *string           `json:"contact_email"`
	ContactPhone *string           `json:"contact_phone"`
	Address      string            `json:"address"`
	CreatedAt    time.Time         `json:"created_at"`
}

func NewOfficeResponse(o *domain.Office) OfficeResponse {
	return OfficeResponse{
		ID:           o.ID,
		Name:         o.Name,
		Code:         o.Code,
		Type:         o.Type,
		ContactEmail: o.ContactEmail,
		ContactPhone: o.ContactPhone,
		Address:      o.Address,
		CreatedAt:    o.CreatedAt,
	}
}
