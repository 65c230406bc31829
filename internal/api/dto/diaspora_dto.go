package dto

import (
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// DiasporaProfileRequest carries the editable profile. Dates are ISO
// calendar dates.
type DiasporaProfileRequest struct {
	Gender                *domain.Gender `json:"gender"`
	DOB                   *string        `json:"dob"`
	PrimaryPhone          string         `json:"primary_phone"`
	Whatsapp              *string        `json:"whatsapp"`
	CountryOfResidence    string         `json:"country_of_residence"`
	CityOfResidence       *string        `json:"city_of_residence"`
	ArrivalDate           *string        `json:"arrival_date"`
	ExpectedStayDuration  *string        `json:"expected_stay_duration"`
	IsReturnee            bool           `json:"is_returnee"`
	PreferredLanguage     string         `json:"preferred_language"`
	CommunicationOptIn    *bool          `json:"communication_opt_in"`
	AddressLocal          *string        `json:"address_local"`
	EmergencyContactName  *string        `json:"emergency_contact_name"`
	EmergencyContactPhone *string        `json:"emergency_contact_phone"`
	PassportNo            *string        `json:"passport_no"`
	IDNumber              *string        `json:"id_number"`
	OwnerOfficeID         *string        `json:"owner_office_id"`
}

// RegisterDiasporaRequest creates the account and the diaspora profile.
// Staff may pass AccountID to attach an existing account instead.
type RegisterDiasporaRequest struct {
	DiasporaProfileRequest
	AccountID *string `json:"account_id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Password  string  `json:"password"`
}

// DiasporaResponse is a diaspora with its account identity.
type DiasporaResponse struct {
	ID                    string         `json:"id"`
	DiasporaID            string         `json:"diaspora_id"`
	AccountID             string         `json:"account_id"`
	Username              string         `json:"username"`
	Email                 string         `json:"email"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	FullName              string         `json:"full_name"`
	Gender                *domain.Gender `json:"gender"`
	DOB                   *string        `json:"dob"`
	PrimaryPhone          string         `json:"primary_phone"`
	Whatsapp              *string        `json:"whatsapp"`
	CountryOfResidence    string         `json:"country_of_residence"`
	CityOfResidence       *string        `json:"city_of_residence"`
	ArrivalDate           *string        `json:"arrival_date"`
	ExpectedStayDuration  *string        `json:"expected_stay_duration"`
	IsReturnee            bool           `json:"is_returnee"`
	PreferredLanguage     string         `json:"preferred_language"`
	CommunicationOptIn    bool           `json:"communication_opt_in"`
	AddressLocal          *string        `json:"address_local"`
	EmergencyContactName  *string        `json:"emergency_contact_name"`
	EmergencyContactPhone *string        `json:"emergency_contact_phone"`
	PassportNo            *string        `json:"passport_no"`
	IDNumber              *string        `json:"id_number"`
	OwnerOfficeID         *string        `json:"owner_office_id"`
	CreatedByID           *string        `json:"created_by_id"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

func NewDiasporaResponse(p *domain.DiasporaProfile) DiasporaResponse {
	return DiasporaResponse{
		ID:                    p.ID,
		DiasporaID:            p.DiasporaCode,
		AccountID:             p.AccountID,
		Username:              p.Identity.Username,
		Email:                 p.Identity.Email,
		FirstName:             p.Identity.FirstName,
		LastName:              p.Identity.LastName,
		FullName:              p.Identity.FullName,
		Gender:                p.Gender,
		DOB:                   formatDate(p.DOB),
		PrimaryPhone:          p.PrimaryPhone,
		Whatsapp:              p.Whatsapp,
		CountryOfResidence:    p.CountryOfResidence,
		CityOfResidence:       p.CityOfResidence,
		ArrivalDate:           formatDate(p.ArrivalDate),
		ExpectedStayDuration:  p.ExpectedStayDuration,
		IsReturnee:            p.IsReturnee,
		PreferredLanguage:     p.PreferredLanguage,
		CommunicationOptIn:    p.CommunicationOptIn,
		AddressLocal:          p.AddressLocal,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		PassportNo:            p.PassportNo,
		IDNumber:              p.IDNumber,
		OwnerOfficeID:         p.OwnerOfficeID,
		CreatedByID:           p.CreatedByID,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
