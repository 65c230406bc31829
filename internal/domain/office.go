package domain

import "time"

// OfficeType classifies administrative offices.
type OfficeType string

const (
	OfficeTypeDiaspora   OfficeType = "DIASPORA"
	OfficeTypeInvestment OfficeType = "INVESTMENT"
	OfficeTypeLand       OfficeType = "LAND"
	OfficeTypeNigid      OfficeType = "NIGID"
	OfficeTypeOther      OfficeType = "OTHER"
)

// Valid reports whether t is a known office type.
func (t OfficeType) Valid() bool {
	switch t {
	case OfficeTypeDiaspora, OfficeTypeInvestment, OfficeTypeLand, OfficeTypeNigid, OfficeTypeOther:
		return true
	}
	return false
}

// Office is an administrative unit that sends and receives referrals.
type Office struct {
	ID           string
	Name         string
	Code         string
	Type         OfficeType
	ContactEmail *string
	ContactPhone *string
	Address      string
	CreatedAt    time.Time
}
