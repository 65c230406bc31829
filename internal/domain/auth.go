package domain

import "time"

// Role is the access level carried by an account and its tokens.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOfficer  Role = "OFFICER"
	RoleDiaspora Role = "DIASPORA"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOfficer, RoleDiaspora:
		return true
	}
	return false
}

// Staff reports whether r may operate on cases and referrals.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleOfficer
}

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	AccountID string
	Role      Role
	ExpiresAt time.Time
}
