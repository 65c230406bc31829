package domain

import (
	"strings"
	"time"
)

// Account is the login identity a Diaspora record is attached to.
type Account struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the read-only projection of an Account shown alongside a Diaspora.
type Identity struct {
	AccountID string
	Username  string
	Email     string
	FirstName string
	LastName  string
	FullName  string
	JoinedAt  time.Time
}

// ProjectIdentity derives the display identity of an account. The full name
// falls back to the email, then the username, when no names are recorded.
func ProjectIdentity(a *Account) Identity {
	if a == nil {
		return Identity{}
	}
	full := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if full == "" {
		full = a.Email
	}
	if full == "" {
		full = a.Username
	}
	return Identity{
		AccountID: a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		FullName:  full,
		JoinedAt:  a.CreatedAt,
	}
}
