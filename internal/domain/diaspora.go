package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender of a registered individual.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Valid reports whether g is a known gender value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// DefaultPreferredLanguage is used when registration leaves it blank.
const DefaultPreferredLanguage = "English"

// Diaspora is a registered individual, one-to-one with an Account.
type Diaspora struct {
	ID                    string
	DiasporaCode          string
	AccountID             string
	Gender                *Gender
	DOB                   *time.Time
	PrimaryPhone          string
	Whatsapp              *string
	CountryOfResidence    string
	CityOfResidence       *string
	ArrivalDate           *time.Time
	ExpectedStayDuration  *string
	IsReturnee            bool
	PreferredLanguage     string
	CommunicationOptIn    bool
	AddressLocal          *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	PassportNo            *string
	IDNumber              *string
	OwnerOfficeID         *string
	CreatedByID           *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// DiasporaProfile pairs a Diaspora with the identity projected from its account.
type DiasporaProfile struct {
	Diaspora
	Identity Identity
}

// NewDiasporaProfile builds the read view for d.
func NewDiasporaProfile(d *Diaspora, account *Account) DiasporaProfile {
	return DiasporaProfile{Diaspora: *d, Identity: ProjectIdentity(account)}
}

// CodeGenerator produces candidate human-readable diaspora ids.
type CodeGenerator func(now time.Time) string

var diasporaCodePattern = regexp.MustCompile(`^HR-DIAS-\d{4}-[0-9A-F]{4}$`)

// RandomDiasporaCode returns HR-DIAS-<year>-<4 hex>. Collisions are possible;
// the store's unique constraint is the arbiter.
func RandomDiasporaCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return FormatDiasporaCode(now.Year(), suffix)
}

// FormatDiasporaCode renders the human-readable id for year and suffix.
func FormatDiasporaCode(year int, suffix string) string {
	return fmt.Sprintf("HR-DIAS-%d-%s", year, strings.ToUpper(suffix))
}

// ValidDiasporaCode reports whether code has the generated shape.
func ValidDiasporaCode(code string) bool {
	return diasporaCodePattern.MatchString(code)
}
