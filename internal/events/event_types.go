package events

import (
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDiasporaRegistered    EventType = "diaspora_registered"
	EventCaseOpened            EventType = "case_opened"
	EventCaseStageChanged      EventType = "case_stage_changed"
	EventCaseStatusChanged     EventType = "case_status_changed"
	EventReferralCreated       EventType = "referral_created"
	EventReferralReceived      EventType = "referral_received"
	EventReferralStatusChanged EventType = "referral_status_changed"
)

// AllEventTypes lists every event a subscriber may want to mirror.
var AllEventTypes = []EventType{
	EventDiasporaRegistered,
	EventCaseOpened,
	EventCaseStageChanged,
	EventCaseStatusChanged,
	EventReferralCreated,
	EventReferralReceived,
	EventReferralStatusChanged,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID *string     `json:"account_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type DiasporaRegisteredPayload struct {
	DiasporaCode       string  `json:"diaspora_id"`
	AccountID          string  `json:"account_id"`
	CountryOfResidence string  `json:"country_of_residence"`
	OwnerOfficeID      *string `json:"owner_office_id,omitempty"`
}

type CaseOpenedPayload struct {
	DiasporaID string           `json:"diaspora"`
	Stage      domain.CaseStage `json:"current_stage"`
}

// CaseStageChangedPayload flags moves back in the stage progression.
type CaseStageChangedPayload struct {
	OldStage domain.CaseStage `json:"old_stage"`
	NewStage domain.CaseStage `json:"new_stage"`
	Backward bool             `json:"backward"`
}

type CaseStatusChangedPayload struct {
	OldStatus domain.CaseStatus `json:"old_status"`
	NewStatus domain.CaseStatus `json:"new_status"`
}

type ReferralCreatedPayload struct {
	CaseID       string     `json:"case_id"`
	FromOfficeID string     `json:"from_office_id"`
	ToOfficeID   string     `json:"to_office_id"`
	SLADueAt     *time.Time `json:"sla_due_at,omitempty"`
}

type ReferralReceivedPayload struct {
	ToOfficeID string    `json:"to_office_id"`
	ReceivedAt time.Time `json:"received_at"`
}

type ReferralStatusChangedPayload struct {
	OldStatus   domain.ReferralStatus `json:"old_status"`
	NewStatus   domain.ReferralStatus `json:"new_status"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}
