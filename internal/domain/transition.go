package domain

import "time"

// TransitionEntity names the record a transition log entry belongs to.
type TransitionEntity string

const (
	TransitionEntityCase     TransitionEntity = "CASE"
	TransitionEntityReferral TransitionEntity = "REFERRAL"
)

// Transition field names.
const (
	FieldCurrentStage  = "current_stage"
	FieldOverallStatus = "overall_status"
	FieldStatus        = "status"
)

// TransitionLog is an append-only audit entry for a stage or status change.
type TransitionLog struct {
	ID        string
	Entity    TransitionEntity
	EntityID  string
	Field     string
	OldValue  string
	NewValue  string
	ActorID   *string
	CreatedAt time.Time
}
