package dto

import (
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// OpenCaseRequest payload. Diaspora is the record id, not the public HR-DIAS code.
type OpenCaseRequest struct {
	DiasporaID string `json:"diaspora"`
}

// StageRequest moves a case to a new stage.
type StageRequest struct {
	CurrentStage domain.CaseStage `json:"current_stage"`
}

// OverallStatusRequest changes a case's overall status.
type OverallStatusRequest struct {
	OverallStatus domain.CaseStatus `json:"overall_status"`
}

// CaseResponse represents a case.
type CaseResponse struct {
	ID            string            `json:"id"`
	DiasporaID    string            `json:"diaspora"`
	CurrentStage  domain.CaseStage  `json:"current_stage"`
	OverallStatus domain.CaseStatus `json:"overall_status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// StageChangeResponse reports whether the move went backwards.
type StageChangeResponse struct {
	Case     CaseResponse `json:"case"`
	Backward bool         `json:"backward"`
}

// TransitionResponse is one audit entry.
type TransitionResponse struct {
	ID        string                  `json:"id"`
	Entity    domain.TransitionEntity `json:"entity"`
	EntityID  string                  `json:"entity_id"`
	Field     string                  `json:"field"`
	OldValue  string                  `json:"old_value"`
	NewValue  string                  `json:"new_value"`
	ActorID   *string                 `json:"actor_id"`
	CreatedAt time.Time               `json:"created_at"`
}

func NewCaseResponse(c *domain.Case) CaseResponse {
	return CaseResponse{
		ID:            c.ID,
		DiasporaID:    c.DiasporaID,
		CurrentStage:  c.CurrentStage,
		OverallStatus: c.OverallStatus,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func NewTransitionResponses(entries []domain.TransitionLog) []TransitionResponse {
	resp := make([]TransitionResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, TransitionResponse{
			ID:        entry.ID,
			Entity:    entry.Entity,
			EntityID:  entry.EntityID,
			Field:     entry.Field,
			OldValue:  entry.OldValue,
			NewValue:  entry.NewValue,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return resp
}
