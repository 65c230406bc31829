package domain

import (
	"time"

	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// CaseStage is the processing stage of a case. Stages are ordered as declared.
type CaseStage string

const (
	CaseStageIntake     CaseStage = "INTAKE"
	CaseStageScreening  CaseStage = "SCREENING"
	CaseStageReferral   CaseStage = "REFERRAL"
	CaseStageProcessing CaseStage = "PROCESSING"
	CaseStageCompleted  CaseStage = "COMPLETED"
	CaseStageClosed     CaseStage = "CLOSED"
)

var stageOrder = map[CaseStage]int{
	CaseStageIntake:     0,
	CaseStageScreening:  1,
	CaseStageReferral:   2,
	CaseStageProcessing: 3,
	CaseStageCompleted:  4,
	CaseStageClosed:     5,
}

// Valid reports whether s is a known stage.
func (s CaseStage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Rank is the position of s in the stage progression, -1 when unknown.
func (s CaseStage) Rank() int {
	if r, ok := stageOrder[s]; ok {
		return r
	}
	return -1
}

// IsBackwardStage reports whether moving from -> to goes back in the progression.
func IsBackwardStage(from, to CaseStage) bool {
	return to.Rank() < from.Rank()
}

// CaseStatus is the overall status of a case.
type CaseStatus string

const (
	CaseStatusActive   CaseStatus = "ACTIVE"
	CaseStatusPaused   CaseStatus = "PAUSED"
	CaseStatusDone     CaseStatus = "DONE"
	CaseStatusRejected CaseStatus = "REJECTED"
)

// Valid reports whether s is a known overall status.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusActive, CaseStatusPaused, CaseStatusDone, CaseStatusRejected:
		return true
	}
	return false
}

// Case is the single tracked engagement record of a Diaspora.
type Case struct {
	ID            string
	DiasporaID    string
	CurrentStage  CaseStage
	OverallStatus CaseStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StagePolicy decides whether a stage change is allowed.
type StagePolicy interface {
	CheckStage(from, to CaseStage) error
}

// PermissiveStagePolicy allows any stage change.
type PermissiveStagePolicy struct{}

func (PermissiveStagePolicy) CheckStage(_, _ CaseStage) error { return nil }

// ForwardOnlyStagePolicy rejects moves back in the progression.
type ForwardOnlyStagePolicy struct{}

func (ForwardOnlyStagePolicy) CheckStage(from, to CaseStage) error {
	if IsBackwardStage(from, to) {
		return apperrors.NewInvalidTransition("case stage cannot move backwards",
			map[string]any{"from": from, "to": to})
	}
	return nil
}
