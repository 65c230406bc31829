package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// CaseService owns case creation and stage/status transitions.
type CaseService struct {
	store  repository.Store
	clock  clock.Clock
	stages domain.StagePolicy
	events publisher
	logger *zap.Logger
}

// CaseDependencies bundles case service collaborators.
type CaseDependencies struct {
	Store      repository.Store
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// StagePolicy defaults to domain.PermissiveStagePolicy.
	StagePolicy domain.StagePolicy
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	policy := deps.StagePolicy
	if policy == nil {
		policy = domain.PermissiveStagePolicy{}
	}
	logger := nopLogger(deps.Logger)
	return &CaseService{
		store:  deps.Store,
		clock:  deps.Clock,
		stages: policy,
		events: publisher{dispatcher: deps.Dispatcher, clock: deps.Clock, logger: logger},
		logger: logger,
	}
}

// OpenCase creates the single case of a diaspora in INTAKE/ACTIVE.
func (s *CaseService) OpenCase(ctx context.Context, actor Actor, diasporaID string) (*domain.Case, error) {
	now := s.clock.Now()
	c := &domain.Case{
		ID:            newID(),
		DiasporaID:    diasporaID,
		CurrentStage:  domain.CaseStageIntake,
		OverallStatus: domain.CaseStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Diasporas.GetByID(ctx, diasporaID); err != nil {
			return translateStoreError(err, "diaspora")
		}
		return r.Cases.Create(ctx, c)
	})
	if repository.IsConstraint(err, repository.ConstraintCaseDiaspora) {
		return nil, apperrors.NewAlreadyExists("diaspora already has a case",
			map[string]any{"diaspora_id": diasporaID})
	}
	if err != nil {
		return nil, translateStoreError(err, "case")
	}

	s.logger.Info("case opened", zap.String("case_id", c.ID), zap.String("diaspora_id", diasporaID))
	s.events.publish(ctx, events.Event{
		Type:      events.EventCaseOpened,
		SubjectID: c.ID,
		Actor:     actor.event(),
		Payload:   events.CaseOpenedPayload{DiasporaID: diasporaID, Stage: c.CurrentStage},
	})
	return c, nil
}

// AdvanceStage moves a case to stage. backward reports a move to an earlier
// stage; it is allowed unless the stage policy rejects it.
func (s *CaseService) AdvanceStage(ctx context.Context, actor Actor, id string, stage domain.CaseStage) (updated *domain.Case, backward bool, err error) {
	if !stage.Valid() {
		return nil, false, apperrors.NewValidationError("invalid case stage", map[string]any{"current_stage": stage})
	}
	var old domain.CaseStage
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		c, err := r.Cases.GetForUpdate(ctx, id)
		if err != nil {
			return translateStoreError(err, "case")
		}
		if err := s.stages.CheckStage(c.CurrentStage, stage); err != nil {
			return err
		}
		old = c.CurrentStage
		backward = domain.IsBackwardStage(old, stage)
		c.CurrentStage = stage
		c.UpdatedAt = s.clock.Now()
		if err := r.Cases.Update(ctx, c); err != nil {
			return translateStoreError(err, "case")
		}
		updated = c
		return s.logTransition(ctx, r, actor, id, domain.FieldCurrentStage, string(old), string(stage), c.UpdatedAt)
	})
	if err != nil {
		return nil, false, err
	}

	fields := []zap.Field{
		zap.String("case_id", id),
		zap.String("from", string(old)),
		zap.String("to", string(stage)),
	}
	if backward {
		s.logger.Warn("case stage moved backwards", fields...)
	} else {
		s.logger.Info("case stage changed", fields...)
	}
	s.events.publish(ctx, events.Event{
		Type:      events.EventCaseStageChanged,
		SubjectID: id,
		Actor:     actor.event(),
		Payload:   events.CaseStageChangedPayload{OldStage: old, NewStage: stage, Backward: backward},
	})
	return updated, backward, nil
}

// SetOverallStatus changes the overall status of a case. Open referrals are
// left untouched.
func (s *CaseService) SetOverallStatus(ctx context.Context, actor Actor, id string, status domain.CaseStatus) (*domain.Case, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid case status", map[string]any{"overall_status": status})
	}
	var (
		updated *domain.Case
		old     domain.CaseStatus
	)
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		c, err := r.Cases.GetForUpdate(ctx, id)
		if err != nil {
			return translateStoreError(err, "case")
		}
		old = c.OverallStatus
		c.OverallStatus = status
		c.UpdatedAt = s.clock.Now()
		if err := r.Cases.Update(ctx, c); err != nil {
			return translateStoreError(err, "case")
		}
		updated = c
		return s.logTransition(ctx, r, actor, id, domain.FieldOverallStatus, string(old), string(status), c.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("case status changed",
		zap.String("case_id", id),
		zap.String("from", string(old)),
		zap.String("to", string(status)))
	s.events.publish(ctx, events.Event{
		Type:      events.EventCaseStatusChanged,
		SubjectID: id,
		Actor:     actor.event(),
		Payload:   events.CaseStatusChangedPayload{OldStatus: old, NewStatus: status},
	})
	return updated, nil
}

func (s *CaseService) logTransition(ctx context.Context, r repository.Repositories, actor Actor, id, field, from, to string, at time.Time) error {
	return recordTransition(ctx, r, actor, domain.TransitionEntityCase, id, field, from, to, at)
}

// Get fetches one case.
func (s *CaseService) Get(ctx context.Context, id string) (*domain.Case, error) {
	c, err := s.store.Repositories().Cases.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "case")
	}
	return c, nil
}

// GetByDiaspora fetches the case of a diaspora.
func (s *CaseService) GetByDiaspora(ctx context.Context, diasporaID string) (*domain.Case, error) {
	c, err := s.store.Repositories().Cases.GetByDiasporaID(ctx, diasporaID)
	if err != nil {
		return nil, translateStoreError(err, "case")
	}
	return c, nil
}

// List searches cases.
func (s *CaseService) List(ctx context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	return s.store.Repositories().Cases.List(ctx, filter)
}

// History returns the stage and status transitions of a case, oldest first.
func (s *CaseService) History(ctx context.Context, id string) ([]domain.TransitionLog, error) {
	repos := s.store.Repositories()
	if _, err := repos.Cases.GetByID(ctx, id); err != nil {
		return nil, translateStoreError(err, "case")
	}
	return repos.Transitions.ListByEntity(ctx, domain.TransitionEntityCase, id)
}
