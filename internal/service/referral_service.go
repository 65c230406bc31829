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

// ReferralService routes cases between offices.
type ReferralService struct {
	store  repository.Store
	clock  clock.Clock
	policy domain.ReferralPolicy
	events publisher
	logger *zap.Logger
}

// ReferralDependencies bundles referral service collaborators.
type ReferralDependencies struct {
	Store      repository.Store
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Policy defaults to domain.PermissiveReferralPolicy.
	Policy domain.ReferralPolicy
}

// ReferralInput describes a new referral.
type ReferralInput struct {
	CaseID       string
	FromOfficeID string
	ToOfficeID   string
	Reason       string
	Checklist    map[string]any
	SLADueAt     *time.Time
}

// NewReferralService constructs the service.
func NewReferralService(deps ReferralDependencies) *ReferralService {
	policy := deps.Policy
	if policy == nil {
		policy = domain.PermissiveReferralPolicy{}
	}
	logger := nopLogger(deps.Logger)
	return &ReferralService{
		store:  deps.Store,
		clock:  deps.Clock,
		policy: policy,
		events: publisher{dispatcher: deps.Dispatcher, clock: deps.Clock, logger: logger},
		logger: logger,
	}
}

// Create sends a case from one office to another. The originating and
// receiving office may be the same.
func (s *ReferralService) Create(ctx context.Context, actor Actor, input ReferralInput) (*domain.Referral, error) {
	if input.CaseID == "" || input.FromOfficeID == "" || input.ToOfficeID == "" {
		return nil, apperrors.NewValidationError("case_id, from_office_id and to_office_id are required", nil)
	}
	checklist := input.Checklist
	if checklist == nil {
		checklist = map[string]any{}
	}
	ref := &domain.Referral{
		ID:           newID(),
		CaseID:       input.CaseID,
		FromOfficeID: input.FromOfficeID,
		ToOfficeID:   input.ToOfficeID,
		Reason:       apperrors.CleanText(input.Reason),
		Checklist:    checklist,
		Status:       domain.ReferralStatusSent,
		SLADueAt:     input.SLADueAt,
		CreatedAt:    s.clock.Now(),
	}
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Cases.GetByID(ctx, ref.CaseID); err != nil {
			return translateStoreError(err, "case")
		}
		if _, err := r.Offices.GetByID(ctx, ref.FromOfficeID); err != nil {
			return apperrors.NewNotFound("office", map[string]any{"from_office_id": ref.FromOfficeID})
		}
		if _, err := r.Offices.GetByID(ctx, ref.ToOfficeID); err != nil {
			return apperrors.NewNotFound("office", map[string]any{"to_office_id": ref.ToOfficeID})
		}
		return translateStoreError(r.Referrals.Create(ctx, ref), "referral")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("referral created",
		zap.String("referral_id", ref.ID),
		zap.String("case_id", ref.CaseID),
		zap.String("from_office_id", ref.FromOfficeID),
		zap.String("to_office_id", ref.ToOfficeID))
	s.events.publish(ctx, events.Event{
		Type:      events.EventReferralCreated,
		SubjectID: ref.ID,
		Actor:     actor.event(),
		Payload: events.ReferralCreatedPayload{
			CaseID:       ref.CaseID,
			FromOfficeID: ref.FromOfficeID,
			ToOfficeID:   ref.ToOfficeID,
			SLADueAt:     ref.SLADueAt,
		},
	})
	return ref, nil
}

// MarkReceived acknowledges a SENT referral at the receiving office.
func (s *ReferralService) MarkReceived(ctx context.Context, actor Actor, id string) (*domain.Referral, error) {
	var updated *domain.Referral
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		ref, err := r.Referrals.GetForUpdate(ctx, id)
		if err != nil {
			return translateStoreError(err, "referral")
		}
		if ref.Status != domain.ReferralStatusSent {
			return apperrors.NewInvalidTransition("only SENT referrals can be received",
				map[string]any{"status": ref.Status})
		}
		now := s.clock.Now()
		ref.Status = domain.ReferralStatusReceived
		ref.ReceivedAt = &now
		if err := r.Referrals.Update(ctx, ref); err != nil {
			return translateStoreError(err, "referral")
		}
		updated = ref
		return recordTransition(ctx, r, actor, domain.TransitionEntityReferral, id, domain.FieldStatus,
			string(domain.ReferralStatusSent), string(domain.ReferralStatusReceived), now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("referral received", zap.String("referral_id", id))
	s.events.publish(ctx, events.Event{
		Type:      events.EventReferralReceived,
		SubjectID: id,
		Actor:     actor.event(),
		Payload:   events.ReferralReceivedPayload{ToOfficeID: updated.ToOfficeID, ReceivedAt: *updated.ReceivedAt},
	})
	return updated, nil
}

// Advance sets the status of a referral. Terminal statuses require
// completedAt; any other status rejects it and clears a stored completion.
func (s *ReferralService) Advance(ctx context.Context, actor Actor, id string, status domain.ReferralStatus, completedAt *time.Time) (*domain.Referral, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid referral status", map[string]any{"status": status})
	}
	if err := domain.ValidateCompletion(status, completedAt); err != nil {
		return nil, err
	}
	var (
		updated *domain.Referral
		old     domain.ReferralStatus
	)
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		ref, err := r.Referrals.GetForUpdate(ctx, id)
		if err != nil {
			return translateStoreError(err, "referral")
		}
		if err := s.policy.CheckReferral(ref.Status, status); err != nil {
			return err
		}
		old = ref.Status
		ref.Status = status
		ref.CompletedAt = completedAt
		if err := r.Referrals.Update(ctx, ref); err != nil {
			return translateStoreError(err, "referral")
		}
		updated = ref
		return recordTransition(ctx, r, actor, domain.TransitionEntityReferral, id, domain.FieldStatus,
			string(old), string(status), s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("referral status changed",
		zap.String("referral_id", id),
		zap.String("from", string(old)),
		zap.String("to", string(status)))
	s.events.publish(ctx, events.Event{
		Type:      events.EventReferralStatusChanged,
		SubjectID: id,
		Actor:     actor.event(),
		Payload: events.ReferralStatusChangedPayload{
			OldStatus:   old,
			NewStatus:   status,
			CompletedAt: completedAt,
		},
	})
	return updated, nil
}

// MarkSynced stamps the last time an external system mirrored the referral.
func (s *ReferralService) MarkSynced(ctx context.Context, id string) (*domain.Referral, error) {
	var updated *domain.Referral
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		ref, err := r.Referrals.GetForUpdate(ctx, id)
		if err != nil {
			return translateStoreError(err, "referral")
		}
		now := s.clock.Now()
		ref.LastSyncedAt = &now
		updated = ref
		return translateStoreError(r.Referrals.Update(ctx, ref), "referral")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get fetches one referral.
func (s *ReferralService) Get(ctx context.Context, id string) (*domain.Referral, error) {
	ref, err := s.store.Repositories().Referrals.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "referral")
	}
	return ref, nil
}

// List searches referrals. overdue keeps open referrals past their SLA.
func (s *ReferralService) List(ctx context.Context, filter repository.ReferralFilter, overdue bool) ([]domain.Referral, error) {
	if overdue {
		now := s.clock.Now()
		filter.OverdueAt = &now
	}
	return s.store.Repositories().Referrals.List(ctx, filter)
}

// History returns the status transitions of a referral, oldest first.
func (s *ReferralService) History(ctx context.Context, id string) ([]domain.TransitionLog, error) {
	repos := s.store.Repositories()
	if _, err := repos.Referrals.GetByID(ctx, id); err != nil {
		return nil, translateStoreError(err, "referral")
	}
	return repos.Transitions.ListByEntity(ctx, domain.TransitionEntityReferral, id)
}
