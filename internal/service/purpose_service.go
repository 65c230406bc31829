package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// PurposeService manages the purposes a diaspora declares.
type PurposeService struct {
	store  repository.Store
	clock  clock.Clock
	strict bool
	logger *zap.Logger
}

// PurposeDependencies bundles purpose service collaborators.
type PurposeDependencies struct {
	Store  repository.Store
	Clock  clock.Clock
	Logger *zap.Logger
	// StrictFields rejects investment fields on non-investment purposes.
	StrictFields bool
}

// PurposeInput is the writable part of a purpose.
type PurposeInput struct {
	DiasporaID            string
	Type                  domain.PurposeType
	Description           string
	Sector                *string
	SubSector             *string
	InvestmentType        *string
	EstimatedCapital      *float64
	Currency              *string
	JobsExpected          *int
	LandRequirement       bool
	LandSize              *float64
	PreferredLocationNote *string
	Status                domain.PurposeStatus
}

// NewPurposeService constructs the service.
func NewPurposeService(deps PurposeDependencies) *PurposeService {
	return &PurposeService{
		store:  deps.Store,
		clock:  deps.Clock,
		strict: deps.StrictFields,
		logger: nopLogger(deps.Logger),
	}
}

func (in PurposeInput) apply(p *domain.Purpose) {
	p.Type = in.Type
	p.Description = apperrors.CleanText(in.Description)
	p.Sector = apperrors.TrimOptional(in.Sector)
	p.SubSector = apperrors.TrimOptional(in.SubSector)
	p.InvestmentType = apperrors.TrimOptional(in.InvestmentType)
	p.EstimatedCapital = in.EstimatedCapital
	p.Currency = apperrors.TrimOptional(in.Currency)
	p.JobsExpected = in.JobsExpected
	p.LandRequirement = in.LandRequirement
	p.LandSize = in.LandSize
	p.PreferredLocationNote = apperrors.CleanOptional(in.PreferredLocationNote)
	p.Status = in.Status
	if p.Status == "" {
		p.Status = domain.PurposeStatusDraft
	}
}

// Create records a purpose for a diaspora.
func (s *PurposeService) Create(ctx context.Context, actor Actor, input PurposeInput) (*domain.Purpose, error) {
	p := &domain.Purpose{ID: newID(), DiasporaID: input.DiasporaID, CreatedAt: s.clock.Now()}
	input.apply(p)
	if err := domain.ValidatePurpose(p, s.strict); err != nil {
		return nil, err
	}
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		d, err := r.Diasporas.GetByID(ctx, p.DiasporaID)
		if err != nil {
			return translateStoreError(err, "diaspora")
		}
		if err := authorizeOwner(actor, d); err != nil {
			return err
		}
		return translateStoreError(r.Purposes.Create(ctx, p), "purpose")
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purpose created",
		zap.String("purpose_id", p.ID),
		zap.String("diaspora_id", p.DiasporaID),
		zap.String("type", string(p.Type)))
	return p, nil
}

// Update replaces the writable fields of a purpose. The owning diaspora
// cannot change.
func (s *PurposeService) Update(ctx context.Context, actor Actor, id string, input PurposeInput) (*domain.Purpose, error) {
	var updated *domain.Purpose
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		p, err := s.owned(ctx, r, actor, id)
		if err != nil {
			return err
		}
		input.apply(p)
		if err := domain.ValidatePurpose(p, s.strict); err != nil {
			return err
		}
		if err := r.Purposes.Update(ctx, p); err != nil {
			return translateStoreError(err, "purpose")
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a purpose.
func (s *PurposeService) Delete(ctx context.Context, actor Actor, id string) error {
	return s.store.WithinTx(ctx, func(r repository.Repositories) error {
		if _, err := s.owned(ctx, r, actor, id); err != nil {
			return err
		}
		return translateStoreError(r.Purposes.Delete(ctx, id), "purpose")
	})
}

// Get fetches one purpose.
func (s *PurposeService) Get(ctx context.Context, actor Actor, id string) (*domain.Purpose, error) {
	return s.owned(ctx, s.store.Repositories(), actor, id)
}

// List searches purposes. Diaspora accounts are limited to their own.
func (s *PurposeService) List(ctx context.Context, actor Actor, filter repository.PurposeFilter) ([]domain.Purpose, error) {
	repos := s.store.Repositories()
	if actor.Role == domain.RoleDiaspora {
		if actor.AccountID == nil {
			return nil, apperrors.NewUnauthorized("authentication required")
		}
		d, err := repos.Diasporas.GetByAccountID(ctx, *actor.AccountID)
		if err != nil {
			return nil, translateStoreError(err, "diaspora")
		}
		filter.DiasporaID = &d.ID
	}
	return repos.Purposes.List(ctx, filter)
}

func (s *PurposeService) owned(ctx context.Context, r repository.Repositories, actor Actor, id string) (*domain.Purpose, error) {
	p, err := r.Purposes.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "purpose")
	}
	if actor.Role == domain.RoleDiaspora {
		d, err := r.Diasporas.GetByID(ctx, p.DiasporaID)
		if err != nil {
			return nil, translateStoreError(err, "diaspora")
		}
		if err := authorizeOwner(actor, d); err != nil {
			return nil, err
		}
	}
	return p, nil
}
