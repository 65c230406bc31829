package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// OfficeService manages administrative offices.
type OfficeService struct {
	store  repository.Store
	clock  clock.Clock
	logger *zap.Logger
}

// OfficeDependencies bundles office service collaborators.
type OfficeDependencies struct {
	Store  repository.Store
	Clock  clock.Clock
	Logger *zap.Logger
}

// OfficeInput is the writable part of an office.
type OfficeInput struct {
	Name         string
	Code         string
	Type         domain.OfficeType
	ContactEmail *string
	ContactPhone *string
	Address      string
}

// NewOfficeService constructs the service.
func NewOfficeService(deps OfficeDependencies) *OfficeService {
	return &OfficeService{store: deps.Store, clock: deps.Clock, logger: nopLogger(deps.Logger)}
}

func (in OfficeInput) normalize() (OfficeInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Address = apperrors.CleanText(in.Address)
	in.ContactEmail = apperrors.TrimOptional(in.ContactEmail)
	in.ContactPhone = apperrors.TrimOptional(in.ContactPhone)
	if in.Type == "" {
		in.Type = domain.OfficeTypeDiaspora
	}
	if in.Name == "" || in.Code == "" {
		return in, apperrors.NewValidationError("name and code are required", nil)
	}
	if !in.Type.Valid() {
		return in, apperrors.NewValidationError("invalid office type", map[string]any{"type": in.Type})
	}
	return in, nil
}

// Create registers a new office.
func (s *OfficeService) Create(ctx context.Context, input OfficeInput) (*domain.Office, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}
	office := &domain.Office{
		ID:           newID(),
		Name:         in.Name,
		Code:         in.Code,
		Type:         in.Type,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Address:      in.Address,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.Repositories().Offices.Create(ctx, office); err != nil {
		return nil, translateStoreError(err, "office")
	}
	s.logger.Info("office created", zap.String("office_id", office.ID), zap.String("code", office.Code))
	return office, nil
}

// Update replaces the writable fields of an office.
func (s *OfficeService) Update(ctx context.Context, id string, input OfficeInput) (*domain.Office, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}
	offices := s.store.Repositories().Offices
	office, err := offices.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "office")
	}
	office.Name = in.Name
	office.Code = in.Code
	office.Type = in.Type
	office.ContactEmail = in.ContactEmail
	office.ContactPhone = in.ContactPhone
	office.Address = in.Address
	if err := offices.Update(ctx, office); err != nil {
		return nil, translateStoreError(err, "office")
	}
	return office, nil
}

// Delete removes an office. Offices still referenced by a referral are protected.
func (s *OfficeService) Delete(ctx context.Context, id string) error {
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		return r.Offices.Delete(ctx, id)
	})
	if err != nil {
		return translateStoreError(err, "office")
	}
	s.logger.Info("office deleted", zap.String("office_id", id))
	return nil
}

// Get fetches one office.
func (s *OfficeService) Get(ctx context.Context, id string) (*domain.Office, error) {
	office, err := s.store.Repositories().Offices.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "office")
	}
	return office, nil
}

// List searches offices.
func (s *OfficeService) List(ctx context.Context, filter repository.OfficeFilter) ([]domain.Office, error) {
	return s.store.Repositories().Offices.List(ctx, filter)
}
