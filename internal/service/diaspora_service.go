package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/auth"
	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/events"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// MaxCodeAttempts bounds diaspora id generation retries.
const MaxCodeAttempts = 5

// CollisionRecorder counts generated ids rejected by the store.
type CollisionRecorder interface {
	IncrementIDCollision()
}

// DiasporaService registers and maintains diaspora records.
type DiasporaService struct {
	store      repository.Store
	clock      clock.Clock
	codes      domain.CodeGenerator
	bcryptCost int
	collisions CollisionRecorder
	events     publisher
	logger     *zap.Logger
}

// DiasporaDependencies bundles diaspora service collaborators.
type DiasporaDependencies struct {
	Store      repository.Store
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Codes defaults to domain.RandomDiasporaCode.
	Codes      domain.CodeGenerator
	BcryptCost int
	Collisions CollisionRecorder
}

// DiasporaInput is the writable profile of a diaspora.
type DiasporaInput struct {
	Gender                *domain.Gender
	DOB                   *time.Time
	PrimaryPhone          string
	Whatsapp              *string
	CountryOfResidence    string
	CityOfResidence       *string
	ArrivalDate           *time.Time
	ExpectedStayDuration  *string
	IsReturnee            bool
	PreferredLanguage     string
	CommunicationOptIn    *bool
	AddressLocal          *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	PassportNo            *string
	IDNumber              *string
	OwnerOfficeID         *string
}

// RegistrationInput creates a diaspora together with its account. When
// AccountID is set (staff only) the existing account is attached instead.
type RegistrationInput struct {
	AccountID *string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Profile   DiasporaInput
}

// NewDiasporaService constructs the service.
func NewDiasporaService(deps DiasporaDependencies) *DiasporaService {
	codes := deps.Codes
	if codes == nil {
		codes = domain.RandomDiasporaCode
	}
	logger := nopLogger(deps.Logger)
	return &DiasporaService{
		store:      deps.Store,
		clock:      deps.Clock,
		codes:      codes,
		bcryptCost: deps.BcryptCost,
		collisions: deps.Collisions,
		events:     publisher{dispatcher: deps.Dispatcher, clock: deps.Clock, logger: logger},
		logger:     logger,
	}
}

func (in DiasporaInput) normalize() (DiasporaInput, error) {
	in.PrimaryPhone = strings.TrimSpace(in.PrimaryPhone)
	in.CountryOfResidence = strings.TrimSpace(in.CountryOfResidence)
	in.PreferredLanguage = strings.TrimSpace(in.PreferredLanguage)
	in.Whatsapp = apperrors.TrimOptional(in.Whatsapp)
	in.CityOfResidence = apperrors.TrimOptional(in.CityOfResidence)
	in.ExpectedStayDuration = apperrors.TrimOptional(in.ExpectedStayDuration)
	in.AddressLocal = apperrors.CleanOptional(in.AddressLocal)
	in.EmergencyContactName = apperrors.TrimOptional(in.EmergencyContactName)
	in.EmergencyContactPhone = apperrors.TrimOptional(in.EmergencyContactPhone)
	in.PassportNo = apperrors.TrimOptional(in.PassportNo)
	in.IDNumber = apperrors.TrimOptional(in.IDNumber)
	in.OwnerOfficeID = apperrors.TrimOptional(in.OwnerOfficeID)
	if in.PreferredLanguage == "" {
		in.PreferredLanguage = domain.DefaultPreferredLanguage
	}
	if in.PrimaryPhone == "" || in.CountryOfResidence == "" {
		return in, apperrors.NewValidationError("primary_phone and country_of_residence are required", nil)
	}
	if in.Gender != nil && !in.Gender.Valid() {
		return in, apperrors.NewValidationError("invalid gender", map[string]any{"gender": *in.Gender})
	}
	return in, nil
}

func (in DiasporaInput) apply(d *domain.Diaspora) {
	d.Gender = in.Gender
	d.DOB = in.DOB
	d.PrimaryPhone = in.PrimaryPhone
	d.Whatsapp = in.Whatsapp
	d.CountryOfResidence = in.CountryOfResidence
	d.CityOfResidence = in.CityOfResidence
	d.ArrivalDate = in.ArrivalDate
	d.ExpectedStayDuration = in.ExpectedStayDuration
	d.IsReturnee = in.IsReturnee
	d.PreferredLanguage = in.PreferredLanguage
	if in.CommunicationOptIn != nil {
		d.CommunicationOptIn = *in.CommunicationOptIn
	}
	d.AddressLocal = in.AddressLocal
	d.EmergencyContactName = in.EmergencyContactName
	d.EmergencyContactPhone = in.EmergencyContactPhone
	d.PassportNo = in.PassportNo
	d.IDNumber = in.IDNumber
	d.OwnerOfficeID = in.OwnerOfficeID
}

// Register creates a diaspora record, generating its human-readable id. A
// generated id that collides is retried with a fresh transaction.
func (s *DiasporaService) Register(ctx context.Context, actor Actor, input RegistrationInput) (*domain.DiasporaProfile, error) {
	profile, err := input.Profile.normalize()
	if err != nil {
		return nil, err
	}
	if input.AccountID != nil && !actor.Role.Staff() {
		return nil, apperrors.NewForbidden("only staff may attach an existing account")
	}

	var newAccount *domain.Account
	if input.AccountID == nil {
		newAccount, err = s.prepareAccount(input)
		if err != nil {
			return nil, err
		}
	}

	var created *domain.Diaspora
	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		now := s.clock.Now()
		d := &domain.Diaspora{
			ID:                 newID(),
			DiasporaCode:       s.codes(now),
			CommunicationOptIn: true,
			CreatedByID:        actor.AccountID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		profile.apply(d)

		err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
			return s.insert(ctx, r, d, input.AccountID, newAccount, now)
		})
		if err == nil {
			created = d
			break
		}
		if !repository.IsConstraint(err, repository.ConstraintDiasporaCode) {
			return nil, s.registrationError(err)
		}
		if s.collisions != nil {
			s.collisions.IncrementIDCollision()
		}
		s.logger.Warn("diaspora id collision", zap.String("code", d.DiasporaCode), zap.Int("attempt", attempt))
	}
	if created == nil {
		return nil, apperrors.NewAlreadyExists("could not allocate a unique diaspora id",
			map[string]any{"attempts": MaxCodeAttempts})
	}

	s.logger.Info("diaspora registered", zap.String("diaspora_id", created.ID), zap.String("code", created.DiasporaCode))
	s.events.publish(ctx, events.Event{
		Type:      events.EventDiasporaRegistered,
		SubjectID: created.ID,
		Actor:     actor.event(),
		Payload: events.DiasporaRegisteredPayload{
			DiasporaCode:       created.DiasporaCode,
			AccountID:          created.AccountID,
			CountryOfResidence: created.CountryOfResidence,
			OwnerOfficeID:      created.OwnerOfficeID,
		},
	})
	return s.store.Repositories().Diasporas.GetProfile(ctx, created.ID)
}

func (s *DiasporaService) prepareAccount(input RegistrationInput) (*domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email is required", nil)
	}
	if len(input.Password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError("password is too short",
			map[string]any{"min_length": auth.MinPasswordLength})
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = email
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		Role:         domain.RoleDiaspora,
	}, nil
}

func (s *DiasporaService) insert(ctx context.Context, r repository.Repositories, d *domain.Diaspora, accountID *string, newAccount *domain.Account, now time.Time) error {
	if d.OwnerOfficeID != nil {
		if _, err := r.Offices.GetByID(ctx, *d.OwnerOfficeID); err != nil {
			return translateStoreError(err, "office")
		}
	}
	if accountID != nil {
		if _, err := r.Accounts.GetByID(ctx, *accountID); err != nil {
			return translateStoreError(err, "account")
		}
		d.AccountID = *accountID
	} else {
		account := *newAccount
		account.ID = newID()
		account.CreatedAt = now
		if err := r.Accounts.Create(ctx, &account); err != nil {
			return err
		}
		d.AccountID = account.ID
	}
	return r.Diasporas.Create(ctx, d)
}

func (s *DiasporaService) registrationError(err error) error {
	switch {
	case repository.IsConstraint(err, repository.ConstraintAccountEmail),
		repository.IsConstraint(err, repository.ConstraintAccountUsername):
		return apperrors.NewAlreadyExists("an account with this email or username already exists", nil)
	case repository.IsConstraint(err, repository.ConstraintDiasporaAccount):
		return apperrors.NewAlreadyExists("account already has a diaspora profile", nil)
	}
	return translateStoreError(err, "diaspora")
}

// Update replaces the profile fields of a diaspora.
func (s *DiasporaService) Update(ctx context.Context, actor Actor, id string, input DiasporaInput) (*domain.DiasporaProfile, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		d, err := r.Diasporas.GetByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "diaspora")
		}
		if err := authorizeOwner(actor, d); err != nil {
			return err
		}
		if in.OwnerOfficeID != nil {
			if _, err := r.Offices.GetByID(ctx, *in.OwnerOfficeID); err != nil {
				return translateStoreError(err, "office")
			}
		}
		optIn := d.CommunicationOptIn
		if in.CommunicationOptIn != nil {
			optIn = *in.CommunicationOptIn
		}
		in.CommunicationOptIn = &optIn
		in.apply(d)
		d.UpdatedAt = s.clock.Now()
		return translateStoreError(r.Diasporas.Update(ctx, d), "diaspora")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Get returns the diaspora profile. Diaspora accounts only see their own.
func (s *DiasporaService) Get(ctx context.Context, actor Actor, id string) (*domain.DiasporaProfile, error) {
	profile, err := s.store.Repositories().Diasporas.GetProfile(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "diaspora")
	}
	if err := authorizeOwner(actor, &profile.Diaspora); err != nil {
		return nil, err
	}
	return profile, nil
}

// Mine returns the diaspora profile attached to the caller's account.
func (s *DiasporaService) Mine(ctx context.Context, actor Actor) (*domain.DiasporaProfile, error) {
	if actor.AccountID == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	d, err := s.store.Repositories().Diasporas.GetByAccountID(ctx, *actor.AccountID)
	if err != nil {
		return nil, translateStoreError(err, "diaspora")
	}
	return s.Get(ctx, actor, d.ID)
}

// List searches diaspora profiles.
func (s *DiasporaService) List(ctx context.Context, filter repository.DiasporaFilter) ([]domain.DiasporaProfile, error) {
	return s.store.Repositories().Diasporas.List(ctx, filter)
}

// Delete removes a diaspora together with its purposes, case and referrals.
func (s *DiasporaService) Delete(ctx context.Context, id string) error {
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		return r.Diasporas.Delete(ctx, id)
	})
	if err != nil {
		return translateStoreError(err, "diaspora")
	}
	s.logger.Info("diaspora deleted", zap.String("diaspora_id", id))
	return nil
}

// authorizeOwner restricts diaspora accounts to their own record.
func authorizeOwner(actor Actor, d *domain.Diaspora) error {
	if actor.Role != domain.RoleDiaspora {
		return nil
	}
	if actor.AccountID == nil || *actor.AccountID != d.AccountID {
		return apperrors.NewForbidden("not your diaspora record")
	}
	return nil
}
