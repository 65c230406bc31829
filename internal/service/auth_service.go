package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/auth"
	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// AuthService coordinates login and account administration.
type AuthService struct {
	store      repository.Store
	clock      clock.Clock
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Store      repository.Store
	Clock      clock.Clock
	Tokens     *auth.TokenManager
	BcryptCost int
	Logger     *zap.Logger
}

// AccountInput creates a login account.
type AccountInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      domain.Role
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		store:      deps.Store,
		clock:      deps.Clock,
		tokenMgr:   deps.Tokens,
		bcryptCost: deps.BcryptCost,
		logger:     nopLogger(deps.Logger),
	}
}

var errInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")

// Login authenticates by username or email and issues a role-bearing token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.Account, domain.Token, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.Token{}, apperrors.NewValidationError("username and password are required", nil)
	}
	account, err := s.lookup(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Token{}, errInvalidCredentials
	}
	if err != nil {
		return nil, domain.Token{}, err
	}
	ok, err := auth.PasswordMatches(account.PasswordHash, password)
	if err != nil {
		return nil, domain.Token{}, err
	}
	if !ok {
		s.logger.Info("login rejected", zap.String("account_id", account.ID))
		return nil, domain.Token{}, errInvalidCredentials
	}
	token, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, domain.Token{}, err
	}
	return account, token, nil
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.Account, error) {
	accounts := s.store.Repositories().Accounts
	if strings.Contains(identifier, "@") {
		account, err := accounts.GetByEmail(ctx, identifier)
		if !errors.Is(err, repository.ErrNotFound) {
			return account, err
		}
	}
	return accounts.GetByUsername(ctx, identifier)
}

// Me returns the identity projection of an account.
func (s *AuthService) Me(ctx context.Context, accountID string) (*domain.Account, domain.Identity, error) {
	account, err := s.store.Repositories().Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, domain.Identity{}, translateStoreError(err, "account")
	}
	return account, domain.ProjectIdentity(account), nil
}

// CreateAccount adds a login account, typically a staff member.
func (s *AuthService) CreateAccount(ctx context.Context, input AccountInput) (*domain.Account, error) {
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
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
	account := &domain.Account{
		ID:           newID(),
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.Repositories().Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewAlreadyExists("an account with this email or username already exists", nil)
		}
		return nil, err
	}
	s.logger.Info("account created", zap.String("account_id", account.ID), zap.String("role", string(account.Role)))
	return account, nil
}

// EnsureAccount returns the account with input's username, creating it when absent.
func (s *AuthService) EnsureAccount(ctx context.Context, input AccountInput) (*domain.Account, error) {
	existing, err := s.store.Repositories().Accounts.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.CreateAccount(ctx, input)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password is too short",
			map[string]any{"min_length": auth.MinPasswordLength})
	}
	accounts := s.store.Repositories().Accounts
	account, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		return translateStoreError(err, "account")
	}
	ok, err := auth.PasswordMatches(account.PasswordHash, currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	return translateStoreError(accounts.Update(ctx, account), "account")
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
