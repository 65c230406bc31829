package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrdiaspora/diaspora-service/internal/auth"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

func newAuthHarness(t *testing.T) *harness {
	h := newHarness(t)
	h.auth = NewAuthService(AuthDependencies{
		Store:      h.store,
		Clock:      h.clock,
		Tokens:     auth.NewTokenManager("test-secret", time.Hour, h.clock),
		BcryptCost: 4,
	})
	return h
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	h := newAuthHarness(t)
	account, err := h.auth.CreateAccount(h.ctx, AccountInput{
		Username: "officer", Email: "Officer@Example.com", FirstName: "Sara", Password: "s3cret-pass", Role: domain.RoleOfficer,
	})
	require.NoError(t, err)
	assert.Equal(t, "officer@example.com", account.Email)

	for _, identifier := range []string{"officer", "officer@example.com", "OFFICER@example.com"} {
		got, token, err := h.auth.Login(h.ctx, identifier, "s3cret-pass")
		require.NoError(t, err, identifier)
		assert.Equal(t, account.ID, got.ID)
		assert.Equal(t, domain.RoleOfficer, token.Role)
		assert.Equal(t, h.clock.Now().Add(time.Hour), token.ExpiresAt)

		claims, err := h.auth.TokenManager().ParseToken(token.Value)
		require.NoError(t, err)
		assert.Equal(t, account.ID, claims.Subject)
	}

	_, _, err = h.auth.Login(h.ctx, "officer", "wrong-pass")
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, _, err = h.auth.Login(h.ctx, "nobody", "s3cret-pass")
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, _, err = h.auth.Login(h.ctx, "", "")
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestMeAndChangePassword(t *testing.T) {
	h := newAuthHarness(t)
	account, err := h.auth.CreateAccount(h.ctx, AccountInput{
		Username: "admin", Email: "admin@example.com", Password: "s3cret-pass", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)

	_, identity, err := h.auth.Me(h.ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", identity.FullName)

	err = h.auth.ChangePassword(h.ctx, account.ID, "not-it", "n3w-password")
	requireCode(t, err, apperrors.CodeUnauthorized)
	require.NoError(t, h.auth.ChangePassword(h.ctx, account.ID, "s3cret-pass", "n3w-password"))

	_, _, err = h.auth.Login(h.ctx, "admin", "n3w-password")
	assert.NoError(t, err)
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	h := newAuthHarness(t)
	input := AccountInput{Username: "seed-admin", Email: "seed@example.com", Password: "s3cret-pass", Role: domain.RoleAdmin}

	first, err := h.auth.EnsureAccount(h.ctx, input)
	require.NoError(t, err)
	second, err := h.auth.EnsureAccount(h.ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = h.auth.CreateAccount(h.ctx, input)
	requireCode(t, err, apperrors.CodeAlreadyExists)

	_, err = h.auth.CreateAccount(h.ctx, AccountInput{Username: "x", Email: "x@example.com", Password: "s3cret-pass", Role: "ROOT"})
	requireCode(t, err, apperrors.CodeValidationFailed)
}
