package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

type stubAccounts map[string]*domain.Account

func (s stubAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func TestTokenRoundTrip(t *testing.T) {
	clk := clock.NewFixed(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
	tm := NewTokenManager("secret", time.Hour, clk)

	token, err := tm.GenerateToken("acc-1", domain.RoleOfficer)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), token.ExpiresAt)

	claims, err := tm.ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.Subject)
	assert.Equal(t, domain.RoleOfficer, claims.Role)
}

func TestTokenExpiresOnClock(t *testing.T) {
	clk := clock.NewFixed(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
	tm := NewTokenManager("secret", time.Minute, clk)

	token, err := tm.GenerateToken("acc-1", domain.RoleAdmin)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = tm.ParseToken(token.Value)
	assert.Error(t, err)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	clk := clock.NewFixed(time.Now())
	token, err := NewTokenManager("a", time.Hour, clk).GenerateToken("acc-1", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager("b", time.Hour, clk).ParseToken(token.Value)
	assert.Error(t, err)
}

func TestPasswordMatches(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)

	ok, err := PasswordMatches(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PasswordMatches(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = PasswordMatches("", "anything")
	assert.False(t, ok)
}

func newProtectedApp(tm *TokenManager, accounts stubAccounts, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(statusOf(err)).SendString(err.Error())
		},
	})
	m := NewAuthMiddleware(tm, accounts)
	app.Get("/private", m.Handle, guard, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(string(p.Role))
	})
	return app
}

func TestMiddlewareAndRoles(t *testing.T) {
	clk := clock.NewFixed(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
	tm := NewTokenManager("secret", time.Hour, clk)
	accounts := stubAccounts{
		"officer": {ID: "officer", Role: domain.RoleOfficer},
		"member":  {ID: "member", Role: domain.RoleDiaspora},
	}
	app := newProtectedApp(tm, accounts, RequireStaff())

	call := func(header string) int {
		req := httptest.NewRequest("GET", "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}
	bearer := func(id string, role domain.Role) string {
		token, err := tm.GenerateToken(id, role)
		require.NoError(t, err)
		return "Bearer " + token.Value
	}

	assert.Equal(t, fiber.StatusUnauthorized, call(""))
	assert.Equal(t, fiber.StatusUnauthorized, call("Token abc"))
	assert.Equal(t, fiber.StatusOK, call(bearer("officer", domain.RoleOfficer)))
	assert.Equal(t, fiber.StatusForbidden, call(bearer("member", domain.RoleDiaspora)))
	// the stored role wins over the one inside the token
	assert.Equal(t, fiber.StatusForbidden, call(bearer("member", domain.RoleAdmin)))
	assert.Equal(t, fiber.StatusUnauthorized, call(bearer("ghost", domain.RoleAdmin)))
}

func statusOf(err error) int {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de.HTTPStatus
	}
	return fiber.StatusInternalServerError
}
