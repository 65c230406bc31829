package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hrdiaspora/diaspora-service/internal/auth"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/service"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// actorFrom builds the service actor for the caller. Anonymous callers get
// an actor with no account and no role.
func actorFrom(c *fiber.Ctx) service.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}
	}
	return service.Actor{AccountID: principal.AccountID(), Role: principal.Role}
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// parseListQuery reads search, ordering and paging. page/page_size are
// accepted as an alternative to limit/offset.
func parseListQuery(c *fiber.Ctx) repository.ListQuery {
	q := repository.ListQuery{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Limit:    parseInt(c.Query("limit"), 0),
		Offset:   parseInt(c.Query("offset"), 0),
	}
	if c.Query("page") != "" || c.Query("page_size") != "" {
		page := parseInt(c.Query("page"), 1)
		pageSize := parseInt(c.Query("page_size"), 20)
		q.Limit = pageSize
		q.Offset = (page - 1) * pageSize
	}
	return q
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func queryString(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func queryBool(c *fiber.Ctx, key string) bool {
	parsed, err := strconv.ParseBool(c.Query(key))
	return err == nil && parsed
}

// parseDate reads an optional ISO calendar date.
func parseDate(field string, val *string) (*time.Time, error) {
	if val == nil || strings.TrimSpace(*val) == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(*val))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{field: *val})
	}
	return &t, nil
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
