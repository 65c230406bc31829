package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hrdiaspora/diaspora-service/internal/api/dto"
	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/service"
)

// ReferralsHandler manages referral endpoints.
type ReferralsHandler struct {
	service *service.ReferralService
	clock   clock.Clock
}

// NewReferralsHandler constructs handler.
func NewReferralsHandler(referralService *service.ReferralService, clk clock.Clock) *ReferralsHandler {
	return &ReferralsHandler{service: referralService, clock: clk}
}

// Create POST /referrals.
func (h *ReferralsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	created, err := h.service.Create(c.UserContext(), actorFrom(c), service.ReferralInput{
		CaseID:       req.CaseID,
		FromOfficeID: req.FromOfficeID,
		ToOfficeID:   req.ToOfficeID,
		Reason:       req.Reason,
		Checklist:    req.Checklist,
		SLADueAt:     req.SLADueAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.response(created)})
}

// List GET /referrals.
func (h *ReferralsHandler) List(c *fiber.Ctx) error {
	filter := repository.ReferralFilter{
		ListQuery:  parseListQuery(c),
		CaseID:     queryString(c, "case_id"),
		ToOfficeID: queryString(c, "to_office_id"),
	}
	if status := queryString(c, "status"); status != nil {
		s := domain.ReferralStatus(strings.ToUpper(*status))
		filter.Status = &s
	}
	referrals, err := h.service.List(c.UserContext(), filter, queryBool(c, "overdue"))
	if err != nil {
		return err
	}
	items := make([]dto.ReferralResponse, 0, len(referrals))
	for i := range referrals {
		items = append(items, h.response(&referrals[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /referrals/:id.
func (h *ReferralsHandler) Get(c *fiber.Ctx) error {
	found, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.response(found)})
}

// Receive POST /referrals/:id/receive.
func (h *ReferralsHandler) Receive(c *fiber.Ctx) error {
	updated, err := h.service.MarkReceived(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.response(updated)})
}

// Advance POST /referrals/:id/status.
func (h *ReferralsHandler) Advance(c *fiber.Ctx) error {
	var req dto.AdvanceReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	status := domain.ReferralStatus(strings.ToUpper(string(req.Status)))
	updated, err := h.service.Advance(c.UserContext(), actorFrom(c), c.Params("id"), status, req.CompletedAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.response(updated)})
}

// Sync POST /referrals/:id/sync.
func (h *ReferralsHandler) Sync(c *fiber.Ctx) error {
	updated, err := h.service.MarkSynced(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.response(updated)})
}

// History GET /referrals/:id/history.
func (h *ReferralsHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransitionResponses(entries)})
}

func (h *ReferralsHandler) response(r *domain.Referral) dto.ReferralResponse {
	return dto.NewReferralResponse(r, h.clock.Now())
}
