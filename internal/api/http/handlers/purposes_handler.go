package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hrdiaspora/diaspora-service/internal/api/dto"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/service"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// PurposesHandler manages purpose endpoints.
type PurposesHandler struct {
	service *service.PurposeService
}

// NewPurposesHandler constructs handler.
func NewPurposesHandler(purposeService *service.PurposeService) *PurposesHandler {
	return &PurposesHandler{service: purposeService}
}

// Create POST /purposes.
func (h *PurposesHandler) Create(c *fiber.Ctx) error {
	var req dto.PurposeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if req.DiasporaID == "" {
		return apperrors.NewValidationError("diaspora is required", nil)
	}
	purpose, err := h.service.Create(c.UserContext(), actorFrom(c), purposeInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPurposeResponse(purpose)})
}

// List GET /purposes.
func (h *PurposesHandler) List(c *fiber.Ctx) error {
	filter := repository.PurposeFilter{
		ListQuery:  parseListQuery(c),
		DiasporaID: queryString(c, "diaspora"),
	}
	if typ := queryString(c, "type"); typ != nil {
		t := domain.PurposeType(strings.ToUpper(*typ))
		filter.Type = &t
	}
	if status := queryString(c, "status"); status != nil {
		s := domain.PurposeStatus(strings.ToUpper(*status))
		filter.Status = &s
	}
	purposes, err := h.service.List(c.UserContext(), actorFrom(c), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PurposeResponse, 0, len(purposes))
	for i := range purposes {
		items = append(items, dto.NewPurposeResponse(&purposes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /purposes/:id.
func (h *PurposesHandler) Get(c *fiber.Ctx) error {
	purpose, err := h.service.Get(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPurposeResponse(purpose)})
}

// Update PUT /purposes/:id.
func (h *PurposesHandler) Update(c *fiber.Ctx) error {
	var req dto.PurposeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	purpose, err := h.service.Update(c.UserContext(), actorFrom(c), c.Params("id"), purposeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPurposeResponse(purpose)})
}

// Delete DELETE /purposes/:id.
func (h *PurposesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func purposeInput(req dto.PurposeRequest) service.PurposeInput {
	return service.PurposeInput{
		DiasporaID:            req.DiasporaID,
		Type:                  domain.PurposeType(strings.ToUpper(string(req.Type))),
		Description:           req.Description,
		Sector:                req.Sector,
		SubSector:             req.SubSector,
		InvestmentType:        req.InvestmentType,
		EstimatedCapital:      req.EstimatedCapital,
		Currency:              req.Currency,
		JobsExpected:          req.JobsExpected,
		LandRequirement:       req.LandRequirement,
		LandSize:              req.LandSize,
		PreferredLocationNote: req.PreferredLocationNote,
		Status:                domain.PurposeStatus(strings.ToUpper(string(req.Status))),
	}
}
