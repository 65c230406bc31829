package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hrdiaspora/diaspora-service/internal/api/dto"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/service"
)

// OfficesHandler manages office endpoints.
type OfficesHandler struct {
	service *service.OfficeService
}

// NewOfficesHandler constructs handler.
func NewOfficesHandler(officeService *service.OfficeService) *OfficesHandler {
	return &OfficesHandler{service: officeService}
}

// Create POST /offices.
func (h *OfficesHandler) Create(c *fiber.Ctx) error {
	var req dto.OfficeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	office, err := h.service.Create(c.UserContext(), officeInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOfficeResponse(office)})
}

// List GET /offices.
func (h *OfficesHandler) List(c *fiber.Ctx) error {
	filter := repository.OfficeFilter{ListQuery: parseListQuery(c)}
	if typ := queryString(c, "type"); typ != nil {
		t := domain.OfficeType(strings.ToUpper(*typ))
		filter.Type = &t
	}
	offices, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.OfficeResponse, 0, len(offices))
	for i := range offices {
		items = append(items, dto.NewOfficeResponse(&offices[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /offices/:id.
func (h *OfficesHandler) Get(c *fiber.Ctx) error {
	office, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOfficeResponse(office)})
}

// Update PUT /offices/:id.
func (h *OfficesHandler) Update(c *fiber.Ctx) error {
	var req dto.OfficeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	office, err := h.service.Update(c.UserContext(), c.Params("id"), officeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOfficeResponse(office)})
}

// Delete DELETE /offices/:id.
func (h *OfficesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func officeInput(req dto.OfficeRequest) service.OfficeInput {
	return service.OfficeInput{
		Name:         req.Name,
		Code:         req.Code,
		Type:         domain.OfficeType(strings.ToUpper(string(req.Type))),
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	}
}
