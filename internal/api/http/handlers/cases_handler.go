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

// CasesHandler manages case endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// Open POST /cases.
func (h *CasesHandler) Open(c *fiber.Ctx) error {
	var req dto.OpenCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if req.DiasporaID == "" {
		return apperrors.NewValidationError("diaspora is required", nil)
	}
	opened, err := h.service.OpenCase(c.UserContext(), actorFrom(c), req.DiasporaID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCaseResponse(opened)})
}

// List GET /cases.
func (h *CasesHandler) List(c *fiber.Ctx) error {
	filter := repository.CaseFilter{ListQuery: parseListQuery(c)}
	if stage := queryString(c, "current_stage"); stage != nil {
		s := domain.CaseStage(strings.ToUpper(*stage))
		filter.Stage = &s
	}
	if status := queryString(c, "overall_status"); status != nil {
		s := domain.CaseStatus(strings.ToUpper(*status))
		filter.OverallStatus = &s
	}
	cases, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, dto.NewCaseResponse(&cases[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /cases/:id.
func (h *CasesHandler) Get(c *fiber.Ctx) error {
	found, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(found)})
}

// ByDiaspora GET /diasporas/:id/case.
func (h *CasesHandler) ByDiaspora(c *fiber.Ctx) error {
	found, err := h.service.GetByDiaspora(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(found)})
}

// AdvanceStage POST /cases/:id/stage.
func (h *CasesHandler) AdvanceStage(c *fiber.Ctx) error {
	var req dto.StageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	stage := domain.CaseStage(strings.ToUpper(string(req.CurrentStage)))
	updated, backward, err := h.service.AdvanceStage(c.UserContext(), actorFrom(c), c.Params("id"), stage)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StageChangeResponse{
		Case:     dto.NewCaseResponse(updated),
		Backward: backward,
	}})
}

// SetStatus POST /cases/:id/status.
func (h *CasesHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.OverallStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	status := domain.CaseStatus(strings.ToUpper(string(req.OverallStatus)))
	updated, err := h.service.SetOverallStatus(c.UserContext(), actorFrom(c), c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(updated)})
}

// History GET /cases/:id/history.
func (h *CasesHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransitionResponses(entries)})
}
