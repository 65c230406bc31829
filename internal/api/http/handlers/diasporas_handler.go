package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hrdiaspora/diaspora-service/internal/api/dto"
	"github.com/hrdiaspora/diaspora-service/internal/repository"
	"github.com/hrdiaspora/diaspora-service/internal/service"
)

// DiasporasHandler manages diaspora registration and profiles.
type DiasporasHandler struct {
	service *service.DiasporaService
}

// NewDiasporasHandler constructs handler.
func NewDiasporasHandler(diasporaService *service.DiasporaService) *DiasporasHandler {
	return &DiasporasHandler{service: diasporaService}
}

// Register POST /diasporas/register (public) and POST /diasporas (staff).
func (h *DiasporasHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterDiasporaRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	profile, err := diasporaInput(req.DiasporaProfileRequest)
	if err != nil {
		return err
	}
	created, err := h.service.Register(c.UserContext(), actorFrom(c), service.RegistrationInput{
		AccountID: req.AccountID,
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Profile:   profile,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDiasporaResponse(created)})
}

// Mine GET /diasporas/me.
func (h *DiasporasHandler) Mine(c *fiber.Ctx) error {
	profile, err := h.service.Mine(c.UserContext(), actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDiasporaResponse(profile)})
}

// List GET /diasporas.
func (h *DiasporasHandler) List(c *fiber.Ctx) error {
	filter := repository.DiasporaFilter{
		ListQuery:     parseListQuery(c),
		OwnerOfficeID: queryString(c, "owner_office_id"),
	}
	profiles, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.DiasporaResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, dto.NewDiasporaResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /diasporas/:id.
func (h *DiasporasHandler) Get(c *fiber.Ctx) error {
	profile, err := h.service.Get(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDiasporaResponse(profile)})
}

// Update PUT /diasporas/:id.
func (h *DiasporasHandler) Update(c *fiber.Ctx) error {
	var req dto.DiasporaProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	input, err := diasporaInput(req)
	if err != nil {
		return err
	}
	profile, err := h.service.Update(c.UserContext(), actorFrom(c), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDiasporaResponse(profile)})
}

// Delete DELETE /diasporas/:id.
func (h *DiasporasHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func diasporaInput(req dto.DiasporaProfileRequest) (service.DiasporaInput, error) {
	dob, err := parseDate("dob", req.DOB)
	if err != nil {
		return service.DiasporaInput{}, err
	}
	arrival, err := parseDate("arrival_date", req.ArrivalDate)
	if err != nil {
		return service.DiasporaInput{}, err
	}
	return service.DiasporaInput{
		Gender:                req.Gender,
		DOB:                   dob,
		PrimaryPhone:          req.PrimaryPhone,
		Whatsapp:              req.Whatsapp,
		CountryOfResidence:    req.CountryOfResidence,
		CityOfResidence:       req.CityOfResidence,
		ArrivalDate:           arrival,
		ExpectedStayDuration:  req.ExpectedStayDuration,
		IsReturnee:            req.IsReturnee,
		PreferredLanguage:     req.PreferredLanguage,
		CommunicationOptIn:    req.CommunicationOptIn,
		AddressLocal:          req.AddressLocal,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		PassportNo:            req.PassportNo,
		IDNumber:              req.IDNumber,
		OwnerOfficeID:         req.OwnerOfficeID,
	}, nil
}
