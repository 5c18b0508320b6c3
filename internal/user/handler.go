package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgMissingFields   = "Name, email, and phone are required."
	msgInvalidReferral = "Invalid referral code."
	msgAlreadyPaid     = "This email is already registered and paid."
	msgSetupFailed     = "An error occurred while setting up your profile."
)

type Handler struct {
	service ServiceInterface
	logger  *zap.Logger
}

type createRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	RefCode string `json:"refCode"`
}

func NewHandler(service ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/users/create", h.create)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		h.logger.Debug("unreadable registration body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgMissingFields})
	}

	created, err := h.service.Register(c.UserContext(), RegisterInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		RefCode: payload.RefCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgMissingFields})
		case errors.Is(err, ErrInvalidReferral):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgInvalidReferral})
		case errors.Is(err, ErrAlreadyPaid):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msgAlreadyPaid})
		default:
			h.logger.Error("error in /api/users/create", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgSetupFailed})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"userId": created.ID})
}
