package payment

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

type verifyRequest struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/payments/verify", h.verify)
}

func (h *Handler) verify(c *fiber.Ctx) error {
	payload := new(verifyRequest)
	if err := c.BodyParser(payload); err != nil {
		h.logger.Debug("unreadable payment body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgMissingInput})
	}

	result, err := h.service.VerifyAndFinalize(c.UserContext(), VerifyInput{
		Token:  payload.Token,
		UserID: payload.UserID,
	})
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgMissingInput})
		}

		h.logger.Error("error in /api/payments/verify", zap.String("userId", payload.UserID), zap.Error(err))
		var payErr *Error
		if errors.As(err, &payErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": payErr.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgVerifyFailed})
	}

	return c.JSON(result)
}
