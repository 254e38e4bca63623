package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// AssistantHandler serves the member help assistant.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

func NewAssistantHandler(service service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register wires the authenticated assistant route.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Post("/ask", h.ask)
}

func (h *AssistantHandler) ask(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AssistantAskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Ask(c.Context(), memberID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssistantUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "assistant is not available")
		case errors.Is(err, service.ErrMemberNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "member not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("assistant question failed")
			return utils.SendError(c, fiber.StatusBadGateway, "assistant is temporarily unavailable")
		}
	}

	return utils.SendSuccess(c, "assistant answered", result)
}
