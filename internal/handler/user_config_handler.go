package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// UserConfigHandler serves the feature configuration for the caller's role.
type UserConfigHandler struct {
	service service.UserConfigService
	logger  zerolog.Logger
}

func NewUserConfigHandler(service service.UserConfigService, logger zerolog.Logger) *UserConfigHandler {
	return &UserConfigHandler{
		service: service,
		logger:  logger.With().Str("component", "user_config_handler").Logger(),
	}
}

// Register wires the authenticated config route.
func (h *UserConfigHandler) Register(router fiber.Router) {
	router.Get("/config", h.get)
}

// RegisterAdmin wires the feature flag management route.
func (h *UserConfigHandler) RegisterAdmin(router fiber.Router) {
	router.Put("/flags", h.setFlag)
}

func (h *UserConfigHandler) get(c *fiber.Ctx) error {
	result, err := h.service.GetForRole(c.Context(), userRoleFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to resolve user config")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve user config")
	}

	return utils.SendSuccess(c, "user config retrieved", result)
}

func (h *UserConfigHandler) setFlag(c *fiber.Ctx) error {
	var flag models.FeatureFlag
	if err := c.BodyParser(&flag); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if flag.Key == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "flag key is required")
	}

	if err := h.service.SetFlag(c.Context(), &flag); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("key", flag.Key).Msg("failed to update feature flag")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update feature flag")
	}

	return utils.SendSuccess(c, "feature flag updated", flag)
}
