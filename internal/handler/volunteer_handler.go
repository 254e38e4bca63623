package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// VolunteerHandler serves the member-facing volunteer hour endpoints.
type VolunteerHandler struct {
	service service.VolunteerService
	logger  zerolog.Logger
}

func NewVolunteerHandler(service service.VolunteerService, logger zerolog.Logger) *VolunteerHandler {
	return &VolunteerHandler{
		service: service,
		logger:  logger.With().Str("component", "volunteer_handler").Logger(),
	}
}

// Register wires the authenticated member routes.
func (h *VolunteerHandler) Register(router fiber.Router) {
	router.Post("/hours", h.submit)
	router.Get("/hours", h.listOwn)
	router.Get("/waiver", h.waiverStatus)
}

func (h *VolunteerHandler) submit(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.HourLogSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SubmitHours(c.Context(), memberID, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, service.ErrMemberNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "member not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to submit hours")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit hours")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "hours submitted for review", result)
}

func (h *VolunteerHandler) listOwn(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.ListHours(c.Context(), &memberID, c.Query("status"), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list hour logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list hour logs")
	}

	return utils.SendSuccess(c, "hour logs retrieved", result)
}

func (h *VolunteerHandler) waiverStatus(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.service.RecalculateWaiver(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "member not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to evaluate waiver")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to evaluate waiver")
	}

	return utils.SendSuccess(c, "waiver status retrieved", result)
}
