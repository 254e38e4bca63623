package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// AdminVolunteerHandler serves the review queue for admins and board members.
type AdminVolunteerHandler struct {
	service service.VolunteerService
	logger  zerolog.Logger
}

func NewAdminVolunteerHandler(service service.VolunteerService, logger zerolog.Logger) *AdminVolunteerHandler {
	return &AdminVolunteerHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_volunteer_handler").Logger(),
	}
}

// Register wires the admin review routes.
func (h *AdminVolunteerHandler) Register(router fiber.Router) {
	router.Get("/hours", h.list)
	router.Post("/hours/:id/review", h.review)
	router.Post("/members/:id/waiver/recalculate", h.recalculate)
}

func (h *AdminVolunteerHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	var memberID *uint
	if id, err := parseQueryInt(c, "memberId"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid member id")
	} else if id > 0 {
		converted := uint(id)
		memberID = &converted
	}

	result, err := h.service.ListHours(c.Context(), memberID, c.Query("status"), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list hour logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list hour logs")
	}

	return utils.SendSuccess(c, "hour logs retrieved", result)
}

func (h *AdminVolunteerHandler) review(c *fiber.Ctx) error {
	hourLogID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid hour log id")
	}

	var payload dto.HourLogReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.ReviewHourLog(c.Context(), hourLogID, reviewerFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrInvalidReviewAction):
			return utils.SendError(c, fiber.StatusBadRequest, "review action must be APPROVE or REJECT")
		case errors.Is(err, service.ErrHourLogNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "hour log not found")
		case errors.Is(err, service.ErrHourLogAlreadyReviewed):
			return utils.SendError(c, fiber.StatusConflict, "hour log already reviewed")
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("hour_log_id", hourLogID).Msg("failed to review hour log")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to review hour log")
		}
	}

	return utils.SendSuccess(c, "hour log reviewed", result)
}

func (h *AdminVolunteerHandler) recalculate(c *fiber.Ctx) error {
	memberID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid member id")
	}

	result, err := h.service.RecalculateWaiver(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "member not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("member_id", memberID).Msg("failed to recalculate waiver")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to recalculate waiver")
	}

	return utils.SendSuccess(c, "waiver recalculated", result)
}
