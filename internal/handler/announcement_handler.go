package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// AnnouncementHandler serves the public announcement feed and the admin
// posting endpoint.
type AnnouncementHandler struct {
	service service.AnnouncementService
	logger  zerolog.Logger
}

func NewAnnouncementHandler(service service.AnnouncementService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		logger:  logger.With().Str("component", "announcement_handler").Logger(),
	}
}

// Register wires the public routes.
func (h *AnnouncementHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

// RegisterAdmin wires the admin routes.
func (h *AnnouncementHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
}

func (h *AnnouncementHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.ListActive(c.Context(), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list announcements")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list announcements")
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "announcements retrieved", result)
}

func (h *AnnouncementHandler) create(c *fiber.Ctx) error {
	var payload dto.AnnouncementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create announcement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create announcement")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement created", result)
}
