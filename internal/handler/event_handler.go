package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// EventHandler serves the event calendar and registrations.
type EventHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

func NewEventHandler(service service.EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger.With().Str("component", "event_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated calendar route.
func (h *EventHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.list)
}

// Register wires the authenticated registration routes.
func (h *EventHandler) Register(router fiber.Router) {
	router.Post("/:id/register", h.register)
	router.Delete("/:id/register", h.cancel)
}

// RegisterAdmin wires the admin routes.
func (h *EventHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	upcoming := c.Query("upcoming") != "false"

	result, err := h.service.ListEvents(c.Context(), page, pageSize, upcoming)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list events")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list events")
	}

	return utils.SendSuccess(c, "events retrieved", result)
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.CreateEvent(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create event")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", result)
}

func (h *EventHandler) register(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.Register(c.Context(), eventID, memberID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrAlreadyRegistered):
			return utils.SendError(c, fiber.StatusConflict, "already registered for this event")
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("event_id", eventID).Msg("failed to register for event")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to register for event")
		}
	}

	message := "registered for event"
	if result.Status == models.RegistrationStatusWaitlisted {
		message = "event is full, added to waitlist"
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, message, result)
}

func (h *EventHandler) cancel(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.CancelRegistration(c.Context(), eventID, memberID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrRegistrationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "registration not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("event_id", eventID).Msg("failed to cancel registration")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to cancel registration")
		}
	}

	return utils.SendSuccess(c, "registration cancelled", result)
}
