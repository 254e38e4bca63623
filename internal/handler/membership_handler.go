package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// MembershipHandler serves member profiles and the admin application queue.
type MembershipHandler struct {
	service service.MembershipService
	logger  zerolog.Logger
}

func NewMembershipHandler(service service.MembershipService, logger zerolog.Logger) *MembershipHandler {
	return &MembershipHandler{
		service: service,
		logger:  logger.With().Str("component", "membership_handler").Logger(),
	}
}

// Register wires the authenticated member routes.
func (h *MembershipHandler) Register(router fiber.Router) {
	router.Get("/me", h.profile)
}

// RegisterAdmin wires the admin routes.
func (h *MembershipHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/members", h.list)
	router.Get("/members/:id", h.profileByID)
	router.Post("/applications/approve", h.approve)
}

func (h *MembershipHandler) profile(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	return h.sendProfile(c, memberID)
}

func (h *MembershipHandler) profileByID(c *fiber.Ctx) error {
	memberID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid member id")
	}
	return h.sendProfile(c, memberID)
}

func (h *MembershipHandler) sendProfile(c *fiber.Ctx, memberID uint) error {
	result, err := h.service.GetProfile(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "member not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("member_id", memberID).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", result)
}

func (h *MembershipHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.ListMembers(c.Context(), page, pageSize, c.Query("role"), c.Query("search"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list members")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list members")
	}

	return utils.SendSuccess(c, "members retrieved", result)
}

func (h *MembershipHandler) approve(c *fiber.Ctx) error {
	var payload dto.ApplicationApproveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.ApproveApplication(c.Context(), reviewerFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, service.ErrMemberNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "member not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to approve application")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to approve application")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application approved", result)
}
