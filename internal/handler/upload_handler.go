package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// UploadHandler accepts avatar and event image uploads.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires the authenticated avatar route.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/avatar", h.avatar)
}

// RegisterAdmin wires the event image route.
func (h *UploadHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/events/:id/image", h.eventImage)
}

func (h *UploadHandler) avatar(c *fiber.Ctx) error {
	memberID := userIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	name, data, err := readUploadedFile(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file field is required")
	}

	result, err := h.service.UploadAvatar(c.Context(), memberID, name, data)
	if err != nil {
		return h.sendUploadError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "avatar uploaded", result)
}

func (h *UploadHandler) eventImage(c *fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	name, data, err := readUploadedFile(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file field is required")
	}

	result, err := h.service.UploadEventImage(c.Context(), eventID, name, data)
	if err != nil {
		return h.sendUploadError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event image uploaded", result)
}

func (h *UploadHandler) sendUploadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFileTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
	case errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "only image uploads are accepted")
	case errors.Is(err, service.ErrUploaderUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "file storage is not available")
	case errors.Is(err, service.ErrMemberNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "member not found")
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("upload failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "upload failed")
	}
}

func readUploadedFile(c *fiber.Ctx) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	file, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}
