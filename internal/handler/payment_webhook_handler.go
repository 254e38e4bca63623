package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/internal/utils"
)

// PaymentWebhookHandler receives signed payment events from the processor.
// It sits outside the JWT middleware; authenticity comes from the signature.
type PaymentWebhookHandler struct {
	service service.BillingService
	logger  zerolog.Logger
}

func NewPaymentWebhookHandler(service service.BillingService, logger zerolog.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		service: service,
		logger:  logger.With().Str("component", "payment_webhook_handler").Logger(),
	}
}

// Register wires the webhook route.
func (h *PaymentWebhookHandler) Register(router fiber.Router) {
	router.Post("/payments", h.receive)
}

// RegisterAdmin wires the payment history route.
func (h *PaymentWebhookHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/members/:id/payments", h.listPayments)
}

func (h *PaymentWebhookHandler) receive(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Signature")

	event, err := h.service.HandleWebhook(c.Context(), body, signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid webhook signature")
		case errors.Is(err, service.ErrInvalidWebhookPayload):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid webhook payload")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to process payment webhook")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to process payment webhook")
		}
	}

	return utils.SendSuccess(c, "webhook processed", event)
}

func (h *PaymentWebhookHandler) listPayments(c *fiber.Ctx) error {
	memberID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid member id")
	}

	payments, err := h.service.ListPayments(c.Context(), memberID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("member_id", memberID).Msg("failed to list payments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list payments")
	}

	return utils.SendSuccess(c, "payments retrieved", payments)
}
