package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

var (
	// ErrInvalidSignature indicates the webhook signature did not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidWebhookPayload indicates the payload failed schema validation.
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")
)

const paymentEventSchema = `{
	"type": "object",
	"required": ["id", "type", "member_id", "amount"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"type": {"type": "string", "enum": ["payment.succeeded", "payment.failed"]},
		"member_id": {"type": "integer", "minimum": 1},
		"amount": {"type": "number", "minimum": 0},
		"currency": {"type": "string"}
	}
}`

// BillingService ingests payment-processor webhooks.
type BillingService interface {
	HandleWebhook(ctx context.Context, body []byte, signature string) (dto.PaymentWebhookEvent, error)
	ListPayments(ctx context.Context, memberID uint) ([]models.PaymentRecord, error)
}

type billingService struct {
	payments    repository.PaymentRepository
	memberships repository.MembershipRepository
	secret      []byte
	schema      *jsonschema.Schema
	logger      zerolog.Logger
}

// NewBillingService constructs the billing webhook service.
func NewBillingService(
	payments repository.PaymentRepository,
	memberships repository.MembershipRepository,
	webhookSecret string,
	logger zerolog.Logger,
) (BillingService, error) {
	schema, err := jsonschema.CompileString("payment_event.json", paymentEventSchema)
	if err != nil {
		return nil, err
	}

	return &billingService{
		payments:    payments,
		memberships: memberships,
		secret:      []byte(webhookSecret),
		schema:      schema,
		logger:      logger.With().Str("component", "billing_service").Logger(),
	}, nil
}

// HandleWebhook verifies the processor's HMAC signature, validates the
// payload shape, records the delivery and applies a successful payment to the
// member's active billing record. Redeliveries are idempotent via the
// provider reference.
func (s *billingService) HandleWebhook(ctx context.Context, body []byte, signature string) (dto.PaymentWebhookEvent, error) {
	if !s.verifySignature(body, signature) {
		return dto.PaymentWebhookEvent{}, ErrInvalidSignature
	}

	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return dto.PaymentWebhookEvent{}, ErrInvalidWebhookPayload
	}

	if err := s.schema.Validate(raw); err != nil {
		return dto.PaymentWebhookEvent{}, ErrInvalidWebhookPayload
	}

	var event dto.PaymentWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return dto.PaymentWebhookEvent{}, ErrInvalidWebhookPayload
	}

	if event.Currency == "" {
		event.Currency = "usd"
	}

	record := models.PaymentRecord{
		MemberID:    event.MemberID,
		ProviderRef: event.ID,
		EventType:   event.Type,
		Amount:      event.Amount,
		Currency:    strings.ToLower(event.Currency),
		ReceivedAt:  time.Now(),
	}

	var membershipID *uint
	membership, err := s.memberships.GetActiveByMember(ctx, event.MemberID)
	if err == nil {
		membershipID = &membership.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PaymentWebhookEvent{}, err
	}
	record.MembershipID = membershipID

	if err := s.payments.Create(ctx, &record); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			s.logger.Info().Str("provider_ref", event.ID).Msg("duplicate webhook delivery ignored")
			return event, nil
		}
		return dto.PaymentWebhookEvent{}, err
	}

	if event.Type == models.PaymentEventSucceeded && membershipID != nil {
		if err := s.memberships.RecordPayment(ctx, *membershipID, event.Amount); err != nil {
			return dto.PaymentWebhookEvent{}, err
		}
	}

	s.logger.Info().
		Str("provider_ref", event.ID).
		Str("event_type", event.Type).
		Uint("member_id", event.MemberID).
		Msg("payment webhook processed")

	return event, nil
}

func (s *billingService) ListPayments(ctx context.Context, memberID uint) ([]models.PaymentRecord, error) {
	return s.payments.ListByMember(ctx, memberID)
}

func (s *billingService) verifySignature(body []byte, signature string) bool {
	if len(s.secret) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)

	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(provided, mac.Sum(nil))
}
