package handler_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/handler"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/service"
)

type mockBillingService struct {
	lastBody      []byte
	lastSignature string
	event         dto.PaymentWebhookEvent
	err           error
}

func (m *mockBillingService) HandleWebhook(_ context.Context, body []byte, signature string) (dto.PaymentWebhookEvent, error) {
	m.lastBody = append([]byte(nil), body...)
	m.lastSignature = signature
	return m.event, m.err
}

func (m *mockBillingService) ListPayments(_ context.Context, _ uint) ([]models.PaymentRecord, error) {
	return nil, m.err
}

func newWebhookApp(svc service.BillingService) *fiber.App {
	app := fiber.New()
	handler.NewPaymentWebhookHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/webhooks"))
	return app
}

func TestPaymentWebhookHandler_Receive(t *testing.T) {
	svc := &mockBillingService{event: dto.PaymentWebhookEvent{ID: "evt_1", Type: models.PaymentEventSucceeded, MemberID: 5, Amount: 60}}
	app := newWebhookApp(svc)

	body := []byte(`{"id":"evt_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", "sha256=abc")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, body, svc.lastBody)
	require.Equal(t, "sha256=abc", svc.lastSignature)
}

func TestPaymentWebhookHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad signature", service.ErrInvalidSignature, fiber.StatusUnauthorized},
		{"bad payload", service.ErrInvalidWebhookPayload, fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newWebhookApp(&mockBillingService{err: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", bytes.NewReader([]byte(`{}`)))
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
