package handler_test

import (
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

type mockEventService struct {
	lastEventID  uint
	lastMemberID uint
	registration dto.RegistrationResponse
	cancellation dto.CancellationResponse
	err          error
}

func (m *mockEventService) CreateEvent(_ context.Context, payload dto.EventCreateRequest) (dto.EventResponse, error) {
	return dto.EventResponse{ID: 1, Title: payload.Title}, m.err
}

func (m *mockEventService) ListEvents(_ context.Context, _, _ int, _ bool) (dto.EventListResponse, error) {
	return dto.EventListResponse{}, m.err
}

func (m *mockEventService) Register(_ context.Context, eventID, memberID uint) (dto.RegistrationResponse, error) {
	m.lastEventID = eventID
	m.lastMemberID = memberID
	return m.registration, m.err
}

func (m *mockEventService) CancelRegistration(_ context.Context, eventID, memberID uint) (dto.CancellationResponse, error) {
	m.lastEventID = eventID
	m.lastMemberID = memberID
	return m.cancellation, m.err
}

func newEventApp(svc service.EventService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/events", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		c.Locals("user_role", "member")
		return c.Next()
	})
	handler.NewEventHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestEventHandler_RegisterWaitlisted(t *testing.T) {
	svc := &mockEventService{registration: dto.RegistrationResponse{
		ID: 5, EventID: 3, MemberID: 42, Status: models.RegistrationStatusWaitlisted,
	}}
	app := newEventApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/events/3/register", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                     `json:"success"`
		Data    dto.RegistrationResponse `json:"data"`
		Message string                   `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, models.RegistrationStatusWaitlisted, response.Data.Status)
	require.Equal(t, "event is full, added to waitlist", response.Message)
	require.Equal(t, uint(3), svc.lastEventID)
	require.Equal(t, uint(42), svc.lastMemberID)
}

func TestEventHandler_RegisterConflict(t *testing.T) {
	app := newEventApp(&mockEventService{err: service.ErrAlreadyRegistered})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/events/3/register", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestEventHandler_CancelReportsPromotion(t *testing.T) {
	svc := &mockEventService{cancellation: dto.CancellationResponse{
		Cancelled: dto.RegistrationResponse{ID: 5, EventID: 3, MemberID: 42, Status: models.RegistrationStatusCancelled},
		Promoted:  &dto.RegistrationResponse{ID: 6, EventID: 3, MemberID: 77, Status: models.RegistrationStatusRegistered},
	}}
	app := newEventApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/events/3/register", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                     `json:"success"`
		Data    dto.CancellationResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.NotNil(t, response.Data.Promoted)
	require.Equal(t, uint(77), response.Data.Promoted.MemberID)
}

func TestEventHandler_CancelUnknownRegistration(t *testing.T) {
	app := newEventApp(&mockEventService{err: service.ErrRegistrationNotFound})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/events/3/register", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
