package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/handler"
	"github.com/cascadia-commons/portal-api/internal/service"
)

type mockVolunteerService struct {
	lastMemberID  uint
	lastPayload   dto.HourLogSubmitRequest
	submitResult  dto.HourLogResponse
	submitErr     error
	listResult    dto.HourLogListResponse
	reviewResult  dto.ReviewOutcome
	reviewErr     error
	waiverResult  dto.WaiverEvaluation
	waiverErr     error
	lastHourLogID uint
	lastReviewer  service.Reviewer
}

func (m *mockVolunteerService) SubmitHours(_ context.Context, memberID uint, payload dto.HourLogSubmitRequest) (dto.HourLogResponse, error) {
	m.lastMemberID = memberID
	m.lastPayload = payload
	return m.submitResult, m.submitErr
}

func (m *mockVolunteerService) ListHours(_ context.Context, memberID *uint, _ string, _, _ int) (dto.HourLogListResponse, error) {
	if memberID != nil {
		m.lastMemberID = *memberID
	}
	return m.listResult, nil
}

func (m *mockVolunteerService) ReviewHourLog(_ context.Context, hourLogID uint, reviewer service.Reviewer, _ dto.HourLogReviewRequest) (dto.ReviewOutcome, error) {
	m.lastHourLogID = hourLogID
	m.lastReviewer = reviewer
	return m.reviewResult, m.reviewErr
}

func (m *mockVolunteerService) RecalculateWaiver(_ context.Context, memberID uint) (dto.WaiverEvaluation, error) {
	m.lastMemberID = memberID
	return m.waiverResult, m.waiverErr
}

func newVolunteerApp(svc service.VolunteerService, userID uint) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/volunteer", func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
			c.Locals("user_role", "member")
		}
		return c.Next()
	})
	handler.NewVolunteerHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestVolunteerHandler_SubmitHours(t *testing.T) {
	svc := &mockVolunteerService{submitResult: dto.HourLogResponse{ID: 7, MemberID: 42, Hours: 3.5, Status: "pending"}}
	app := newVolunteerApp(svc, 42)

	payload := dto.HourLogSubmitRequest{Hours: 3.5, ActivityDate: time.Now(), Description: "Trail maintenance at the park"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/volunteer/hours", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.HourLogResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, uint(7), response.Data.ID)
	require.Equal(t, uint(42), svc.lastMemberID)
	require.InDelta(t, 3.5, svc.lastPayload.Hours, 1e-9)
}

func TestVolunteerHandler_SubmitRequiresAuth(t *testing.T) {
	app := newVolunteerApp(&mockVolunteerService{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/volunteer/hours", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestVolunteerHandler_WaiverStatus(t *testing.T) {
	svc := &mockVolunteerService{waiverResult: dto.WaiverEvaluation{
		MemberID:        42,
		TotalHours:      21.5,
		WaiverThreshold: 30,
		HoursNeeded:     8.5,
	}}
	app := newVolunteerApp(svc, 42)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/volunteer/waiver", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                 `json:"success"`
		Data    dto.WaiverEvaluation `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.InDelta(t, 8.5, response.Data.HoursNeeded, 1e-9)
	require.Equal(t, uint(42), svc.lastMemberID)
}

func TestVolunteerHandler_WaiverStatusMemberMissing(t *testing.T) {
	svc := &mockVolunteerService{waiverErr: service.ErrMemberNotFound}
	app := newVolunteerApp(svc, 42)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/volunteer/waiver", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
