package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-commons/portal-api/internal/config"
	"github.com/cascadia-commons/portal-api/internal/handler"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{
		AppName: "Cascadia Commons Portal API",
		AppEnv:  "test",
	}

	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, cfg.AppName, payload.Data.Service)
	require.Equal(t, cfg.AppEnv, payload.Data.Environment)
	require.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}
