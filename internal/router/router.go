package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cascadia-commons/portal-api/internal/config"
	"github.com/cascadia-commons/portal-api/internal/handler"
	"github.com/cascadia-commons/portal-api/internal/middleware"
	"github.com/cascadia-commons/portal-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AnnouncementHandler   *handler.AnnouncementHandler
	VolunteerHandler      *handler.VolunteerHandler
	AdminVolunteerHandler *handler.AdminVolunteerHandler
	MembershipHandler     *handler.MembershipHandler
	EventHandler          *handler.EventHandler
	AssistantHandler      *handler.AssistantHandler
	UserConfigHandler     *handler.UserConfigHandler
	UploadHandler         *handler.UploadHandler
	PaymentWebhookHandler *handler.PaymentWebhookHandler
	JWTMiddleware         fiber.Handler
	AssistantRateLimiter  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	requireBoard := middleware.RequireRole(models.RoleAdmin, models.RoleBoard)

	// Public surface: announcements and the event calendar.
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.Register(api.Group("/announcements"))
	}
	if deps.EventHandler != nil {
		deps.EventHandler.RegisterPublic(api.Group("/events"))
	}

	// Webhooks authenticate with a shared-secret signature, not a JWT.
	if deps.PaymentWebhookHandler != nil {
		deps.PaymentWebhookHandler.Register(api.Group("/webhooks"))
	}

	// Authenticated member surface.
	if deps.VolunteerHandler != nil {
		deps.VolunteerHandler.Register(api.Group("/volunteer", jwtMiddleware))
	}
	if deps.MembershipHandler != nil {
		deps.MembershipHandler.Register(api.Group("/members", jwtMiddleware))
	}
	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events", jwtMiddleware))
	}
	if deps.UserConfigHandler != nil {
		deps.UserConfigHandler.Register(api.Group("/user", jwtMiddleware))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads", jwtMiddleware))
	}
	if deps.AssistantHandler != nil {
		assistant := api.Group("/assistant", jwtMiddleware)
		if deps.AssistantRateLimiter != nil {
			assistant.Use(deps.AssistantRateLimiter)
		}
		deps.AssistantHandler.Register(assistant)
	}

	// Admin and board surface.
	admin := api.Group("/admin", jwtMiddleware, requireBoard)
	if deps.AdminVolunteerHandler != nil {
		deps.AdminVolunteerHandler.Register(admin.Group("/volunteer"))
	}
	if deps.MembershipHandler != nil {
		deps.MembershipHandler.RegisterAdmin(admin)
	}
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.RegisterAdmin(admin.Group("/announcements"))
	}
	if deps.EventHandler != nil {
		deps.EventHandler.RegisterAdmin(admin.Group("/events"))
	}
	if deps.UserConfigHandler != nil {
		deps.UserConfigHandler.RegisterAdmin(admin.Group("/features"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterAdmin(admin.Group("/uploads"))
	}
	if deps.PaymentWebhookHandler != nil {
		deps.PaymentWebhookHandler.RegisterAdmin(admin.Group("/billing"))
	}
}
