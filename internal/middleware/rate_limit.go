package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/cascadia-commons/portal-api/internal/utils"
)

// RateLimit builds a per-member rate limiter. Anonymous requests fall back
// to the client IP so the assistant endpoint cannot be hammered pre-auth.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			memberKey := fmt.Sprintf("%v", c.Locals("user_id"))
			if memberKey == "" || memberKey == "0" || memberKey == "<nil>" {
				memberKey = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, memberKey)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "rate limit exceeded, try again shortly")
		},
	})
}
