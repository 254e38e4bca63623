package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cascadia-commons/portal-api/internal/utils"
)

// Locals keys populated by JWTProtected for downstream handlers.
const (
	LocalsUserID   = "user_id"
	LocalsUserRole = "user_role"
)

// JWTProtected validates bearer tokens minted by the identity provider and
// binds the member ID and role to the request. Tokens carry the member ID in
// "sub" and the portal role in "role".
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		memberID, ok := memberIDFromClaims(claims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "token missing subject")
		}

		c.Locals(LocalsUserID, memberID)
		if role := roleFromClaims(claims); role != "" {
			c.Locals(LocalsUserRole, role)
		}

		return c.Next()
	}
}

func bearerToken(authorization string) (string, error) {
	if authorization == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	const prefix = "bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", fmt.Errorf("invalid authorization header")
	}

	token := strings.TrimSpace(authorization[len(prefix):])
	if token == "" {
		return "", fmt.Errorf("invalid token")
	}

	return token, nil
}

func memberIDFromClaims(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}

		switch v := value.(type) {
		case float64:
			if v > 0 {
				return uint(v), true
			}
		case string:
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil && parsed > 0 {
				return uint(parsed), true
			}
		}
	}

	return 0, false
}

func roleFromClaims(claims jwt.MapClaims) string {
	value, ok := claims["role"]
	if !ok {
		return ""
	}

	role, ok := value.(string)
	if !ok {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(role))
}
