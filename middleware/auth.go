// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"tournament-signup-system/services"

	"github.com/gofiber/fiber/v2"
)

// TokenAuthMiddleware verifies the caller's ID token and attaches the
// decoded identity to the request context. The is_admin local reflects the
// token's claim, which can lag a promotion — only a forced claims refresh
// sees the new value.
func TokenAuthMiddleware(identity *services.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — accept the raw value
			token = authHeader
		}

		res, err := identity.VerifyIDToken(token)
		if err != nil {
			log.Printf("🚫 [AUTH] invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", res.UID)
		c.Locals("is_admin", res.Admin)
		c.Locals("identity", &services.Identity{UID: res.UID, Email: res.Email})

		return c.Next()
	}
}
