// middleware/gateway.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServiceTokenMiddleware validates the shared Bearer token of the trusted
// admin client. Only routes behind it may run the role-assignment RPC.
func ServiceTokenMiddleware() fiber.Handler {
	expectedToken := os.Getenv("ADMIN_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ ADMIN_SERVICE_TOKEN is not set — trusted admin routes cannot authenticate")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Printf("🚫 [SERVICE_AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service authentication token missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — try the raw value
			token = authHeader
		}

		if token != expectedToken {
			log.Printf("❌ [SERVICE_AUTH] Invalid token for %s (got prefix: %.10s...)", c.Path(), token)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service authentication token",
			})
		}

		return c.Next()
	}
}
