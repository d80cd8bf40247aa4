package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServiceAuthMiddleware validates the Bearer token on webhook/admin surfaces.
// Disabled when RECEIPT_SERVICE_TOKEN is unset so local development does not need
// a token.
func ServiceAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("RECEIPT_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Println("⚠️  RECEIPT_SERVICE_TOKEN not set, service auth disabled")
		return func(c *fiber.Ctx) error { return c.Next() }
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
		if token != expectedToken {
			log.Printf("❌ [SERVICE_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service authentication token",
			})
		}

		return c.Next()
	}
}
