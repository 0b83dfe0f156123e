package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Middleware validates the Authorization bearer token and stores the user id
// in Locals("user_id") for downstream handlers.
func Middleware(jv *JWTValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
		}
		token := strings.TrimPrefix(header, "Bearer ")
		uid, err := jv.Validate(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals("user_id", uid)
		return c.Next()
	}
}
