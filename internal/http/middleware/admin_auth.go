package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// AdminAuthHeader carries the shared admin secret on every admin request.
// The credential is stateless: no session is established server-side.
const AdminAuthHeader = "x-admin-auth"

// AdminAuth rejects requests whose shared secret does not match. An empty
// configured password locks the admin API entirely rather than opening it.
func AdminAuth(password string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get(AdminAuthHeader)
		if password == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(provided), []byte(password)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
