package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/drillbot/internal/auth"
)

// RequireAuth verifies the bearer token and stores the caller's identity in
// request locals for downstream handlers.
func RequireAuth(tokens *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.ExtractToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}

		claims, err := tokens.VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("is_admin", claims.IsAdmin)
		return c.Next()
	}
}

// userID reads the authenticated user from request locals. Zero means the
// route was registered without RequireAuth.
func userID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("user_id").(int64)
	return id
}
