package middleware

import (
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenRequired is a Fiber middleware that resolves the request's bearer
// token to a user. The user is stored in the request context for handlers.
func TokenRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.ResolveToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		c.Locals("user", user)
		c.Locals("token_key", parts[1])
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by TokenRequired, or nil
// on routes where the middleware did not run.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// CurrentTokenKey returns the token key the request authenticated with.
func CurrentTokenKey(c *fiber.Ctx) string {
	key, _ := c.Locals("token_key").(string)
	return key
}
