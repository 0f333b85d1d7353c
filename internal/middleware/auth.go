package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/melodyground/backend/internal/services"
	"github.com/melodyground/backend/internal/types"
)

// AuthRequired validates the bearer token on the request, resolves it to a
// full user record and stores it in the request context for handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Missing bearer token",
				Type:    "auth.token.missing",
			}
		}

		user, err := authService.CurrentUser(token)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: types.ErrUnauthenticated.Error(),
				Type:    "auth.token.invalid",
			}
		}

		c.Locals("user", user)

		return c.Next()
	}
}

// extractBearerToken pulls the token from the Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
