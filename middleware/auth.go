package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"support-bot/models"
	"support-bot/services"
)

// RequireAuth rejects requests without a valid session cookie and stores the
// session user in locals
func RequireAuth(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	session, err := services.GetSessionByID(c.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to get session", "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	if session == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired session",
		})
	}

	c.Locals("user_id", session.UserID)
	c.Locals("email", session.Email)
	c.Locals("role", session.Role)

	// Extend session expiration on activity
	if err := services.ExtendSession(c.Context(), sessionID); err != nil {
		slog.Warn("Failed to extend session", "error", err)
	}

	return c.Next()
}

// RequirePermission must run after RequireAuth
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if models.UserRole(role).HasPermission(permission) {
			return c.Next()
		}

		slog.Info("Permission denied", "user_role", role, "required_permission", permission)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}
