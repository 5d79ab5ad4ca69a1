package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"support-bot/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	user, err := services.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredential) {
			slog.Info("Invalid login attempt", "email", req.Email)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		slog.Error("Failed to authenticate", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	session, err := services.CreateSession(c.Context(), user, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	sameSite, secure := cookiePolicy(c)
	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    session.SessionID,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Path:     "/",
	})

	if err := services.UpdateUserLastLogin(c.Context(), user); err != nil {
		slog.Error("Failed to update last login", "error", err)
	}

	slog.Info("User logged in", "user_id", user.ID.Hex(), "email", user.Email)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
	})
}

func Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID != "" {
		if err := services.DestroySession(c.Context(), sessionID); err != nil {
			slog.Error("Failed to destroy session", "error", err)
		}
	}

	sameSite, secure := cookiePolicy(c)
	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Path:     "/",
	})

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser must run after middleware.RequireAuth
func GetCurrentUser(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	user, err := services.GetUserByID(c.Context(), userID)
	if err != nil {
		slog.Error("Failed to get user", "error", err, "user_id", userID)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	return c.JSON(user)
}

// cookiePolicy relaxes SameSite for cross-origin dashboards (ngrok, separate frontend host)
func cookiePolicy(c *fiber.Ctx) (string, bool) {
	origin := c.Get(fiber.HeaderOrigin)
	isNgrok := strings.Contains(origin, "ngrok") || strings.Contains(c.Hostname(), "ngrok")
	isCrossOrigin := origin != "" &&
		!strings.HasPrefix(origin, "http://"+c.Hostname()) &&
		!strings.HasPrefix(origin, "https://"+c.Hostname())

	if isNgrok || isCrossOrigin {
		return fiber.CookieSameSiteNoneMode, true
	}
	return fiber.CookieSameSiteLaxMode, false
}

// CheckSession reports whether the session cookie is still valid
func CheckSession(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID == "" {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	session, err := services.GetSessionByID(c.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to check session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check session",
		})
	}
	if session == nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"email":         session.Email,
		"role":          session.Role,
		"expires_at":    session.ExpiresAt,
	})
}
