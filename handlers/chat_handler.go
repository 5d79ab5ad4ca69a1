package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"support-bot/services"
)

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// MatchRequest is the body of POST /api/faq/match and /api/faq/fallback
type MatchRequest struct {
	Message   string   `json:"message"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// ChatHandler serves the public chat endpoints
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat answers a customer message
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"response": "Te rog scrie un mesaj.",
			"status":   "error",
		})
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = "session_" + uuid.NewString()
	}

	reply, err := h.chat.Answer(c.Context(), services.ChatRequest{
		Message:   req.Message,
		SessionID: sessionID,
		UserIP:    c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"response": "Te rog scrie un mesaj.",
				"status":   "error",
			})
		}
		slog.Error("❌ Chat error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"response": "A apărut o eroare. Te rog încearcă din nou.",
			"status":   "error",
		})
	}

	return c.JSON(reply)
}

// Match returns the FAQ answer for a message or 404 when nothing matches
func (h *ChatHandler) Match(c *fiber.Ctx) error {
	var req MatchRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	threshold, err := resolveThreshold(h.chat.Threshold(), req.Threshold)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resp := h.chat.Match(req.Message, threshold)
	if resp == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no match",
		})
	}
	return c.JSON(resp)
}

// Fallback returns the hedged answer or topic menu for a message
func (h *ChatHandler) Fallback(c *fiber.Ctx) error {
	var req MatchRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	return c.JSON(fiber.Map{
		"response": h.chat.Fallback(req.Message),
	})
}

var errThresholdRange = errors.New("threshold must be between 0 and 100")

// resolveThreshold returns override when set, def otherwise
func resolveThreshold(def float64, override *float64) (float64, error) {
	if override == nil {
		return def, nil
	}
	if *override < 0 || *override > 100 {
		return 0, errThresholdRange
	}
	return *override, nil
}
