package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"support-bot/faq"
	"support-bot/services"
)

// CategoryView is a category as shown in the admin dashboard
type CategoryView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Emoji     string            `json:"emoji,omitempty"`
	Keywords  []string          `json:"keywords"`
	Tiers     []string          `json:"tiers"`
	Responses map[string]string `json:"responses"`
}

// FAQAdminHandler serves the admin endpoints for the FAQ matcher
type FAQAdminHandler struct {
	matcher  *faq.Matcher
	notifier services.Notifier
}

func NewFAQAdminHandler(matcher *faq.Matcher, notifier services.Notifier) *FAQAdminHandler {
	return &FAQAdminHandler{
		matcher:  matcher,
		notifier: notifier,
	}
}

// Categories lists the loaded categories
func (h *FAQAdminHandler) Categories(c *fiber.Ctx) error {
	categories := h.matcher.Categories()
	views := make([]CategoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, CategoryView{
			ID:        cat.ID,
			Name:      cat.Name,
			Emoji:     cat.Emoji,
			Keywords:  cat.Keywords,
			Tiers:     cat.TierOrder,
			Responses: cat.Responses,
		})
	}

	return c.JSON(fiber.Map{
		"categories": views,
		"count":      len(views),
	})
}

// Reload re-reads the FAQ configuration file
func (h *FAQAdminHandler) Reload(c *fiber.Ctx) error {
	if err := h.matcher.Reload(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	stats := h.matcher.Stats()
	if h.notifier != nil {
		h.notifier.Broadcast(services.EventFAQReload, stats)
	}

	slog.Info("FAQ reloaded from admin", "user_id", c.Locals("user_id"), "categories", stats.Categories)
	return c.JSON(fiber.Map{
		"message":    "FAQ config reloaded",
		"categories": stats.Categories,
	})
}

// ClearCache drops cached match outcomes
func (h *FAQAdminHandler) ClearCache(c *fiber.Ctx) error {
	h.matcher.ClearCache()
	return c.JSON(fiber.Map{
		"message": "FAQ cache cleared",
	})
}

// Stats returns matcher counters
func (h *FAQAdminHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.matcher.Stats())
}
