package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"support-bot/models"
	"support-bot/services"
)

const dateLayout = "2006-01-02"

// AnalyticsHandler serves conversation analytics, export and retention
type AnalyticsHandler struct {
	store services.AnalyticsStore
}

func NewAnalyticsHandler(store services.AnalyticsStore) *AnalyticsHandler {
	return &AnalyticsHandler{store: store}
}

// Summary aggregates exchanges of the last ?days=N days (default 7)
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	days, err := queryDays(c, 7)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	summary, err := h.store.Summary(c.Context(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		slog.Error("Failed to build analytics summary", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build analytics summary",
		})
	}
	return c.JSON(summary)
}

// Stats returns the summary, per-day activity and the most asked questions
// of the last ?days=N days (default 30)
func (h *AnalyticsHandler) Stats(c *fiber.Ctx) error {
	days, err := queryDays(c, 30)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	since := time.Now().AddDate(0, 0, -days)

	summary, err := h.store.Summary(c.Context(), since)
	if err != nil {
		slog.Error("Failed to build analytics summary", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build analytics"})
	}
	daily, err := h.store.DailyStats(c.Context(), since)
	if err != nil {
		slog.Error("Failed to build daily stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build analytics"})
	}
	top, err := h.store.TopQuestions(c.Context(), since, 10)
	if err != nil {
		slog.Error("Failed to fetch top questions", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build analytics"})
	}

	return c.JSON(fiber.Map{
		"stats":         summary,
		"daily_stats":   daily,
		"top_questions": top,
		"days":          days,
	})
}

// RecentExchanges lists the latest ?limit=N exchanges (default 50, max 500)
func (h *AnalyticsHandler) RecentExchanges(c *fiber.Ctx) error {
	limit := clamp(c.QueryInt("limit", 50), 1, 500)

	exchanges, err := h.store.RecentExchanges(c.Context(), limit)
	if err != nil {
		slog.Error("Failed to fetch exchanges", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch exchanges",
		})
	}
	return c.JSON(fiber.Map{
		"exchanges": exchanges,
		"count":     len(exchanges),
	})
}

// Conversations lists chat sessions. Filters: date_from, date_to
// (YYYY-MM-DD, inclusive), status (active|ended), keyword; paging with
// limit (default 50, max 500) and offset.
func (h *AnalyticsHandler) Conversations(c *fiber.Ctx) error {
	filter, err := parseConversationFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	filter.Limit = clamp(c.QueryInt("limit", 50), 1, 500)
	filter.Offset = c.QueryInt("offset", 0)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	conversations, total, err := h.store.ListConversations(c.Context(), filter)
	if err != nil {
		slog.Error("Failed to list conversations", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list conversations",
		})
	}

	slog.Info("✅ Fetched conversations", "count", len(conversations), "total", total)
	return c.JSON(fiber.Map{
		"conversations": conversations,
		"total":         total,
		"limit":         filter.Limit,
		"offset":        filter.Offset,
	})
}

// Conversation returns every exchange of one session
func (h *AnalyticsHandler) Conversation(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")

	exchanges, err := h.store.ConversationExchanges(c.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to fetch conversation", "error", err, "sessionID", sessionID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch conversation",
		})
	}
	if len(exchanges) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	}

	first, last := exchanges[0], exchanges[len(exchanges)-1]
	conv := models.Conversation{
		SessionID:     sessionID,
		StartTime:     first.Timestamp,
		EndTime:       last.Timestamp,
		TotalMessages: int64(len(exchanges)),
		Status:        models.ConversationStatusFor(last.Timestamp, time.Now()),
	}
	for _, ex := range exchanges {
		if ex.OnTopic {
			conv.OnTopicCount++
		} else {
			conv.OffTopicCount++
		}
	}

	return c.JSON(fiber.Map{
		"conversation": conv,
		"messages":     exchanges,
	})
}

// ExportCSV downloads every conversation matching the list filters as CSV
func (h *AnalyticsHandler) ExportCSV(c *fiber.Ctx) error {
	filter, err := parseConversationFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	conversations, _, err := h.store.ListConversations(c.Context(), filter)
	if err != nil {
		slog.Error("Failed to export conversations", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Export failed",
		})
	}

	var buf bytes.Buffer
	if err := services.WriteConversationsCSV(&buf, conversations); err != nil {
		slog.Error("Failed to write CSV", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Export failed",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="conversations.csv"`)
	return c.Send(buf.Bytes())
}

// DeleteConversation removes every exchange of one session
func (h *AnalyticsHandler) DeleteConversation(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")

	deleted, err := h.store.DeleteConversation(c.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to delete conversation", "error", err, "sessionID", sessionID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete conversation",
		})
	}
	if deleted == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	}

	slog.Info("🗑️ Conversation deleted", "sessionID", sessionID, "exchanges", deleted, "user_id", c.Locals("user_id"))
	return c.JSON(fiber.Map{
		"status":        "success",
		"deleted_count": deleted,
	})
}

// Cleanup deletes exchanges older than ?days=N days (default 90)
func (h *AnalyticsHandler) Cleanup(c *fiber.Ctx) error {
	days, err := queryDays(c, 90)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	deleted, err := h.store.DeleteExchangesBefore(c.Context(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		slog.Error("Failed to clean up exchanges", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Cleanup failed",
		})
	}

	slog.Info("🧹 Old exchanges deleted", "count", deleted, "days", days)
	return c.JSON(fiber.Map{
		"status":        "success",
		"deleted_count": deleted,
		"message":       fmt.Sprintf("Deleted %d exchanges older than %d days", deleted, days),
	})
}

func parseConversationFilter(c *fiber.Ctx) (models.ConversationFilter, error) {
	var filter models.ConversationFilter

	if v := c.Query("date_from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, fmt.Errorf("date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = from
	}
	if v := c.Query("date_to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, fmt.Errorf("date_to must be YYYY-MM-DD")
		}
		filter.DateTo = to.AddDate(0, 0, 1)
	}
	if !filter.DateFrom.IsZero() && !filter.DateTo.IsZero() && !filter.DateFrom.Before(filter.DateTo) {
		return filter, fmt.Errorf("date_from must not be after date_to")
	}

	if status := c.Query("status"); status != "" {
		if !models.IsValidConversationStatus(status) {
			return filter, fmt.Errorf("status must be %q or %q", models.ConversationActive, models.ConversationEnded)
		}
		filter.Status = status
	}
	filter.Keyword = strings.TrimSpace(c.Query("keyword"))

	return filter, nil
}

func queryDays(c *fiber.Ctx, defaultDays int) (int, error) {
	days := c.QueryInt("days", defaultDays)
	if days < 1 || days > 365 {
		return 0, fmt.Errorf("days must be between 1 and 365")
	}
	return days, nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
