package handlers

import (
	"encoding/csv"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-bot/models"
)

func newAnalyticsApp(t *testing.T) (*fiber.App, *memoryStore) {
	t.Helper()
	now := time.Now()
	store := &memoryStore{exchanges: []models.Exchange{
		{SessionID: "ieri", UserMessage: "Cum fac retur?", OnTopic: true, CategoryID: "retur", Timestamp: now.Add(-48 * time.Hour)},
		{SessionID: "ieri", UserMessage: "xyz abc", OnTopic: false, Timestamp: now.Add(-48*time.Hour + time.Minute)},
		{SessionID: "acum", UserMessage: "cat costa livrarea", OnTopic: true, CategoryID: "livrare", Timestamp: now.Add(-5 * time.Minute)},
		{SessionID: "vechi", UserMessage: "cum fac RETUR?", OnTopic: true, CategoryID: "retur", Timestamp: now.AddDate(0, 0, -100)},
	}}
	h := NewAnalyticsHandler(store)

	app := fiber.New()
	app.Get("/admin/analytics/summary", h.Summary)
	app.Get("/admin/analytics/stats", h.Stats)
	app.Get("/admin/analytics/exchanges", h.RecentExchanges)
	app.Get("/admin/analytics/conversations", h.Conversations)
	app.Get("/admin/analytics/conversations/:sessionID", h.Conversation)
	app.Get("/admin/analytics/export-csv", h.ExportCSV)
	app.Delete("/admin/analytics/conversations/:sessionID", h.DeleteConversation)
	app.Post("/admin/analytics/cleanup", h.Cleanup)
	return app, store
}

func sessionIDs(t *testing.T, body map[string]interface{}) []string {
	t.Helper()
	var ids []string
	for _, item := range body["conversations"].([]interface{}) {
		ids = append(ids, item.(map[string]interface{})["session_id"].(string))
	}
	return ids
}

func TestConversationsListing(t *testing.T) {
	app, _ := newAnalyticsApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/admin/analytics/conversations", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(50), body["limit"])
	assert.Equal(t, []string{"acum", "ieri", "vechi"}, sessionIDs(t, body))

	first := body["conversations"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, models.ConversationActive, first["status"])
	second := body["conversations"].([]interface{})[1].(map[string]interface{})
	assert.Equal(t, models.ConversationEnded, second["status"])
	assert.Equal(t, float64(2), second["total_messages"])
	assert.Equal(t, float64(1), second["off_topic_count"])
}

func TestConversationsFilters(t *testing.T) {
	app, store := newAnalyticsApp(t)

	tests := []struct {
		name  string
		query string
		want  []string
		total float64
	}{
		{"status active", "?status=active", []string{"acum"}, 1},
		{"status ended", "?status=ended", []string{"ieri", "vechi"}, 2},
		{"keyword is case insensitive", "?keyword=retur", []string{"ieri", "vechi"}, 2},
		{"paging", "?limit=1&offset=1", []string{"ieri"}, 3},
		{"offset past the end", "?offset=10", nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, fiber.MethodGet, "/admin/analytics/conversations"+tt.query, "")
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.total, body["total"])
			assert.Equal(t, tt.want, sessionIDs(t, body))
		})
	}

	t.Run("date range is inclusive", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/admin/analytics/conversations?date_from=2026-03-01&date_to=2026-03-31", "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), store.filter.DateFrom)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), store.filter.DateTo)
	})
}

func TestConversationsRejectsBadFilters(t *testing.T) {
	app, _ := newAnalyticsApp(t)

	for _, query := range []string{
		"?date_from=01-03-2026",
		"?date_to=tomorrow",
		"?date_from=2026-03-02&date_to=2026-03-01",
		"?status=closed",
	} {
		resp, body := doJSON(t, app, fiber.MethodGet, "/admin/analytics/conversations"+query, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, query)
		assert.NotEmpty(t, body["error"], query)
	}
}

func TestConversationDetail(t *testing.T) {
	app, _ := newAnalyticsApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/admin/analytics/conversations/ieri", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	conv := body["conversation"].(map[string]interface{})
	assert.Equal(t, "ieri", conv["session_id"])
	assert.Equal(t, float64(2), conv["total_messages"])
	assert.Equal(t, float64(1), conv["on_topic_count"])
	assert.Equal(t, models.ConversationEnded, conv["status"])

	messages := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "Cum fac retur?", messages[0].(map[string]interface{})["user_message"])

	resp, _ = doJSON(t, app, fiber.MethodGet, "/admin/analytics/conversations/necunoscut", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStatsIncludesDailyAndTopQuestions(t *testing.T) {
	app, store := newAnalyticsApp(t)
	store.summary = &models.ExchangeSummary{TotalExchanges: 3}

	resp, body := doJSON(t, app, fiber.MethodGet, "/admin/analytics/stats", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(30), body["days"])
	assert.Equal(t, float64(3), body["stats"].(map[string]interface{})["total_exchanges"])
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), store.since, time.Minute)

	// the 100 day old exchange is outside the window
	assert.Len(t, body["daily_stats"].([]interface{}), 2)
	top := body["top_questions"].([]interface{})
	require.Len(t, top, 3)
	for _, q := range top {
		assert.Equal(t, float64(1), q.(map[string]interface{})["count"])
	}

	resp, _ = doJSON(t, app, fiber.MethodGet, "/admin/analytics/stats?days=400", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExportCSV(t *testing.T) {
	app, store := newAnalyticsApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin/analytics/export-csv?status=ended", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "conversations.csv")
	assert.Zero(t, store.filter.Limit, "export is not paginated")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Session ID", records[0][0])
	assert.Equal(t, "ieri", records[1][0])
	assert.Equal(t, "vechi", records[2][0])
	assert.Equal(t, "ended", records[1][6])
}

func TestDeleteConversation(t *testing.T) {
	app, store := newAnalyticsApp(t)

	resp, body := doJSON(t, app, fiber.MethodDelete, "/admin/analytics/conversations/ieri", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["deleted_count"])
	assert.Len(t, store.exchanges, 2)

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/admin/analytics/conversations/ieri", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCleanupDeletesOldExchanges(t *testing.T) {
	app, store := newAnalyticsApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/admin/analytics/cleanup", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["deleted_count"])
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -90), store.cutoff, time.Minute)
	assert.Len(t, store.exchanges, 3)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/admin/analytics/cleanup?days=0", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAnalyticsSummaryWindow(t *testing.T) {
	app, store := newAnalyticsApp(t)
	store.summary = &models.ExchangeSummary{TotalExchanges: 12, OnTopicCount: 9}

	resp, body := doJSON(t, app, fiber.MethodGet, "/admin/analytics/summary?days=30", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(12), body["total_exchanges"])
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), store.since, time.Minute)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/admin/analytics/summary?days=0", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRecentExchangesClampsLimit(t *testing.T) {
	app, store := newAnalyticsApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/admin/analytics/exchanges?limit=10000", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(4), body["count"])
	assert.Equal(t, 500, store.limit)

	doJSON(t, app, fiber.MethodGet, "/admin/analytics/exchanges", "")
	assert.Equal(t, 50, store.limit)
}
