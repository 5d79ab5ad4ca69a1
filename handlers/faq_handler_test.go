package handlers

import (
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-bot/faq"
	"support-bot/services"
)

func newAdminApp(t *testing.T) (*fiber.App, *faq.Matcher, *recordingNotifier) {
	t.Helper()
	matcher := newTestMatcher(t)
	notifier := &recordingNotifier{}
	h := NewFAQAdminHandler(matcher, notifier)

	app := fiber.New()
	app.Get("/admin/faq/categories", h.Categories)
	app.Post("/admin/faq/reload", h.Reload)
	app.Post("/admin/faq/cache/clear", h.ClearCache)
	app.Get("/admin/faq/stats", h.Stats)
	return app, matcher, notifier
}

func TestCategoriesKeepsConfigOrder(t *testing.T) {
	app, _, _ := newAdminApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/admin/faq/categories", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])

	categories := body["categories"].([]interface{})
	first := categories[0].(map[string]interface{})
	assert.Equal(t, "retur", first["id"])
	assert.Equal(t, []interface{}{"standard", "complete"}, first["tiers"])
}

func TestReloadPicksUpChangesAndBroadcasts(t *testing.T) {
	app, matcher, notifier := newAdminApp(t)

	require.NotNil(t, matcher.FindBestMatch("cum fac retur", 60))

	updated := `{"faq_structured":{"categorii":[{"id":"plata","nume":"Plată","keywords":["plata cu cardul"],"responses":{"standard":"Da."}}]}}`
	require.NoError(t, os.WriteFile(matcher.Path(), []byte(updated), 0o644))

	resp, body := doJSON(t, app, fiber.MethodPost, "/admin/faq/reload", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["categories"])
	assert.Equal(t, []string{services.EventFAQReload}, notifier.Events())

	assert.Nil(t, matcher.FindBestMatch("cum fac retur", 60))
	assert.NotNil(t, matcher.FindBestMatch("plata cu cardul", 60))
}

func TestReloadFailureKeepsCategories(t *testing.T) {
	app, matcher, notifier := newAdminApp(t)

	require.NoError(t, os.WriteFile(matcher.Path(), []byte(`{broken`), 0o644))

	resp, body := doJSON(t, app, fiber.MethodPost, "/admin/faq/reload", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.Len(t, matcher.Categories(), 2)
	assert.Empty(t, notifier.Events())
}

func TestClearCacheAndStats(t *testing.T) {
	app, matcher, _ := newAdminApp(t)

	matcher.FindBestMatch("retur", 60)
	matcher.FindBestMatch("retur", 60)

	resp, body := doJSON(t, app, fiber.MethodGet, "/admin/faq/stats", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["cache_hits"])
	assert.Equal(t, float64(1), body["cache_size"])

	resp, _ = doJSON(t, app, fiber.MethodPost, "/admin/faq/cache/clear", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, matcher.Stats().CacheSize)
}
