package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "MONGO_DB_NAME", "PORT", "FAQ_CONFIG_PATH", "FAQ_THRESHOLD", "FAQ_WATCH", "CHAT_RATE_LIMIT", "FAQ_CACHE_MAX_ENTRIES"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "support_bot", cfg.DatabaseName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "faq_config.json", cfg.FAQConfigPath)
	assert.Equal(t, 60.0, cfg.FAQThreshold)
	assert.Equal(t, 0, cfg.FAQCacheMaxEntries)
	assert.False(t, cfg.FAQWatch)
	assert.Equal(t, 30, cfg.ChatRateLimit)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("FAQ_CONFIG_PATH", "/etc/bot/faq.yaml")
	t.Setenv("FAQ_THRESHOLD", "72.5")
	t.Setenv("FAQ_WATCH", "true")
	t.Setenv("CHAT_RATE_LIMIT", "5")
	t.Setenv("FAQ_CACHE_MAX_ENTRIES", "1000")

	cfg := LoadConfig()
	assert.Equal(t, "/etc/bot/faq.yaml", cfg.FAQConfigPath)
	assert.Equal(t, 72.5, cfg.FAQThreshold)
	assert.True(t, cfg.FAQWatch)
	assert.Equal(t, 5, cfg.ChatRateLimit)
	assert.Equal(t, 1000, cfg.FAQCacheMaxEntries)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FAQ_THRESHOLD", "150")
	t.Setenv("CHAT_RATE_LIMIT", "lots")

	cfg := LoadConfig()
	assert.Equal(t, 60.0, cfg.FAQThreshold)
	assert.Equal(t, 30, cfg.ChatRateLimit)
}
