package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// MongoDB configuration
	MongoURI     string
	DatabaseName string

	// Server configuration
	Port        string
	CORSOrigins string

	// FAQ matcher
	FAQConfigPath      string
	FAQThreshold       float64
	FAQCacheMaxEntries int
	FAQWatch           bool
	ContactLine        string

	// Requests per minute per client on /api/chat
	ChatRateLimit int
}

func LoadConfig() *Config {
	cfg := &Config{
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:       getEnv("MONGO_DB_NAME", "support_bot"),
		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:5173, http://localhost:3000"),
		FAQConfigPath:      getEnv("FAQ_CONFIG_PATH", "faq_config.json"),
		FAQThreshold:       getEnvFloat("FAQ_THRESHOLD", 60),
		FAQCacheMaxEntries: getEnvInt("FAQ_CACHE_MAX_ENTRIES", 0),
		FAQWatch:           getEnvBool("FAQ_WATCH", false),
		ContactLine:        getEnv("CONTACT_LINE", ""),
		ChatRateLimit:      getEnvInt("CHAT_RATE_LIMIT", 30),
	}

	if cfg.FAQThreshold < 0 || cfg.FAQThreshold > 100 {
		slog.Error("FAQ_THRESHOLD out of range, using default", "value", cfg.FAQThreshold)
		cfg.FAQThreshold = 60
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Error("Invalid integer in environment", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Error("Invalid number in environment", "key", key, "value", value)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
