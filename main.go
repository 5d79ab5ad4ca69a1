package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"support-bot/config"
	"support-bot/faq"
	"support-bot/handlers"
	"support-bot/middleware"
	"support-bot/models"
	"support-bot/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	services.InitServices(db, cfg.DatabaseName)

	// Background jobs stop when main returns
	bgCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	services.StartSessionCleanup(bgCtx, time.Hour)

	// FAQ matcher
	matcher := faq.New(cfg.FAQConfigPath,
		faq.WithCache(faq.NewBoundedCache(cfg.FAQCacheMaxEntries)),
		faq.WithContact(cfg.ContactLine),
	)
	slog.Info("📚 FAQ matcher ready", "path", cfg.FAQConfigPath, "categories", len(matcher.Categories()), "threshold", cfg.FAQThreshold)

	wsManager := services.NewWebSocketManager()

	if cfg.FAQWatch {
		watcher, err := faq.NewWatcher(matcher, func(err error) {
			if err == nil {
				wsManager.Broadcast(services.EventFAQReload, matcher.Stats())
			}
		})
		if err != nil {
			slog.Error("Failed to create FAQ watcher", "error", err)
		} else if err := watcher.Start(); err != nil {
			slog.Error("Failed to start FAQ watcher", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	exchanges := services.NewMongoExchangeStore(services.GetDatabase())
	chatService := services.NewChatService(matcher, exchanges, wsManager, cfg.FAQThreshold)

	chatHandler := handlers.NewChatHandler(chatService)
	faqAdmin := handlers.NewFAQAdminHandler(matcher, wsManager)
	analyticsHandler := handlers.NewAnalyticsHandler(exchanges)
	wsHandler := handlers.NewWebSocketHandler(wsManager, chatService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		ExposeHeaders:    "Content-Length, Content-Type, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After",
		MaxAge:           86400, // 24 hours
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	auth := app.Group("/auth")
	auth.Post("/login", handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", middleware.RequireAuth, handlers.GetCurrentUser)
	auth.Get("/check", handlers.CheckSession)

	// Public chat API
	api := app.Group("/api")
	chatLimiter := services.NewRateLimiter(cfg.ChatRateLimit, time.Minute)
	chatLimiter.StartCleanup(bgCtx, 5*time.Minute)
	api.Post("/chat", middleware.RateLimit(chatLimiter), chatHandler.Chat)
	api.Post("/faq/match", middleware.RateLimit(chatLimiter), chatHandler.Match)
	api.Post("/faq/fallback", middleware.RateLimit(chatLimiter), chatHandler.Fallback)

	// Admin API (protected)
	admin := app.Group("/admin", middleware.RequireAuth)

	manage := middleware.RequirePermission(models.PermManageFAQ)
	admin.Get("/faq/categories", manage, faqAdmin.Categories)
	admin.Post("/faq/reload", manage, faqAdmin.Reload)
	admin.Post("/faq/cache/clear", manage, faqAdmin.ClearCache)
	admin.Get("/faq/stats", manage, faqAdmin.Stats)

	analytics := middleware.RequirePermission(models.PermViewAnalytics)
	admin.Get("/analytics/summary", analytics, analyticsHandler.Summary)
	admin.Get("/analytics/stats", analytics, analyticsHandler.Stats)
	admin.Get("/analytics/exchanges", analytics, analyticsHandler.RecentExchanges)
	admin.Get("/analytics/conversations", analytics, analyticsHandler.Conversations)
	admin.Get("/analytics/conversations/:sessionID", analytics, analyticsHandler.Conversation)
	admin.Get("/analytics/export-csv", analytics, analyticsHandler.ExportCSV)

	manageData := middleware.RequirePermission(models.PermManageData)
	admin.Delete("/analytics/conversations/:sessionID", manageData, analyticsHandler.DeleteConversation)
	admin.Post("/analytics/cleanup", manageData, analyticsHandler.Cleanup)

	// Live exchange feed
	admin.Get("/ws", analytics, handlers.WebSocketUpgrade, websocket.New(wsHandler.Handle))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"service":    "support-bot",
			"categories": len(matcher.Categories()),
		})
	})

	slog.Info("Server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
