package middleware

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"support-bot/services"
)

// RateLimit limits requests per client IP using limiter
func RateLimit(limiter *services.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		ok, retryAfter := limiter.Allow(key)

		c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		if !ok {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"response": "Prea multe mesaje. Te rog încearcă din nou peste un minut.",
				"status":   "rate_limited",
			})
		}

		return c.Next()
	}
}
