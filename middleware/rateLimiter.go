package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// uploadLimiter throttles bulk uploads process-wide. An import parses the
// whole file synchronously, so a burst of uploads is a real load problem.
var uploadLimiter = rate.NewLimiter(rate.Limit(1), 3)

// UploadRateLimiter rejects uploads beyond the configured rate with 429.
func UploadRateLimiter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !uploadLimiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many uploads, slow down",
			})
		}
		return c.Next()
	}
}
