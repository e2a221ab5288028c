package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit is a fixed-window per-IP limiter backed by Redis INCR/EXPIRE.
// When Redis is unreachable the request passes through.
func RateLimit(rdb *redis.Client, windowSec int, max int) fiber.Handler {
	window := time.Duration(windowSec) * time.Second

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%d", c.IP(), time.Now().Unix()/int64(windowSec))

		count, err := rdb.Incr(c.Context(), key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(c.Context(), key, window)
		}
		if count > int64(max) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, slow down",
			})
		}
		return c.Next()
	}
}
