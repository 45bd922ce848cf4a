package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

// RateLimit is a fixed-window limiter keyed by client IP and KeyPrefix.
// It fails open when Redis is unreachable.
func RateLimit(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) fiber.Handler {
	if config.MaxRequests <= 0 {
		config.MaxRequests = 100
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		key := "ratelimit:" + config.KeyPrefix + ":" + c.IP()

		var incr *redis.IntCmd
		_, err := redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, config.Window)
			return nil
		})
		if err != nil {
			logger.Error("rate limit redis error", zap.Error(err))
			return c.Next()
		}

		count := incr.Val()
		remaining := config.MaxRequests - int(count)
		c.Set("X-RateLimit-Limit", strconv.Itoa(config.MaxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, remaining)))

		if count > int64(config.MaxRequests) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(config.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Rate limit exceeded",
			})
		}

		return c.Next()
	}
}
