package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/books-api/internal/config"
	"github.com/spec-kit/books-api/internal/persistence"
)

// LoginRateLimiter throttles login attempts per client IP with a fixed
// window counter in Redis, slowing brute-force credential guessing on the
// unauthenticated login route. Disabled (pass-through) when no Redis
// client is wired; a Redis outage also fails open so logins keep working.
func LoginRateLimiter(store *persistence.Redis, cfg config.AuthConfig, logger *zap.Logger) fiber.Handler {
	limit := cfg.LoginRatePerMinute
	window := time.Duration(cfg.LoginRateWindowSecs) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	return func(c *fiber.Ctx) error {
		if store == nil || store.Client == nil || limit <= 0 {
			return c.Next()
		}

		key := "login_attempts:" + c.IP()
		count, err := store.Client.Incr(c.Context(), key).Result()
		if err != nil {
			logger.Warn("login rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			store.Client.Expire(c.Context(), key, window)
		}

		if count > int64(limit) {
			ttl, _ := store.Client.TTL(c.Context(), key).Result()
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = int(window.Seconds())
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return fiber.NewError(fiber.StatusTooManyRequests,
				fmt.Sprintf("too many login attempts, retry in %ds", retryAfter))
		}
		return c.Next()
	}
}
