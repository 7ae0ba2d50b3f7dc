package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/utils"
)

// RateLimiter is a fixed-window counter kept in Redis. With no Redis client
// every request passes.
type RateLimiter struct {
	Redis  *redis.Client
	Prefix string
	Limit  int
	Window time.Duration
	logger *zap.Logger
}

func NewRateLimiter(r *redis.Client, prefix string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{Redis: r, Prefix: prefix, Limit: limit, Window: window, logger: logger}
}

// ByIP limits requests per client address.
func (r *RateLimiter) ByIP() fiber.Handler {
	return r.MiddlewareByKey(func(c *fiber.Ctx) string { return c.IP() })
}

func (r *RateLimiter) MiddlewareByKey(keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r.Redis == nil || r.Limit <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 500*time.Millisecond)
		defer cancel()

		redisKey := fmt.Sprintf("%s:%s", r.Prefix, keyFunc(c))
		count, err := r.Redis.Incr(ctx, redisKey).Result()
		if err != nil {
			// Redis trouble must not lock users out of signup.
			r.logger.Warn("rate limiter unavailable", zap.String("key", redisKey), zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			r.Redis.Expire(ctx, redisKey, r.Window)
		}
		if count > int64(r.Limit) {
			if ttl, err := r.Redis.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
				c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(ttl.Seconds())))
			}
			return utils.JSONError(c, fiber.StatusTooManyRequests, "Too many requests, please try again later")
		}
		return c.Next()
	}
}
