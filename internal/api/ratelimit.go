package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/yakoovad/groups-service/internal/service"
	"github.com/yakoovad/groups-service/pkg/logger"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "groups:ratelimit:"

// RateLimitMiddleware enforces a fixed-window request limit per caller,
// counted in Redis. When Redis is unavailable the limiter fails open: the
// request proceeds and the error is logged.
func RateLimitMiddleware(client *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limit <= 0 {
				return next(c)
			}

			key := rateLimitKeyPrefix + callerKey(c)
			ctx := c.Request().Context()
			l := logger.FromContext(ctx)

			counter, err := client.Incr(ctx, key).Result()
			if err != nil {
				l.Error("rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if counter == 1 {
				if err = client.Expire(ctx, key, window).Err(); err != nil {
					l.Error("failed to set rate limit window", zap.Error(err))
				}
			}

			if counter > int64(limit) {
				l.Warn("rate limit exceeded",
					zap.String("key", key),
					zap.Int64("count", counter),
					zap.Int("limit", limit))

				response := struct {
					Error *service.Error `json:"error"`
				}{Error: service.NewError(service.ErrorCodeRateLimited, "too many requests")}

				return c.JSON(http.StatusTooManyRequests, response)
			}

			return next(c)
		}
	}
}

// callerKey prefers the authenticated actor so clients behind one proxy do
// not share a window; unauthenticated requests fall back to the client IP.
func callerKey(c echo.Context) string {
	if actor := ActorFromContext(c); actor != nil {
		return actor.UserID
	}
	return c.RealIP()
}
