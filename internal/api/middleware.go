package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yakoovad/groups-service/internal/auth"
	"github.com/yakoovad/groups-service/internal/model"
	"github.com/yakoovad/groups-service/internal/service"
	"github.com/yakoovad/groups-service/pkg/logger"
	"go.uber.org/zap"
)

const actorContextKey = "actor"

func ZapLoggerMiddleware(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			reqLogger := l.With(
				zap.String("request_id", requestID),
			)

			c.Set("logger", reqLogger)

			ctx := logger.WithLogger(req.Context(), reqLogger)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			latency := time.Since(start)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
				zap.Int64("bytes_in", req.ContentLength),
				zap.Int64("bytes_out", res.Size),
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				reqLogger.Error("request failed", fields...)
			} else {
				reqLogger.Info("request completed", fields...)
			}

			return err
		}
	}
}

// AuthMiddleware resolves the bearer token to an actor and stores it in the
// echo context. Every failure yields the same payload so an unauthenticated
// caller cannot tell which operation it hit.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return unauthenticated(c)
			}

			actor, err := auth.ResolveActor(token)
			if err != nil {
				logger.FromContext(c.Request().Context()).
					Warn("failed to resolve actor", zap.Error(err))
				return unauthenticated(c)
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// ActorFromContext returns the actor resolved by AuthMiddleware, or nil.
func ActorFromContext(c echo.Context) *model.Actor {
	if actor, ok := c.Get(actorContextKey).(*model.Actor); ok {
		return actor
	}
	return nil
}

func unauthenticated(c echo.Context) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: service.ErrUnauthenticated()}

	return c.JSON(http.StatusUnauthorized, response)
}
