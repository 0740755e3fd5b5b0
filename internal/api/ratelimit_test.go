package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/groups-service/internal/model"
)

func rateLimitedCall(t *testing.T, handler echo.HandlerFunc, actor *model.Actor) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(actorContextKey, actor)
	}

	require.NoError(t, handler(c))
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	handler := RateLimitMiddleware(client, 2, time.Minute)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	actor := &model.Actor{UserID: "u1", TeamID: "team-a"}

	for i := 0; i < 2; i++ {
		rec := rateLimitedCall(t, handler, actor)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := rateLimitedCall(t, handler, actor)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"RATE_LIMITED","message":"too many requests"}}`, rec.Body.String())

	// A different actor has its own window.
	rec = rateLimitedCall(t, handler, &model.Actor{UserID: "u2", TeamID: "team-a"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// The window expiring resets the counter.
	mr.FastForward(2 * time.Minute)
	rec = rateLimitedCall(t, handler, actor)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	handler := RateLimitMiddleware(client, 1, time.Minute)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		rec := rateLimitedCall(t, handler, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	handler := RateLimitMiddleware(nil, 0, time.Minute)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := rateLimitedCall(t, handler, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
