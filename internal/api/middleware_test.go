package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/groups-service/internal/auth"
	"github.com/yakoovad/groups-service/internal/model"
)

func TestAuthMiddleware_UniformUnauthenticated(t *testing.T) {
	auth.TokenSecretKey = "test-secret-key"

	e := echo.New()
	protected := AuthMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	expiredToken, err := auth.GenerateToken(&model.Actor{UserID: "u1", TeamID: "team-a"}, -time.Hour)
	require.NoError(t, err)

	routes := []struct {
		method string
		target string
		header string
	}{
		{http.MethodPost, "/groups", ""},
		{http.MethodGet, "/groups", ""},
		{http.MethodGet, "/groups/info?group_id=g1", ""},
		{http.MethodPost, "/groups/update", ""},
		{http.MethodPost, "/groups/delete", ""},
		{http.MethodGet, "/groups/members?group_id=g1", ""},
		{http.MethodPost, "/groups", "Bearer not-a-token"},
		{http.MethodPost, "/groups", "Bearer " + expiredToken},
		{http.MethodPost, "/groups", "Basic dXNlcjpwYXNz"},
	}

	// Every unauthenticated request gets byte-identical payloads no matter
	// which operation was attempted or how the token was broken.
	const expectedBody = `{"error":{"code":"UNAUTHENTICATED","message":"authentication required"}}`

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.target, nil)
		if route.header != "" {
			req.Header.Set(echo.HeaderAuthorization, route.header)
		}
		rec := httptest.NewRecorder()

		err := protected(e.NewContext(req, rec))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.target)
		assert.JSONEq(t, expectedBody, rec.Body.String(), "%s %s", route.method, route.target)
	}
}

func TestAuthMiddleware_ResolvesActor(t *testing.T) {
	auth.TokenSecretKey = "test-secret-key"

	actor := &model.Actor{UserID: "u1", TeamID: "team-a", IsAdmin: true}
	token, err := auth.GenerateToken(actor, time.Hour)
	require.NoError(t, err)

	e := echo.New()

	var resolved *model.Actor
	protected := AuthMiddleware()(func(c echo.Context) error {
		resolved = ActorFromContext(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()

	require.NoError(t, protected(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, actor, resolved)
}
