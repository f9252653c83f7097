package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecrafting/internal/auth"
)

// stubRefresher re-issues tokens without touching any store.
type stubRefresher struct {
	jwtService *auth.JWTService
	fail       bool
}

func (s *stubRefresher) RefreshSession(_ context.Context, claims *auth.SessionClaims) (string, error) {
	if s.fail {
		return "", assert.AnError
	}
	return s.jwtService.Refresh(claims)
}

func newTestGuard(t *testing.T) (*Guard, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewGuard(jwtService, &stubRefresher{jwtService: jwtService}), jwtService
}

func performGuarded(guard *Guard, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()

	handler := guard.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	_ = handler(e.NewContext(req, rec))
	return rec
}

func sessionCookie(t *testing.T, jwtService *auth.JWTService, role string) *http.Cookie {
	t.Helper()
	token, err := jwtService.Issue(auth.Identity{
		ID:    "user-1",
		Email: "user@test.fr",
		Name:  "User",
		Role:  role,
	}, auth.ProviderCredentials)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: token}
}

func TestGuardPublicPathAlwaysPasses(t *testing.T) {
	guard, _ := newTestGuard(t)

	for _, path := range []string{"/", "/login", "/register", "/about", "/api/auth/register", "/login/reset"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := performGuarded(guard, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s should be public", path)
	}
}

func TestGuardLoginPassesWithGarbageToken(t *testing.T) {
	guard, _ := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	rec := performGuarded(guard, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	guard, _ := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := performGuarded(guard, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestGuardRedirectsInvalidTokenToLogin(t *testing.T) {
	guard, _ := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-token"})
	rec := performGuarded(guard, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestGuardAllowsAuthenticatedAnyRole(t *testing.T) {
	guard, jwtService := newTestGuard(t)

	for _, role := range []string{"member", "admin"} {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(sessionCookie(t, jwtService, role))
		rec := performGuarded(guard, req)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s should reach /dashboard", role)
	}
}

func TestGuardRedirectsMemberFromAdminToHome(t *testing.T) {
	guard, jwtService := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/x", nil)
	req.AddCookie(sessionCookie(t, jwtService, "member"))
	rec := performGuarded(guard, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestGuardAllowsAdminOnAdminPath(t *testing.T) {
	guard, jwtService := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/x", nil)
	req.AddCookie(sessionCookie(t, jwtService, "admin"))
	rec := performGuarded(guard, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardSlidesSessionCookie(t *testing.T) {
	guard, jwtService := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, jwtService, "member"))
	rec := performGuarded(guard, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			refreshed = cookie
		}
	}
	require.NotNil(t, refreshed, "guard should re-issue the session cookie")
	assert.True(t, refreshed.HttpOnly)

	claims, err := jwtService.Verify(refreshed.Value)
	require.NoError(t, err)
	assert.Equal(t, "member", claims.Role)
}

func TestGuardRefreshFailureKeepsRequestAlive(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	guard := NewGuard(jwtService, &stubRefresher{jwtService: jwtService, fail: true})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, jwtService, "member"))
	rec := performGuarded(guard, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardExposesSessionToHandlers(t *testing.T) {
	guard, jwtService := newTestGuard(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, jwtService, "member"))
	rec := httptest.NewRecorder()

	var seen *auth.SessionClaims
	handler := guard.Middleware()(func(c echo.Context) error {
		claims, ok := SessionFromContext(c)
		require.True(t, ok)
		seen = claims
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(e.NewContext(req, rec)))

	require.NotNil(t, seen)
	assert.Equal(t, "user@test.fr", seen.Email)
}
