package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"codecrafting/internal/auth"
)

// sessionContextKey is the echo context key under which verified session
// claims are stored for downstream handlers.
const sessionContextKey = "session"

// defaultPublicPaths require no authentication. "/" matches exactly; every
// other entry matches exactly or as a prefix.
var defaultPublicPaths = []string{
	"/",
	"/login",
	"/register",
	"/about",
	"/api/auth",
	// Bearer-token API routes enforce their own authentication; the
	// cookie guard never redirects an API client to the login page.
	"/api/me",
	"/healthz",
	"/swagger",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
}

// defaultAdminPaths additionally require the admin role.
var defaultAdminPaths = []string{
	"/admin",
}

// SessionRefresher re-issues a session token from verified claims,
// optionally revalidating the embedded role.
type SessionRefresher interface {
	RefreshSession(ctx context.Context, claims *auth.SessionClaims) (string, error)
}

// Guard classifies each request as public, auth-required or
// role-restricted and enforces the decision before any protected handler
// runs. Verification is self-contained from the cookie token; no
// server-side session storage is consulted.
type Guard struct {
	jwtService  *auth.JWTService
	refresher   SessionRefresher
	publicPaths []string
	adminPaths  []string
}

// NewGuard builds the route guard with the default path classification.
func NewGuard(jwtService *auth.JWTService, refresher SessionRefresher) *Guard {
	return &Guard{
		jwtService:  jwtService,
		refresher:   refresher,
		publicPaths: defaultPublicPaths,
		adminPaths:  defaultAdminPaths,
	}
}

// Middleware returns the echo middleware enforcing the guard.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if matchesAny(path, g.publicPaths) {
				return next(c)
			}

			claims := g.verifyRequest(c)
			if claims == nil {
				return redirectToLogin(c, path)
			}

			if matchesAny(path, g.adminPaths) && claims.Role != "admin" {
				return c.Redirect(http.StatusFound, "/")
			}

			// Sliding session: re-issue the cookie on every verified
			// request. A refresh failure keeps the current cookie.
			if refreshed, err := g.refresher.RefreshSession(c.Request().Context(), claims); err == nil {
				SetSessionCookie(c, refreshed, g.jwtService.MaxAge())
			}

			c.Set(sessionContextKey, claims)
			return next(c)
		}
	}
}

// verifyRequest extracts and verifies the session cookie, failing closed:
// any error or panic during verification reads as unauthenticated.
func (g *Guard) verifyRequest(c echo.Context) (claims *auth.SessionClaims) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger().Errorf("session verification panic: %v", r)
			claims = nil
		}
	}()

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	verified, err := g.jwtService.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	return verified
}

// SessionFromContext returns the claims the guard attached, if any.
func SessionFromContext(c echo.Context) (*auth.SessionClaims, bool) {
	claims, ok := c.Get(sessionContextKey).(*auth.SessionClaims)
	return claims, ok
}

func redirectToLogin(c echo.Context, requested string) error {
	target := "/login?callbackUrl=" + url.QueryEscape(requested)
	return c.Redirect(http.StatusFound, target)
}

// matchesAny reports whether path matches one of the configured entries.
// "/" matches only exactly; other entries match exactly or as a prefix.
func matchesAny(path string, entries []string) bool {
	for _, entry := range entries {
		if path == entry {
			return true
		}
		if entry != "/" && strings.HasPrefix(path, entry) {
			return true
		}
	}
	return false
}
