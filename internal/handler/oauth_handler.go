package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"codecrafting/internal/auth"
	apperrors "codecrafting/internal/errors"
	"codecrafting/internal/middleware"
	"codecrafting/internal/oauth"
	"codecrafting/internal/service"
)

const (
	stateCookieName    = "oauth_state"
	callbackCookieName = "oauth_callback"
	stateCookieMaxAge  = 10 * time.Minute
)

// Exchanger abstracts the provider handshake behind the callback flow.
// *oauth.GoogleClient is the production implementation.
type Exchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// OAuthHandler drives the Google sign-in flow: consent redirect, callback
// exchange, then delegation to the auth service's sign-in policy.
type OAuthHandler struct {
	google      Exchanger
	authService service.AuthService
	jwtService  *auth.JWTService
}

// NewOAuthHandler creates a new OAuth handler.
func NewOAuthHandler(google Exchanger, authService service.AuthService, jwtService *auth.JWTService) *OAuthHandler {
	return &OAuthHandler{
		google:      google,
		authService: authService,
		jwtService:  jwtService,
	}
}

// Start godoc
// @Summary Redirect to Google's consent page
// @Tags auth
// @Param callbackUrl query string false "Path to return to after sign-in"
// @Success 302
// @Router /auth/google [get]
func (h *OAuthHandler) Start(c echo.Context) error {
	state := uuid.New().String()

	setFlowCookie(c, stateCookieName, state)
	if callback := c.QueryParam("callbackUrl"); callback != "" {
		setFlowCookie(c, callbackCookieName, callback)
	}

	return c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// Callback godoc
// @Summary Complete the Google sign-in flow
// @Tags auth
// @Param state query string true "Opaque state issued at flow start"
// @Param code query string true "Authorization code"
// @Success 302
// @Router /auth/callback/google [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	if c.QueryParam("error") != "" {
		return redirectWithError(c, "AccessDenied")
	}

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return redirectWithError(c, "AccessDenied")
	}
	clearFlowCookie(c, stateCookieName)

	code := c.QueryParam("code")
	if code == "" {
		return redirectWithError(c, "AccessDenied")
	}

	profile, err := h.google.Exchange(c.Request().Context(), code)
	if err != nil {
		c.Logger().Errorf("oauth exchange failed: %v", err)
		return redirectWithError(c, "OAuthCallback")
	}

	token, _, err := h.authService.SignIn(c.Request().Context(), service.OAuthSignIn{
		Profile: service.OAuthProfile{
			Subject: profile.Subject,
			Email:   profile.Email,
			Name:    profile.Name,
		},
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrSignInDenied) {
			return redirectWithError(c, "AccessDenied")
		}
		c.Logger().Errorf("oauth sign-in failed: %v", err)
		return redirectWithError(c, "OAuthCallback")
	}

	middleware.SetSessionCookie(c, token, h.jwtService.MaxAge())

	target := "/"
	if callbackCookie, err := c.Cookie(callbackCookieName); err == nil && callbackCookie.Value != "" {
		target = safeCallbackTarget(callbackCookie.Value)
		clearFlowCookie(c, callbackCookieName)
	}

	return c.Redirect(http.StatusFound, target)
}

// safeCallbackTarget accepts only same-origin path targets. Absolute URLs
// and protocol-relative forms ("//host", "/\host") would bounce a freshly
// authenticated user to a foreign origin, so they fall back to home.
func safeCallbackTarget(target string) string {
	if strings.HasPrefix(target, "/") &&
		!strings.HasPrefix(target, "//") &&
		!strings.HasPrefix(target, "/\\") {
		return target
	}
	return "/"
}

func redirectWithError(c echo.Context, code string) error {
	return c.Redirect(http.StatusFound, "/login?error="+code)
}

func setFlowCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(stateCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearFlowCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
