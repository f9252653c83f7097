package handler

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"codecrafting/internal/auth"
	apperrors "codecrafting/internal/errors"
	"codecrafting/internal/middleware"
	"codecrafting/internal/ratelimit"
	"codecrafting/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService     service.AuthService
	jwtService      *auth.JWTService
	registerLimiter *ratelimit.Limiter
	loginLimiter    *ratelimit.Limiter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	authService service.AuthService,
	jwtService *auth.JWTService,
	registerLimiter *ratelimit.Limiter,
	loginLimiter *ratelimit.Limiter,
) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		jwtService:      jwtService,
		registerLimiter: registerLimiter,
		loginLimiter:    loginLimiter,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,contains=@"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisteredUser is the user projection returned after registration;
// the password hash is never included.
type RegisteredUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterResponse is the success body of the register endpoint.
type RegisterResponse struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// RateLimitedResponse is the 429 body with a retry hint.
type RateLimitedResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// ValidationErrorResponse carries per-rule violation details.
type ValidationErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} RegisterResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} RateLimitedResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	ip := clientIP(c)
	if !h.registerLimiter.IsAllowed(ip) {
		return rateLimited(c, h.registerLimiter, ip)
	}

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if weak, ok := err.(*service.WeakPasswordError); ok {
			return c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Error:   apperrors.ErrWeakPassword.Error(),
				Code:    "WEAK_PASSWORD",
				Details: weak.Reasons,
			})
		}
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, RegisterResponse{
		Message: "registration successful",
		User: RegisteredUser{
			ID:        user.ID.String(),
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role.Normalized(),
			CreatedAt: user.CreatedAt,
		},
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} auth.SessionView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} RateLimitedResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	ip := clientIP(c)
	if !h.loginLimiter.IsAllowed(ip) {
		return rateLimited(c, h.loginLimiter, ip)
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.authService.Authorize(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	token, identity, err := h.authService.SignIn(c.Request().Context(), service.CredentialsSignIn{Identity: *identity})
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	middleware.SetSessionCookie(c, token, h.jwtService.MaxAge())

	return c.JSON(http.StatusOK, auth.SessionView{
		User: auth.SessionUser{
			ID:    identity.ID,
			Email: identity.Email,
			Name:  identity.Name,
			Role:  identity.Role,
		},
	})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Session godoc
// @Summary Return the current session view
// @Tags auth
// @Produce json
// @Success 200 {object} auth.SessionView
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "not authenticated",
			Code:  "UNAUTHENTICATED",
		})
	}

	claims, err := h.jwtService.Verify(cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "not authenticated",
			Code:  "UNAUTHENTICATED",
		})
	}

	return c.JSON(http.StatusOK, auth.ToSessionView(claims))
}

func rateLimited(c echo.Context, limiter *ratelimit.Limiter, ip string) error {
	retry := int(math.Ceil(limiter.ResetTime(ip).Seconds()))
	return c.JSON(http.StatusTooManyRequests, RateLimitedResponse{
		Error:             "too many requests, try again later",
		Code:              "RATE_LIMITED",
		RetryAfterSeconds: retry,
	})
}

// clientIP identifies the caller for rate limiting: first entry of
// X-Forwarded-For, else X-Real-IP, else a sentinel.
func clientIP(c echo.Context) string {
	if forwarded := c.Request().Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if real := c.Request().Header.Get("X-Real-IP"); real != "" {
		return real
	}
	return "unknown"
}
