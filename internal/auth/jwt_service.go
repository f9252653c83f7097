package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Provider names carried in session tokens.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// ErrInvalidToken is returned when a session token fails verification for
// any reason: bad signature, expiry, or malformed claims.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the minimal view of an authenticated user embedded in tokens.
// Role is always the normalized lowercase form.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// SessionClaims is the typed claim set of a session token.
type SessionClaims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// SessionView is the subset of a session exposed to callers and the UI.
type SessionView struct {
	User SessionUser `json:"user"`
}

// SessionUser mirrors the user object the UI consumes.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// JWTService issues and verifies session tokens. Tokens are stateless and
// self-contained; nothing is stored server-side.
type JWTService struct {
	secret []byte
	maxAge time.Duration
}

// NewJWTService creates a token service signing with secret. maxAge bounds
// token validity from issuance.
func NewJWTService(secret string, maxAge time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

// MaxAge returns the configured session lifetime.
func (s *JWTService) MaxAge() time.Duration {
	return s.maxAge
}

// Issue signs a fresh session token for identity.
func (s *JWTService) Issue(identity Identity, provider string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:   identity.ID,
		Email:    identity.Email,
		Name:     identity.Name,
		Role:     identity.Role,
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token string and returns its claims.
func (s *JWTService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Refresh re-issues a token from verified claims, sliding the expiry
// forward by the full session lifetime. The identity claims are preserved
// verbatim; role revalidation is a caller concern.
func (s *JWTService) Refresh(claims *SessionClaims) (string, error) {
	return s.Issue(Identity{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, claims.Provider)
}

// ToSessionView projects claims into the caller-facing session shape,
// stripping internal-only fields.
func ToSessionView(claims *SessionClaims) SessionView {
	return SessionView{
		User: SessionUser{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  claims.Name,
			Role:  claims.Role,
		},
	}
}
