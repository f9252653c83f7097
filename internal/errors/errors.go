package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned for any failed credential login;
	// it deliberately does not distinguish unknown email, OAuth-only
	// account, or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already
	// owns a password account.
	ErrEmailTaken = errors.New("this email is already in use")
	// ErrEmailLinkedOAuth is returned when registering an email that is
	// linked to an OAuth account. Disclosing this is a deliberate UX
	// exception to enumeration parity.
	ErrEmailLinkedOAuth = errors.New("this email is linked to a Google account, sign in with Google instead")
	// ErrSignInDenied is returned when the OAuth sign-in policy rejects
	// a candidate.
	ErrSignInDenied = errors.New("sign-in not allowed for this account")
	// ErrWeakPassword is returned when a password fails strength rules.
	ErrWeakPassword = errors.New("password does not meet strength requirements")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrEmailLinkedOAuth):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_LINKED_OAUTH")
	case errors.Is(err, ErrSignInDenied):
		return NewHTTPError(http.StatusForbidden, err.Error(), "SIGNIN_DENIED")
	case errors.Is(err, ErrWeakPassword):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "WEAK_PASSWORD")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
