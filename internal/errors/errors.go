package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("all fields are required")
	// ErrPasswordTooLong is returned when a new password exceeds what the hasher accepts.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrDuplicateIdentifier is returned when the email or phone is already registered.
	ErrDuplicateIdentifier = errors.New("email or phone already exists")
	// ErrInvalidCredentials is returned for an unknown identifier and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a profile update matches no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRefreshToken is returned when refresh token is invalid, expired or revoked.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrDealsUnavailable is returned when the deals file is missing or corrupt.
	ErrDealsUnavailable = errors.New("failed to load deals")
	// ErrHashing is returned when the password could not be hashed.
	ErrHashing = errors.New("error hashing password")
	// ErrPersistence is returned for database failures.
	ErrPersistence = errors.New("database error")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
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
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched
// with errors.Is; anything unknown becomes a generic 500 so internals never leak.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, "All fields are required", "VALIDATION_ERROR")
	case errors.Is(err, ErrPasswordTooLong):
		return NewHTTPError(http.StatusBadRequest, "Password must be at most 72 bytes", "VALIDATION_ERROR")
	case errors.Is(err, ErrDuplicateIdentifier):
		return NewHTTPError(http.StatusBadRequest, "Email or phone already exists", "DUPLICATE_IDENTIFIER")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, "User not found", "NOT_FOUND")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token", "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrDealsUnavailable):
		return NewHTTPError(http.StatusInternalServerError, "Failed to load deals", "DEALS_UNAVAILABLE")
	case errors.Is(err, ErrHashing):
		return NewHTTPError(http.StatusInternalServerError, "Error hashing password", "HASHING_ERROR")
	case errors.Is(err, ErrPersistence):
		return NewHTTPError(http.StatusInternalServerError, "Database error", "DATABASE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
	}
}
