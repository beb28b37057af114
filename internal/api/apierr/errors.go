package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/auth"
	"github.com/mcoot/stationscore/internal/services/users"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeStationNotFound    = "STATION_NOT_FOUND"
	CodeLogEntryNotFound   = "LOG_ENTRY_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeLogEntryConflict   = "LOG_ENTRY_CONFLICT"
	CodeNumberTaken        = "NUMBER_TAKEN"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeCodeTaken          = "CODE_TAKEN"
	CodeLastAdmin          = "LAST_ADMIN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeStorageError       = "STORAGE_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Not found, most specific first
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrStationNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeStationNotFound, "Station not found"}}
	case errors.Is(err, model.ErrLogEntryNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeLogEntryNotFound, "Log entry not found"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}

	// Validation messages are written for the client
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	// Conflicts
	case errors.Is(err, model.ErrLogEntryConflict):
		return &httpError{http.StatusConflict, APIError{CodeLogEntryConflict, "Log entry was modified concurrently, retry"}}
	case errors.Is(err, model.ErrPlayerNumberTaken):
		return &httpError{http.StatusConflict, APIError{CodeNumberTaken, "Player number already in use"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, model.ErrCodeTaken), errors.Is(err, users.ErrCodeExhausted):
		return &httpError{http.StatusConflict, APIError{CodeCodeTaken, "Login code already in use"}}
	case errors.Is(err, model.ErrLastAdmin):
		return &httpError{http.StatusConflict, APIError{CodeLastAdmin, "The last administrator cannot be removed"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Conflict"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid credentials"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	case errors.Is(err, model.ErrStorage):
		return &httpError{http.StatusInternalServerError, APIError{CodeStorageError, "Storage unavailable, try again"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Administrator rank required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
