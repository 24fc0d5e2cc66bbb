package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrProjectNotFound is returned when a project is not found.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNotProjectOwner is returned when a user mutates someone else's project.
	ErrNotProjectOwner = errors.New("only the project owner may change this project")
	// ErrProjectLocked is returned when a funded or completed project is edited.
	ErrProjectLocked = errors.New("project can no longer be edited")
	// ErrInvalidTransition is returned when a lifecycle transition is not allowed.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrNothingToUpdate is returned when an edit carries no changes.
	ErrNothingToUpdate = errors.New("no changes supplied")
	// ErrAccountNotApproved is returned when a pending or rejected user calls a gated endpoint.
	ErrAccountNotApproved = errors.New("account is not approved")
	// ErrForbidden is returned when the caller's role does not permit the action.
	ErrForbidden = errors.New("forbidden")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
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
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrProjectNotFound):
		return NewHTTPError(http.StatusNotFound, ErrProjectNotFound.Error(), "PROJECT_NOT_FOUND")
	case errors.Is(err, ErrNotProjectOwner):
		return NewHTTPError(http.StatusForbidden, ErrNotProjectOwner.Error(), "NOT_PROJECT_OWNER")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrAccountNotApproved):
		return NewHTTPError(http.StatusForbidden, ErrAccountNotApproved.Error(), "ACCOUNT_NOT_APPROVED")
	case errors.Is(err, ErrProjectLocked):
		return NewHTTPError(http.StatusConflict, ErrProjectLocked.Error(), "PROJECT_LOCKED")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrNothingToUpdate):
		return NewHTTPError(http.StatusBadRequest, ErrNothingToUpdate.Error(), "NOTHING_TO_UPDATE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
