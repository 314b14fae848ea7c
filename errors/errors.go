package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	// Screen failures. Each is terminal for the fetch attempt and is shown
	// to the user as a blocking alert.
	PermissionDeniedError    ErrorType = "PERMISSION_DENIED"
	LocationUnavailableError ErrorType = "LOCATION_UNAVAILABLE"
	CityNotFoundError        ErrorType = "CITY_NOT_FOUND"
	NetworkError             ErrorType = "NETWORK_ERROR"

	ValidationError  ErrorType = "VALIDATION_ERROR"
	RateLimitError   ErrorType = "RATE_LIMIT_EXCEEDED"
	ServerError      ErrorType = "SERVER_ERROR"
	UnavailableError ErrorType = "SERVICE_UNAVAILABLE"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status to answer with, falling back to the
// mapping for the error type.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func PermissionDenied(detail string) *AppError {
	return New(PermissionDeniedError, "Location permission denied", detail)
}

func LocationUnavailable(err error) *AppError {
	return Wrap(err, LocationUnavailableError, "Current location unavailable")
}

func CityNotFound(city string) *AppError {
	return &AppError{
		Type:       CityNotFoundError,
		Message:    "City not found",
		Detail:     fmt.Sprintf("City: %s", city),
		HTTPStatus: http.StatusNotFound,
	}
}

// Network wraps a transport failure or an unusable upstream response.
func Network(err error, message string) *AppError {
	return Wrap(err, NetworkError, message)
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("Retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or
// ServerError when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ServerError
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == errType
}

// IsScreenFailure reports whether the type is one of the four failures a
// fetch attempt can end with.
func IsScreenFailure(errType ErrorType) bool {
	switch errType {
	case PermissionDeniedError, LocationUnavailableError, CityNotFoundError, NetworkError:
		return true
	}
	return false
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case PermissionDeniedError:
		return http.StatusForbidden
	case CityNotFoundError:
		return http.StatusNotFound
	case LocationUnavailableError, NetworkError:
		return http.StatusBadGateway
	case RateLimitError:
		return http.StatusTooManyRequests
	case UnavailableError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
