package apierrors

import (
	"fmt"
	"net/http"
)

// Error codes returned to API clients
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidPhoneNumber = "INVALID_PHONE_NUMBER"
	CodeUnknownPersona     = "UNKNOWN_PERSONA"
	CodeNotFound           = "NOT_FOUND"
	CodeQueueUnavailable   = "QUEUE_UNAVAILABLE"
	CodeDialFailed         = "DIAL_FAILED"
	CodeAIServiceError     = "AI_SERVICE_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

// APIError is an error with the HTTP status and code it should be reported with.
// Message is safe to show to clients; Err is only logged.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func BadRequest(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

func NotFound(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: code, Message: message}
}

// ServiceUnavailable wraps a dependency failure as a 503
func ServiceUnavailable(code, message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusServiceUnavailable, Code: code, Message: message, Err: err}
}

// InternalError is a sanitized 500 - never exposes internal details
func InternalError(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    "An internal error occurred. Please try again later.",
		Err:        err,
	}
}
