package apierrors

import (
	"context"
	"errors"
	"strings"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/clients/livekit"
	"outbound-caller/internal/outbound"
)

// MapError converts domain errors to APIErrors.
//
// If the error is already an APIError, it returns it as-is.
// If the error is unknown, it returns a sanitized InternalError (500).
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, outbound.ErrInvalidPhoneNumber):
		return BadRequest(CodeInvalidPhoneNumber, "phone_number must be in E.164 format, e.g. +14155550100")

	case errors.Is(err, agent.ErrUnknownPersona):
		return BadRequest(CodeUnknownPersona, "Unknown persona. Valid values: "+strings.Join(agent.PersonaKeys(), ", "))

	case errors.Is(err, livekit.ErrDialFailed):
		return ServiceUnavailable(CodeDialFailed, "The call could not be placed.", err)

	case errors.Is(err, context.DeadlineExceeded):
		return ServiceUnavailable(CodeQueueUnavailable, "The call queue is full. Please try again later.", err)

	default:
		return mapExternalServiceError(err)
	}
}

// mapExternalServiceError identifies provider failures by message content.
func mapExternalServiceError(err error) *APIError {
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "kafka") || strings.Contains(errMsg, "worker pool") {
		return ServiceUnavailable(
			CodeQueueUnavailable,
			"The call queue is temporarily unavailable. Please try again later.",
			err,
		)
	}

	if strings.Contains(errMsg, "openai") || strings.Contains(errMsg, "gemini") {
		return ServiceUnavailable(
			CodeAIServiceError,
			"AI service is temporarily unavailable. Please try again later.",
			err,
		)
	}

	return InternalError(err)
}
