package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a machine-readable error classification.
type ErrorCode string

const (
	ErrBadRequest   ErrorCode = "bad_request"
	ErrUnauthorized ErrorCode = "unauthorized"
	ErrForbidden    ErrorCode = "forbidden"
	ErrNotFound     ErrorCode = "not_found"
	ErrConflict     ErrorCode = "conflict"
	ErrValidation   ErrorCode = "validation_failed"
	ErrServerError  ErrorCode = "server_error"
	ErrTimeout      ErrorCode = "timeout"
	ErrNetwork      ErrorCode = "network"
	ErrUnavailable  ErrorCode = "unavailable"
	ErrUnknown      ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrServerError, ErrTimeout, ErrNetwork:
		return true
	default:
		return false
	}
}

// Suggestion returns a short hint for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'mottu auth login' to authenticate"
	case ErrForbidden:
		return "Your user lacks permission for this action"
	case ErrNotFound:
		return "Verify the ID, or check the candidate paths with 'mottu paths'"
	case ErrValidation, ErrBadRequest:
		return "Check the input values"
	case ErrConflict:
		return "The record changed on the server; list again and retry"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTimeout:
		return "The request timed out; raise --timeout or check connectivity"
	case ErrNetwork:
		return "Check the base URL and your network connection"
	case ErrUnavailable:
		return "This backend does not expose the endpoint"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404, 405:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError is the JSON form of an error printed with --output json.
type StructuredError struct {
	Code          ErrorCode      `json:"code"`
	Message       string         `json:"message"`
	Retryable     bool           `json:"retryable"`
	Suggestion    string         `json:"suggestion,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	AllowedValues []string       `json:"allowed_values,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type alias StructuredError
	return json.Marshal((*alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewValidationError reports a rejected input value along with what is accepted.
func NewValidationError(field, got string, allowed []string) *StructuredError {
	msg := fmt.Sprintf("invalid %s %q", field, got)
	suggestion := ErrValidation.Suggestion()
	if len(allowed) > 0 {
		msg = fmt.Sprintf("%s: must be one of %s", msg, strings.Join(allowed, ", "))
		suggestion = fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", "))
	}
	return &StructuredError{
		Code:          ErrValidation,
		Message:       msg,
		Suggestion:    suggestion,
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

// StructuredErrorFromError classifies any error returned by this package.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	if errors.Is(err, ErrRegistrationUnavailable) {
		return NewStructuredError(ErrUnavailable, err.Error())
	}

	var exhausted *RequestExhaustedError
	if errors.As(err, &exhausted) {
		if exhausted.Status == 0 && exhausted.Err != nil {
			return structuredNetworkError(err, exhausted.Err)
		}
		out := NewStructuredError(ErrorCodeFromStatus(exhausted.Status), err.Error())
		out.Context = map[string]any{
			"status_code": exhausted.Status,
			"attempts":    len(exhausted.Attempts),
		}
		return out
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		out := NewStructuredError(ErrorCodeFromStatus(apiErr.StatusCode), err.Error())
		out.Context = map[string]any{"status_code": apiErr.StatusCode}
		return out
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return NewStructuredError(ErrUnauthorized, err.Error())
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return structuredNetworkError(err, netErr)
	}

	return &StructuredError{Code: ErrUnknown, Message: err.Error()}
}

func structuredNetworkError(err, cause error) *StructuredError {
	var netErr *NetworkError
	if errors.As(cause, &netErr) && netErr.Timeout() {
		return NewStructuredError(ErrTimeout, err.Error())
	}
	return NewStructuredError(ErrNetwork, err.Error())
}
