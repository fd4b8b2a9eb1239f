package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRegistrationUnavailable is returned when no registration endpoint accepted
// the request.
var ErrRegistrationUnavailable = errors.New("registration is not available on this API; ask an administrator to create the user")

// NetworkError reports a request that never produced an HTTP response:
// DNS failure, refused connection, abort or timeout.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was aborted by a deadline.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// Attempt records the outcome of one candidate path.
type Attempt struct {
	Path   string
	Status int
	Err    error
}

// RequestExhaustedError is returned by TryPaths when every candidate path
// failed. Status and Body describe the last attempt.
type RequestExhaustedError struct {
	Status   int
	Body     string
	Attempts []Attempt
	// Err is the transport error of the last attempt, if it had one.
	Err error
}

func (e *RequestExhaustedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed (status %d)", e.Status)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Body)
}

func (e *RequestExhaustedError) Unwrap() error {
	return e.Err
}

// APIError is a non-success response from a fixed-path endpoint.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	op := e.Op
	if op == "" {
		op = "API request"
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s failed (status %d): %s", op, e.StatusCode, body)
}

func newAPIError(op string, resp *Response) *APIError {
	return &APIError{Op: op, StatusCode: resp.StatusCode, Body: resp.Text()}
}

// AuthError represents an authentication failure detected client side.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Reason)
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var exhausted *RequestExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted.Status
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAuthError checks if the error is an authentication error, either detected
// locally or reported by the server with 401.
func IsAuthError(err error) bool {
	var e *AuthError
	if errors.As(err, &e) {
		return true
	}
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsNetworkError checks if the error is a transport failure.
func IsNetworkError(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}
