package api

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Op: "delete user", StatusCode: 404, Body: "Not found"}
	if err.Error() != "delete user failed (status 404): Not found" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	err = &APIError{StatusCode: 500}
	if err.Error() != "API request failed (status 500): Internal Server Error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestRequestExhaustedError_Error(t *testing.T) {
	err := &RequestExhaustedError{Status: 404, Body: "not found"}
	if err.Error() != "request failed (status 404): not found" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	err = &RequestExhaustedError{Status: 502}
	if err.Error() != "request failed (status 502)" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{Reason: "missing token"}
	if !IsAuthError(err) {
		t.Error("IsAuthError should return true")
	}
	if err.Error() != "authentication error: missing token" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("x"), 0},
		{"exhausted", &RequestExhaustedError{Status: 404}, 404},
		{"wrapped api error", fmt.Errorf("op: %w", &APIError{StatusCode: 403}), 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	err := &NetworkError{Method: "GET", URL: "http://x/api", Err: context.DeadlineExceeded}
	if !err.Timeout() {
		t.Error("deadline should be reported as a timeout")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("NetworkError should unwrap to its cause")
	}

	refused := &NetworkError{Method: "GET", URL: "http://x/api", Err: errors.New("connection refused")}
	if refused.Timeout() {
		t.Error("refused connection is not a timeout")
	}
	if refused.Error() != "GET http://x/api: connection refused" {
		t.Errorf("unexpected error message: %s", refused.Error())
	}
}

func TestIsNotFoundError(t *testing.T) {
	if !IsNotFoundError(&APIError{StatusCode: 404}) {
		t.Error("404 APIError should be not found")
	}
	if IsNotFoundError(&APIError{StatusCode: 500}) {
		t.Error("500 APIError should not be not found")
	}
}
