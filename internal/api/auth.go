package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// tokenKeys are the names backends use for the issued token, in priority order.
var tokenKeys = []string{"token", "accessToken", "access_token", "jwt"}

// LoginResult is the outcome of a successful login or registration.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the first login endpoint that answers with a
// success and stores the issued token in the session.
func (s AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	resp, err := s.TryPaths(ctx, s.Paths.Login, RequestOptions{
		Method: http.MethodPost,
		Body:   credentials{Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}

	token := extractToken(resp.Body)
	if token == "" {
		return nil, &AuthError{Reason: "login response did not include a token"}
	}
	return s.establish(token, username), nil
}

// Register creates an account. When the registration reply already carries a
// token the session is established directly; otherwise Register logs in with
// the same credentials.
func (s AuthService) Register(ctx context.Context, username, password string) (*LoginResult, error) {
	resp, err := s.TryPaths(ctx, s.Paths.Register, RequestOptions{
		Method: http.MethodPost,
		Body:   credentials{Username: username, Password: password},
	})
	if err != nil {
		var exhausted *RequestExhaustedError
		if errors.As(err, &exhausted) {
			return nil, fmt.Errorf("%w: %w", ErrRegistrationUnavailable, err)
		}
		return nil, err
	}

	if token := extractToken(resp.Body); token != "" {
		return s.establish(token, username), nil
	}
	s.logger().Debug("registration reply carried no token, logging in", "url", resp.URL)
	return s.Login(ctx, username, password)
}

// Logout forgets the session token. The backend keeps no server-side session.
func (s AuthService) Logout() {
	s.Session.Clear()
}

func (s AuthService) establish(token, username string) *LoginResult {
	if s.Session == nil {
		s.Session = &Session{}
	}
	s.Session.SetToken(token)
	return &LoginResult{Token: token, Username: username}
}

// extractToken finds the token at the top level of the reply, then inside a
// data wrapper.
func extractToken(raw []byte) string {
	env := decodeEnvelope(raw)
	if env.object == nil {
		return ""
	}
	if t := tokenIn(env.object); t != "" {
		return t
	}
	if inner, ok := env.object["data"].(record); ok {
		return tokenIn(inner)
	}
	return ""
}

func tokenIn(obj record) string {
	for _, key := range tokenKeys {
		if t, ok := obj[key].(string); ok && t != "" {
			return t
		}
	}
	return ""
}
