package api

import "sync/atomic"

// Session holds the bearer token attached to outgoing requests.
//
// A Session is owned by whatever performs authentication (the auth service and
// the CLI boot code) and handed to the Client at construction. The zero value
// is an unauthenticated session. It is safe for concurrent use: writers swap the
// token atomically and each request reads a single snapshot.
type Session struct {
	token atomic.Pointer[string]
}

// NewSession returns a session primed with token. An empty token yields an
// unauthenticated session.
func NewSession(token string) *Session {
	s := &Session{}
	s.SetToken(token)
	return s
}

// SetToken replaces the held token. An empty string clears it.
func (s *Session) SetToken(token string) {
	if token == "" {
		s.token.Store(nil)
		return
	}
	s.token.Store(&token)
}

// Clear drops the held token.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.token.Store(nil)
}

// Token returns the held token, or "" when none is held.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	if t := s.token.Load(); t != nil {
		return *t
	}
	return ""
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
