// Package auth verifies externally issued session tokens. The auth
// provider owns sign-up, sign-in and token issuance; this service only
// checks the token signature and carries the resolved session through the
// request context.
package auth

import (
	"context"
)

// Session is the resolved identity of the current request. Name and Email
// are optional profile fields; ID is always set for a present session.
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

type sessionKey struct{}

// NewContext returns a context carrying the session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext retrieves the session from the context. The second return
// is false when the request carried no valid token.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
