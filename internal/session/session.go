// Package session carries the authenticated identity through the
// request context. Handlers never reach for global state: the auth
// middleware stores a Session here and downstream code reads it back.
package session

import "context"

// Session is the identity attached to an authenticated request.
type Session struct {
	UserID string
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying the session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session from ctx. ok is false when the
// request was not authenticated.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
