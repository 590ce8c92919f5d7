package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// SessionState is the position of a Session in its sign-in lifecycle.
type SessionState string

const (
	StateAnonymous SessionState = "anonymous"
	StateSignedIn  SessionState = "signed_in"
	StateSignedOut SessionState = "signed_out"
)

var ErrInvalidClaims = errors.New("auth: claims have no subject")

// Session is the caller identity handed to components that need it.
// Transitions: anonymous -> signed_in (SignIn), signed_in -> signed_out (SignOut),
// signed_out -> signed_in (SignIn). Sessions are values; transitions return a new one.
type Session struct {
	State     SessionState
	UserID    string
	Email     string
	Role      string
	Token     string
	ExpiresAt time.Time
}

type ctxKeySession struct{}

func Anonymous() Session {
	return Session{State: StateAnonymous}
}

// SignIn returns the signed-in session described by claims. The raw token is
// kept so calls to downstream services can act on behalf of the user.
func (s Session) SignIn(token string, c *Claims) (Session, error) {
	if c == nil || strings.TrimSpace(c.Subject) == "" {
		return s, ErrInvalidClaims
	}
	next := Session{
		State:  StateSignedIn,
		UserID: strings.TrimSpace(c.Subject),
		Email:  strings.TrimSpace(c.Email),
		Role:   strings.TrimSpace(c.Role),
		Token:  token,
	}
	if c.ExpiresAt != nil {
		next.ExpiresAt = c.ExpiresAt.Time
	}
	return next, nil
}

// SignOut drops the identity.
func (s Session) SignOut() Session {
	return Session{State: StateSignedOut}
}

// Authenticated reports whether the session is signed in and not expired at now.
func (s Session) Authenticated(now time.Time) bool {
	if s.State != StateSignedIn || s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Username is the local part of the account email, or "" when unknown.
func (s Session) Username() string {
	local, _, _ := strings.Cut(s.Email, "@")
	return strings.TrimSpace(local)
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, s)
}

// SessionFromContext returns the request session; anonymous when none was attached.
func SessionFromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKeySession{}).(Session); ok {
		return s
	}
	return Anonymous()
}
