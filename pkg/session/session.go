// Package session keeps signed-in users recognised across requests.
//
// Only authenticated sessions exist: one is created after a successful
// sign-in and destroyed on sign-out or expiry. The opaque token travels in an
// encrypted cookie; the session itself lives in a Store.
package session

import (
	"context"
	"time"
)

// Session is the server-side record of a signed-in user.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsExpired() bool {
	return s != nil && !time.Now().Before(s.ExpiresAt)
}

// Store persists sessions by token.
type Store interface {
	Create(ctx context.Context, session *Session) error
	// Get returns ErrSessionNotFound or ErrSessionExpired when the token is not usable.
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type sessionContextKey struct{}

func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok && session != nil
}
