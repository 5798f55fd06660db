package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/ignews/pkg/cookie"
)

// Manager ties a Store to the session cookie.
type Manager struct {
	store   Store
	cookies *cookie.Manager
	cfg     Config
}

func NewManager(store Store, cookies *cookie.Manager, cfg Config) *Manager {
	if store == nil {
		panic("session: store is required")
	}
	if cookies == nil {
		panic("session: cookie manager is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "ignews.session-token"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return &Manager{store: store, cookies: cookies, cfg: cfg}
}

// Authenticate starts a fresh session for the user, replacing any session
// the request already carries.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID, email string) (*Session, error) {
	if token, err := m.cookies.GetEncrypted(r, m.cfg.CookieName); err == nil {
		_ = m.store.Delete(ctx, token)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		Token:     token,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := m.cookies.SetEncrypted(w, m.cfg.CookieName, token, cookie.WithMaxAge(int(m.cfg.TTL.Seconds()))); err != nil {
		_ = m.store.Delete(ctx, token)
		return nil, err
	}
	return session, nil
}

// Get loads the session referenced by the request cookie.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.cookies.GetEncrypted(r, m.cfg.CookieName)
	if err != nil {
		return nil, errors.Join(ErrSessionNotFound, err)
	}
	return m.store.Get(ctx, token)
}

// Destroy deletes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if token, cookieErr := m.cookies.GetEncrypted(r, m.cfg.CookieName); cookieErr == nil {
		err = m.store.Delete(ctx, token)
	}
	m.cookies.Delete(w, m.cfg.CookieName)
	return err
}

// Middleware attaches the request's session to the context when there is one.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, err := m.Get(r.Context(), r); err == nil {
			r = r.WithContext(WithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 unless the request carries a valid session.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := FromContext(r.Context())
		if !ok {
			var err error
			if session, err = m.Get(r.Context(), r); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
