package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/ignews/pkg/logger"
)

// IdentityProvider is the provider side of the authorization-code flow.
type IdentityProvider interface {
	ProviderID() string
	AuthURL(state string) string
	ResolveIdentity(ctx context.Context, code string) (Identity, error)
}

// OAuthService wraps an IdentityProvider with CSRF state handling.
type OAuthService struct {
	provider IdentityProvider
	states   StateStore
	stateTTL time.Duration
	logger   *slog.Logger
}

// OAuthOption configures an OAuthService.
type OAuthOption func(*OAuthService)

func WithLogger(l *slog.Logger) OAuthOption {
	return func(s *OAuthService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithStateTTL(ttl time.Duration) OAuthOption {
	return func(s *OAuthService) {
		if ttl > 0 {
			s.stateTTL = ttl
		}
	}
}

func NewOAuthService(provider IdentityProvider, states StateStore, opts ...OAuthOption) *OAuthService {
	s := &OAuthService{
		provider: provider,
		states:   states,
		stateTTL: 10 * time.Minute,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OAuthService) ProviderID() string {
	return s.provider.ProviderID()
}

// Begin stores a fresh state token and returns the provider authorization URL.
func (s *OAuthService) Begin(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	if err := s.states.Save(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	return s.provider.AuthURL(state), nil
}

// Complete validates the callback state and resolves the provider identity.
func (s *OAuthService) Complete(ctx context.Context, code, state string) (Identity, error) {
	if state == "" {
		return Identity{}, ErrInvalidState
	}
	if err := s.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return Identity{}, ErrInvalidState
		}
		return Identity{}, fmt.Errorf("failed to validate state: %w", err)
	}
	if code == "" {
		return Identity{}, ErrInvalidCode
	}

	identity, err := s.provider.ResolveIdentity(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve %s identity: %w", s.provider.ProviderID(), err)
	}

	s.logger.DebugContext(ctx, "oauth identity resolved",
		logger.Provider(identity.Provider),
		slog.String("provider_user_id", identity.ProviderUserID),
	)
	return identity, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
