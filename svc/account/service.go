// Package account signs users in and builds the session payload seen by
// the frontend.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/logger"
	"github.com/dmitrymomot/ignews/pkg/metrics"
	"github.com/dmitrymomot/ignews/pkg/sanitizer"
	"github.com/dmitrymomot/ignews/pkg/subscription"
)

var ErrEmptyEmail = errors.New("identity has no email")

// SubscriptionReader returns the user's active subscription or
// subscription.ErrSubscriptionNotFound.
type SubscriptionReader interface {
	ActiveSubscription(ctx context.Context, userRef string) (*subscription.Subscription, error)
}

// SessionUser is the user part of the session payload.
type SessionUser struct {
	Email string `json:"email"`
}

// SessionPayload is what GET /api/auth/session returns for a signed-in user.
// ActiveSubscription is always present, null when there is none.
type SessionPayload struct {
	User               SessionUser                `json:"user"`
	Expires            time.Time                  `json:"expires"`
	ActiveSubscription *subscription.Subscription `json:"activeSubscription"`
}

type Service struct {
	users   auth.UserStorage
	subs    SubscriptionReader
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the CreatedAt source for new users.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides user ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func NewService(users auth.UserStorage, subs SubscriptionReader, opts ...Option) *Service {
	if users == nil {
		panic("account: user storage is required")
	}
	if subs == nil {
		panic("account: subscription reader is required")
	}

	s := &Service{
		users:   users,
		subs:    subs,
		metrics: metrics.Nop(),
		logger:  logger.Discard(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertUser returns the user with the identity's email, creating it on
// first sign-in. An existing user is returned untouched.
func (s *Service) UpsertUser(ctx context.Context, identity auth.Identity) (*auth.User, error) {
	folded := sanitizer.FoldEmail(identity.Email)
	if folded == "" {
		return nil, ErrEmptyEmail
	}

	user, err := s.users.GetUserByEmail(ctx, folded)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user = &auth.User{
		ID:          s.newID(),
		Email:       identity.Email,
		EmailFolded: folded,
		CreatedAt:   s.now(),
	}
	// A concurrent first sign-in may win the unique index; that surfaces
	// as ErrEmailAlreadyExists and denies this attempt.
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		logger.UserID(user.ID),
		logger.Provider(identity.Provider),
	)
	return user, nil
}

// SignIn reports whether the identity may sign in. Any failure denies.
func (s *Service) SignIn(ctx context.Context, identity auth.Identity) bool {
	_, ok := s.signIn(ctx, identity)
	return ok
}

func (s *Service) signIn(ctx context.Context, identity auth.Identity) (*auth.User, bool) {
	user, err := s.UpsertUser(ctx, identity)
	if !s.recordSignIn(ctx, identity, err) {
		return nil, false
	}
	return user, true
}

func (s *Service) recordSignIn(ctx context.Context, identity auth.Identity, err error) bool {
	if err != nil {
		s.logger.WarnContext(ctx, "sign-in denied",
			logger.Provider(identity.Provider),
			logger.Error(err),
		)
		s.metrics.RecordSignIn(identity.Provider, metrics.SignInDenied)
		return false
	}
	s.metrics.RecordSignIn(identity.Provider, metrics.SignInAllowed)
	return true
}

// EnrichSession attaches the user's active subscription. Lookup failures
// are logged and leave ActiveSubscription nil; other fields pass through.
func (s *Service) EnrichSession(ctx context.Context, payload SessionPayload) SessionPayload {
	payload.ActiveSubscription = nil

	user, err := s.users.GetUserByEmail(ctx, sanitizer.FoldEmail(payload.User.Email))
	if err != nil {
		s.enrichmentFailed(ctx, err)
		return payload
	}

	sub, err := s.subs.ActiveSubscription(ctx, user.ID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			s.metrics.RecordEnrichment(metrics.EnrichmentNone)
			return payload
		}
		s.enrichmentFailed(ctx, err)
		return payload
	}

	payload.ActiveSubscription = sub
	s.metrics.RecordEnrichment(metrics.EnrichmentActive)
	return payload
}

func (s *Service) enrichmentFailed(ctx context.Context, err error) {
	s.logger.WarnContext(ctx, "session enrichment failed", logger.Error(err))
	s.metrics.RecordEnrichment(metrics.EnrichmentError)
}

// CustomerResolver looks users up by billing customer ID.
func CustomerResolver(users auth.UserStorage) subscription.UserRefResolver {
	return func(ctx context.Context, customerID string) (string, error) {
		user, err := users.GetUserByStripeCustomerID(ctx, customerID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return "", subscription.ErrCustomerNotFound
			}
			return "", err
		}
		return user.ID, nil
	}
}
