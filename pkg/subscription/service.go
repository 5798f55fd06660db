package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/ignews/pkg/logger"
)

// Service keeps stored subscriptions in step with billing events.
type Service struct {
	provider    BillingProvider
	store       Store
	resolveUser UserRefResolver
	logger      *slog.Logger
	now         func() time.Time
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the timestamp source for UpdatedAt.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService panics on missing dependencies so misconfiguration fails at startup.
func NewService(provider BillingProvider, store Store, resolveUser UserRefResolver, opts ...ServiceOption) *Service {
	if provider == nil {
		panic("subscription: BillingProvider is required")
	}
	if store == nil {
		panic("subscription: Store is required")
	}
	if resolveUser == nil {
		panic("subscription: UserRefResolver is required")
	}

	s := &Service{
		provider:    provider,
		store:       store,
		resolveUser: resolveUser,
		logger:      logger.Discard(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseWebhook delegates signature verification and decoding to the provider.
func (s *Service) ParseWebhook(payload []byte, signature string) (Event, error) {
	return s.provider.ParseWebhook(payload, signature)
}

// SaveSubscription writes {user, status, price} under subscriptionID.
// The owning user is resolved from customerID and the price is read from
// the provider's current view of the subscription.
func (s *Service) SaveSubscription(ctx context.Context, subscriptionID, customerID string, active bool) error {
	if subscriptionID == "" {
		return ErrMissingSubscription
	}
	if customerID == "" {
		return ErrMissingCustomer
	}

	userRef, err := s.resolveUser(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to resolve user for customer %s: %w", customerID, err)
	}

	priceID, err := s.provider.SubscriptionPriceID(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to retrieve subscription %s: %w", subscriptionID, err)
	}

	sub := &Subscription{
		ID:         subscriptionID,
		UserRef:    userRef,
		CustomerID: customerID,
		Status:     StatusFor(active),
		PriceID:    priceID,
		UpdatedAt:  s.now(),
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription saved",
		logger.SubscriptionID(subscriptionID),
		logger.CustomerID(customerID),
		logger.UserID(userRef),
		slog.String("status", string(sub.Status)),
	)
	return nil
}

// HandleEvent applies a verified event. Ignored events are a no-op.
func (s *Service) HandleEvent(ctx context.Context, event Event) error {
	if event == nil {
		return ErrUnhandledEvent
	}
	return event.Accept(eventHandler{ctx: ctx, svc: s})
}

// ActiveSubscription returns the user's active subscription or ErrSubscriptionNotFound.
func (s *Service) ActiveSubscription(ctx context.Context, userRef string) (*Subscription, error) {
	if userRef == "" {
		return nil, ErrSubscriptionNotFound
	}
	sub, err := s.store.FindActiveByUser(ctx, userRef)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to load active subscription: %w", err)
	}
	return sub, nil
}

// CreateCustomer registers a billing customer for the user.
func (s *Service) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	return s.provider.CreateCustomer(ctx, CustomerRequest{Email: email, UserID: userID})
}

// CreateCheckoutSession starts a hosted checkout for an existing customer.
func (s *Service) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	return s.provider.CreateCheckoutSession(ctx, req)
}

type eventHandler struct {
	ctx context.Context
	svc *Service
}

func (h eventHandler) VisitCheckoutCompleted(e CheckoutCompleted) error {
	return h.svc.SaveSubscription(h.ctx, e.SubscriptionID, e.CustomerID, true)
}

// Updates are stored as inactive, whatever the provider status says.
func (h eventHandler) VisitSubscriptionUpdated(e SubscriptionUpdated) error {
	return h.svc.SaveSubscription(h.ctx, e.SubscriptionID, e.CustomerID, false)
}

func (h eventHandler) VisitSubscriptionDeleted(e SubscriptionDeleted) error {
	return h.svc.SaveSubscription(h.ctx, e.SubscriptionID, e.CustomerID, false)
}

func (h eventHandler) VisitIgnored(Ignored) error {
	return nil
}

var _ EventVisitor = eventHandler{}
