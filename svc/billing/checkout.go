package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/logger"
	"github.com/dmitrymomot/ignews/pkg/sanitizer"
	"github.com/dmitrymomot/ignews/pkg/subscription"
)

// CheckoutProvider creates customers and hosted checkout sessions.
type CheckoutProvider interface {
	CreateCustomer(ctx context.Context, userID, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutSession, error)
}

// CheckoutConfig is the price and the URLs Stripe returns the user to.
type CheckoutConfig struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// CheckoutService starts subscription checkouts for signed-in users.
type CheckoutService struct {
	users    auth.UserStorage
	provider CheckoutProvider
	cfg      CheckoutConfig
	logger   *slog.Logger
}

func NewCheckoutService(users auth.UserStorage, provider CheckoutProvider, cfg CheckoutConfig, log *slog.Logger) *CheckoutService {
	if log == nil {
		log = logger.Discard()
	}
	return &CheckoutService{users: users, provider: provider, cfg: cfg, logger: log}
}

// StartCheckout makes sure the user has a billing customer, then opens a
// checkout session for the configured price.
func (s *CheckoutService) StartCheckout(ctx context.Context, email string) (*subscription.CheckoutSession, error) {
	folded := sanitizer.FoldEmail(email)
	user, err := s.users.GetUserByEmail(ctx, folded)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	customerID, err := s.ensureCustomer(ctx, user, folded)
	if err != nil {
		return nil, err
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, subscription.CheckoutRequest{
		CustomerID: customerID,
		PriceID:    s.cfg.PriceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sess, nil
}

// ensureCustomer returns the user's billing customer, creating one when
// missing. When a concurrent request stores its customer first, that one
// wins and the customer created here is left unused.
func (s *CheckoutService) ensureCustomer(ctx context.Context, user *auth.User, foldedEmail string) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	customerID, err := s.provider.CreateCustomer(ctx, user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	err = s.users.SetStripeCustomerID(ctx, user.ID, customerID)
	switch {
	case errors.Is(err, auth.ErrCustomerAlreadySet):
		stored, err := s.users.GetUserByEmail(ctx, foldedEmail)
		if err != nil {
			return "", fmt.Errorf("reload user: %w", err)
		}
		if stored.StripeCustomerID == "" {
			return "", fmt.Errorf("user %s lost the customer race but has no customer stored", user.ID)
		}
		s.logger.WarnContext(ctx, "billing customer already stored, discarding new one",
			logger.UserID(user.ID),
			logger.CustomerID(stored.StripeCustomerID),
			slog.String("unused_customer_id", customerID),
		)
		return stored.StripeCustomerID, nil
	case err != nil:
		return "", fmt.Errorf("store customer %s: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "billing customer created",
		logger.UserID(user.ID),
		logger.CustomerID(customerID),
	)
	return customerID, nil
}
