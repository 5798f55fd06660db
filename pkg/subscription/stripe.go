package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds Stripe credentials and checkout settings.
type StripeConfig struct {
	APIKey        string `env:"STRIPE_API_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	PriceID       string `env:"STRIPE_PRICE_ID"`
	SuccessURL    string `env:"STRIPE_SUCCESS_URL" envDefault:"http://localhost:3000/posts"`
	CancelURL     string `env:"STRIPE_CANCEL_URL" envDefault:"http://localhost:3000/"`
}

// StripeProvider implements BillingProvider on top of an explicitly
// constructed Stripe client.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// StripeOption adjusts the provider, mainly for tests.
type StripeOption func(*stripeOptions)

type stripeOptions struct {
	backends *stripe.Backends
}

// WithStripeBackends routes API calls through custom backends.
func WithStripeBackends(b *stripe.Backends) StripeOption {
	return func(o *stripeOptions) { o.backends = b }
}

func NewStripeProvider(cfg StripeConfig, opts ...StripeOption) (*StripeProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	o := &stripeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return &StripeProvider{
		api:           client.New(cfg.APIKey, o.backends),
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps the event onto
// the Event sum type.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWebhookVerificationFailed, err)
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrInvalidPayload, event.ID)
	}

	switch string(event.Type) {
	case EventCheckoutSessionCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %w", ErrInvalidPayload, err)
		}
		return NewCheckoutCompleted(event.ID, cs.ID, subscriptionID(cs.Subscription), customerID(cs.Customer)), nil

	case EventCustomerSubscriptionUpdate, EventCustomerSubscriptionDelete:
		var ss stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &ss); err != nil {
			return nil, fmt.Errorf("%w: subscription: %w", ErrInvalidPayload, err)
		}
		if string(event.Type) == EventCustomerSubscriptionUpdate {
			return NewSubscriptionUpdated(event.ID, ss.ID, customerID(ss.Customer)), nil
		}
		return NewSubscriptionDeleted(event.ID, ss.ID, customerID(ss.Customer)), nil

	default:
		return NewIgnored(event.ID, string(event.Type)), nil
	}
}

// SubscriptionPriceID retrieves the subscription and reads items[0].price.id.
func (p *StripeProvider) SubscriptionPriceID(_ context.Context, subscriptionID string) (string, error) {
	sub, err := p.api.Subscriptions.Get(subscriptionID, nil)
	if err != nil {
		return "", wrapStripeError(err)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return "", ErrNoPrice
	}
	return sub.Items.Data[0].Price.ID, nil
}

func (p *StripeProvider) CreateCustomer(_ context.Context, req CustomerRequest) (string, error) {
	if req.Email == "" {
		return "", ErrMissingEmail
	}
	params := &stripe.CustomerParams{Email: stripe.String(req.Email)}
	if req.UserID != "" {
		params.AddMetadata("user_id", req.UserID)
	}

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeError(err)
	}
	return cust.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.CustomerID == "" {
		return nil, ErrMissingCustomer
	}
	if req.PriceID == "" {
		return nil, ErrMissingPriceID
	}

	sess, err := p.api.CheckoutSessions.New(&stripe.CheckoutSessionParams{
		Customer:                 stripe.String(req.CustomerID),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		Mode:                stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(req.SuccessURL),
		CancelURL:           stripe.String(req.CancelURL),
	})
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func subscriptionID(s *stripe.Subscription) string {
	if s == nil {
		return ""
	}
	return s.ID
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func wrapStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %s (%s)", ErrProviderError, se.Msg, se.Code)
	}
	return fmt.Errorf("%w: %w", ErrProviderError, err)
}

var _ BillingProvider = (*StripeProvider)(nil)
