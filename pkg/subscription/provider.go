package subscription

import "context"

// BillingProvider is the payment provider surface the service relies on.
type BillingProvider interface {
	// ParseWebhook verifies the signature over the raw payload and decodes it.
	// Verification failures wrap ErrWebhookVerificationFailed; decoding
	// failures of a verified payload wrap ErrInvalidPayload.
	ParseWebhook(payload []byte, signature string) (Event, error)

	// SubscriptionPriceID returns the price of the subscription's first item.
	SubscriptionPriceID(ctx context.Context, subscriptionID string) (string, error)

	// CreateCustomer registers a customer and returns its provider ID.
	CreateCustomer(ctx context.Context, req CustomerRequest) (string, error)

	// CreateCheckoutSession starts a hosted subscription checkout.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

type CustomerRequest struct {
	Email  string
	UserID string
}

type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url,omitempty"`
}
