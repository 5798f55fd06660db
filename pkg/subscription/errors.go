package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCustomerNotFound     = errors.New("no user for billing customer")
	ErrMissingSubscription  = errors.New("subscription ID is required")
	ErrMissingCustomer      = errors.New("customer ID is required")
	ErrNoPrice              = errors.New("subscription has no price")
	ErrUnhandledEvent       = errors.New("unhandled billing event")
	ErrProviderError        = errors.New("billing provider error")

	ErrMissingAPIKey             = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret      = errors.New("billing provider webhook secret is required")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrInvalidPayload            = errors.New("invalid webhook payload")
	ErrMissingPriceID            = errors.New("price ID is required")
	ErrMissingEmail              = errors.New("customer email is required")
)
