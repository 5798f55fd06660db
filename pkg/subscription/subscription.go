// Package subscription mirrors the billing provider's subscription state
// into the document store and answers "does this user pay right now".
package subscription

import (
	"context"
	"time"
)

// Status is the locally stored subscription state.
type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
)

// StatusFor maps the active flag carried by billing events to a Status.
func StatusFor(active bool) Status {
	if active {
		return StatusActive
	}
	return StatusCanceled
}

// Subscription is keyed by the provider's subscription ID. Writes replace
// the whole document, the last one wins.
type Subscription struct {
	ID         string    `json:"id" bson:"_id"`
	UserRef    string    `json:"userId" bson:"user_ref"`
	CustomerID string    `json:"-" bson:"customer_id"`
	Status     Status    `json:"status" bson:"status"`
	PriceID    string    `json:"priceId" bson:"price_id"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}

// Store persists subscriptions.
type Store interface {
	// Upsert creates or replaces the subscription with the same ID.
	Upsert(ctx context.Context, sub *Subscription) error
	// FindActiveByUser returns the user's active subscription or
	// ErrSubscriptionNotFound.
	FindActiveByUser(ctx context.Context, userRef string) (*Subscription, error)
}

// UserRefResolver maps a billing customer ID to the owning user's ID.
// It returns ErrCustomerNotFound when no user carries the customer ID.
type UserRefResolver func(ctx context.Context, customerID string) (string, error)
