// Package auth holds the user model and the GitHub OAuth flow used to sign
// users in.
package auth

import (
	"context"
	"time"
)

// OAuthProviderGithub identifies GitHub in logs, routes and metrics.
const OAuthProviderGithub = "github"

// User is the persisted account record. EmailFolded is the lookup key.
type User struct {
	ID               string    `json:"id" bson:"_id"`
	Email            string    `json:"email" bson:"email"`
	EmailFolded      string    `json:"-" bson:"email_folded"`
	StripeCustomerID string    `json:"-" bson:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// UserStorage is the persistence contract for users.
type UserStorage interface {
	// GetUserByEmail looks a user up by case-folded email.
	// Returns ErrUserNotFound when absent.
	GetUserByEmail(ctx context.Context, foldedEmail string) (*User, error)
	// CreateUser inserts a user. Returns ErrEmailAlreadyExists when the
	// folded email is taken.
	CreateUser(ctx context.Context, user *User) error
	// GetUserByStripeCustomerID returns ErrUserNotFound when no user carries the id.
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
	// SetStripeCustomerID stores the id only when the user has none yet.
	// Returns ErrCustomerAlreadySet when one is stored, ErrUserNotFound when
	// the user is absent.
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

// Identity is the normalized profile returned by the identity provider.
// Email may be empty when the provider does not expose one.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
}
