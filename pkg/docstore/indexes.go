// Package docstore keeps users and subscriptions in MongoDB.
package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongopkg "github.com/dmitrymomot/ignews/pkg/mongo"
)

const (
	UsersCollection         = "users"
	SubscriptionsCollection = "subscriptions"
)

// Index names. Lookups go through these, nothing scans a collection.
const (
	IndexUserByEmail            = "user_by_email"
	IndexUserByStripeCustomerID = "user_by_stripe_customer_id"
	IndexSubscriptionByUserRef  = "subscription_by_user_ref"
	IndexSubscriptionByStatus   = "subscription_by_status"
)

// EnsureIndexes creates the indexes both stores depend on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_folded", Value: 1}},
			Options: options.Index().SetName(IndexUserByEmail).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "stripe_customer_id", Value: 1}},
			Options: options.Index().SetName(IndexUserByStripeCustomerID).SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return errors.Join(mongopkg.ErrFailedToEnsureIndexes, err)
	}

	_, err = db.Collection(SubscriptionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_ref", Value: 1}},
			Options: options.Index().SetName(IndexSubscriptionByUserRef),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName(IndexSubscriptionByStatus),
		},
	})
	if err != nil {
		return errors.Join(mongopkg.ErrFailedToEnsureIndexes, err)
	}
	return nil
}
