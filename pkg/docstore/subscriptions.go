package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongopkg "github.com/dmitrymomot/ignews/pkg/mongo"
	"github.com/dmitrymomot/ignews/pkg/subscription"
)

// SubscriptionStore implements subscription.Store on the subscriptions collection.
type SubscriptionStore struct {
	coll *mongo.Collection
}

func NewSubscriptionStore(db *mongo.Database) *SubscriptionStore {
	return &SubscriptionStore{coll: db.Collection(SubscriptionsCollection)}
}

// Upsert replaces the document with the same _id, inserting it if missing.
func (s *SubscriptionStore) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil || sub.ID == "" {
		return subscription.ErrMissingSubscription
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: sub.ID}},
		sub,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// FindActiveByUser intersects the user_ref and status filters. If several
// active documents exist the most recently updated wins.
func (s *SubscriptionStore) FindActiveByUser(ctx context.Context, userRef string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := s.coll.FindOne(ctx,
		bson.D{
			{Key: "user_ref", Value: userRef},
			{Key: "status", Value: subscription.StatusActive},
		},
		options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	).Decode(&sub)
	if err != nil {
		if mongopkg.IsNotFoundError(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

var _ subscription.Store = (*SubscriptionStore)(nil)
