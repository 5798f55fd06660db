package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/ignews/pkg/auth"
	mongopkg "github.com/dmitrymomot/ignews/pkg/mongo"
)

// UserStore implements auth.UserStorage on the users collection.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

func (s *UserStore) GetUserByEmail(ctx context.Context, foldedEmail string) (*auth.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email_folded", Value: foldedEmail}})
}

// CreateUser inserts the user. A concurrent insert of the same folded email
// loses on the unique index and gets auth.ErrEmailAlreadyExists.
func (s *UserStore) CreateUser(ctx context.Context, user *auth.User) error {
	if user == nil {
		return errors.New("docstore: nil user")
	}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongopkg.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*auth.User, error) {
	if customerID == "" {
		return nil, auth.ErrUserNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "stripe_customer_id", Value: customerID}})
}

func (s *UserStore) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: userID},
			{Key: "stripe_customer_id", Value: bson.D{{Key: "$exists", Value: false}}},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: "stripe_customer_id", Value: customerID}}}},
	)
	if err != nil {
		return fmt.Errorf("set stripe customer id: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: userID}})
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return auth.ErrCustomerAlreadySet
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*auth.User, error) {
	var u auth.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if mongopkg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

var _ auth.UserStorage = (*UserStore)(nil)
