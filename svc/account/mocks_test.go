package account_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/subscription"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUserByEmail(ctx context.Context, foldedEmail string) (*auth.User, error) {
	args := m.Called(ctx, foldedEmail)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) CreateUser(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUsers) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*auth.User, error) {
	args := m.Called(ctx, customerID)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return m.Called(ctx, userID, customerID).Error(0)
}

type mockSubs struct {
	mock.Mock
}

func (m *mockSubs) ActiveSubscription(ctx context.Context, userRef string) (*subscription.Subscription, error) {
	args := m.Called(ctx, userRef)
	if s := args.Get(0); s != nil {
		return s.(*subscription.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOAuth struct {
	mock.Mock
}

func (m *mockOAuth) ProviderID() string { return auth.OAuthProviderGithub }

func (m *mockOAuth) Begin(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockOAuth) Complete(ctx context.Context, code, state string) (auth.Identity, error) {
	args := m.Called(ctx, code, state)
	return args.Get(0).(auth.Identity), args.Error(1)
}
