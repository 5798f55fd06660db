package billing_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/cookie"
	"github.com/dmitrymomot/ignews/pkg/session"
	"github.com/dmitrymomot/ignews/pkg/subscription"
	"github.com/dmitrymomot/ignews/svc/billing"
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

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	args := m.Called(ctx, userID, email)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(*subscription.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCheckout struct {
	mock.Mock
}

func (m *mockCheckout) StartCheckout(ctx context.Context, email string) (*subscription.CheckoutSession, error) {
	args := m.Called(ctx, email)
	if s := args.Get(0); s != nil {
		return s.(*subscription.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

var checkoutCfg = billing.CheckoutConfig{
	PriceID:    "price_1",
	SuccessURL: "http://localhost:3000/posts",
	CancelURL:  "http://localhost:3000/",
}

func TestCheckoutService_StartCheckout(t *testing.T) {
	t.Parallel()

	t.Run("creates and stores missing customer", func(t *testing.T) {
		t.Parallel()
		users := &mockUsers{}
		provider := &mockProvider{}
		svc := billing.NewCheckoutService(users, provider, checkoutCfg, nil)

		users.On("GetUserByEmail", mock.Anything, "ada@example.com").
			Return(&auth.User{ID: "user-1", Email: "Ada@example.com"}, nil)
		provider.On("CreateCustomer", mock.Anything, "user-1", "Ada@example.com").Return("cus_new", nil)
		users.On("SetStripeCustomerID", mock.Anything, "user-1", "cus_new").Return(nil)
		provider.On("CreateCheckoutSession", mock.Anything, subscription.CheckoutRequest{
			CustomerID: "cus_new",
			PriceID:    "price_1",
			SuccessURL: "http://localhost:3000/posts",
			CancelURL:  "http://localhost:3000/",
		}).Return(&subscription.CheckoutSession{ID: "cs_1"}, nil)

		sess, err := svc.StartCheckout(context.Background(), "Ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "cs_1", sess.ID)
		users.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("reuses existing customer", func(t *testing.T) {
		t.Parallel()
		users := &mockUsers{}
		provider := &mockProvider{}
		svc := billing.NewCheckoutService(users, provider, checkoutCfg, nil)

		users.On("GetUserByEmail", mock.Anything, "ada@example.com").
			Return(&auth.User{ID: "user-1", Email: "ada@example.com", StripeCustomerID: "cus_old"}, nil)
		provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req subscription.CheckoutRequest) bool {
			return req.CustomerID == "cus_old"
		})).Return(&subscription.CheckoutSession{ID: "cs_2"}, nil)

		sess, err := svc.StartCheckout(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "cs_2", sess.ID)
		provider.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent request stored its customer first", func(t *testing.T) {
		t.Parallel()
		users := &mockUsers{}
		provider := &mockProvider{}
		svc := billing.NewCheckoutService(users, provider, checkoutCfg, nil)

		users.On("GetUserByEmail", mock.Anything, "ada@example.com").
			Return(&auth.User{ID: "user-1", Email: "ada@example.com"}, nil).Once()
		provider.On("CreateCustomer", mock.Anything, "user-1", "ada@example.com").Return("cus_B", nil)
		users.On("SetStripeCustomerID", mock.Anything, "user-1", "cus_B").Return(auth.ErrCustomerAlreadySet)
		users.On("GetUserByEmail", mock.Anything, "ada@example.com").
			Return(&auth.User{ID: "user-1", Email: "ada@example.com", StripeCustomerID: "cus_A"}, nil).Once()
		provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req subscription.CheckoutRequest) bool {
			return req.CustomerID == "cus_A"
		})).Return(&subscription.CheckoutSession{ID: "cs_A"}, nil)

		sess, err := svc.StartCheckout(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "cs_A", sess.ID)
		users.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("customer conflict but nothing stored", func(t *testing.T) {
		t.Parallel()
		users := &mockUsers{}
		provider := &mockProvider{}
		svc := billing.NewCheckoutService(users, provider, checkoutCfg, nil)

		users.On("GetUserByEmail", mock.Anything, "ada@example.com").
			Return(&auth.User{ID: "user-1", Email: "ada@example.com"}, nil)
		provider.On("CreateCustomer", mock.Anything, "user-1", "ada@example.com").Return("cus_B", nil)
		users.On("SetStripeCustomerID", mock.Anything, "user-1", "cus_B").Return(auth.ErrCustomerAlreadySet)

		_, err := svc.StartCheckout(context.Background(), "ada@example.com")
		require.Error(t, err)
		provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		users := &mockUsers{}
		svc := billing.NewCheckoutService(users, &mockProvider{}, checkoutCfg, nil)

		users.On("GetUserByEmail", mock.Anything, "x@example.com").Return(nil, auth.ErrUserNotFound)

		_, err := svc.StartCheckout(context.Background(), "x@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("storing customer fails", func(t *testing.T) {
		t.Parallel()
		users := &mockUsers{}
		provider := &mockProvider{}
		svc := billing.NewCheckoutService(users, provider, checkoutCfg, nil)

		users.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(&auth.User{ID: "user-1", Email: "ada@example.com"}, nil)
		provider.On("CreateCustomer", mock.Anything, "user-1", "ada@example.com").Return("cus_new", nil)
		users.On("SetStripeCustomerID", mock.Anything, "user-1", "cus_new").Return(errors.New("write failed"))

		_, err := svc.StartCheckout(context.Background(), "ada@example.com")
		require.Error(t, err)
		provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})
}

type subscribeFixture struct {
	checkout *mockCheckout
	sessions *session.Manager
	routes   http.Handler
}

func newSubscribeFixture(t *testing.T) *subscribeFixture {
	t.Helper()

	cookies, err := cookie.New([]string{cookieSecret})
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(), cookies, session.Config{CookieName: "sid", TTL: time.Hour})

	checkout := &mockCheckout{}
	events := subscription.NewService(&nopProvider{}, &memoryStore{subs: map[string]subscription.Subscription{}},
		func(context.Context, string) (string, error) { return "", subscription.ErrCustomerNotFound })

	return &subscribeFixture{
		checkout: checkout,
		sessions: sessions,
		routes:   billing.NewHandler(events, checkout, sessions, billing.Config{}).Routes(),
	}
}

func (f *subscribeFixture) signedIn(t *testing.T, email string) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	_, err := f.sessions.Authenticate(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/", nil), "user-1", email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/subscribe", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	t.Run("returns checkout session id", func(t *testing.T) {
		t.Parallel()
		f := newSubscribeFixture(t)
		f.checkout.On("StartCheckout", mock.Anything, "ada@example.com").
			Return(&subscription.CheckoutSession{ID: "cs_1"}, nil)

		rec := httptest.NewRecorder()
		f.routes.ServeHTTP(rec, f.signedIn(t, "ada@example.com"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"sessionId":"cs_1"}`, rec.Body.String())
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		f := newSubscribeFixture(t)

		rec := httptest.NewRecorder()
		f.routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribe", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		f.checkout.AssertNotCalled(t, "StartCheckout", mock.Anything, mock.Anything)
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()
		f := newSubscribeFixture(t)

		rec := httptest.NewRecorder()
		f.routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribe", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "POST", rec.Header().Get("Allow"))
	})

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()
		f := newSubscribeFixture(t)
		f.checkout.On("StartCheckout", mock.Anything, "ada@example.com").
			Return(nil, errors.Join(subscription.ErrProviderError, errors.New("card_declined")))

		rec := httptest.NewRecorder()
		f.routes.ServeHTTP(rec, f.signedIn(t, "ada@example.com"))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"bad_gateway"}`, rec.Body.String())
	})
}

// nopProvider satisfies subscription.BillingProvider for routes that never reach it.
type nopProvider struct{}

func (nopProvider) ParseWebhook([]byte, string) (subscription.Event, error) {
	return nil, subscription.ErrWebhookVerificationFailed
}

func (nopProvider) SubscriptionPriceID(context.Context, string) (string, error) { return "", nil }

func (nopProvider) CreateCustomer(context.Context, subscription.CustomerRequest) (string, error) {
	return "", nil
}

func (nopProvider) CreateCheckoutSession(context.Context, subscription.CheckoutRequest) (*subscription.CheckoutSession, error) {
	return nil, nil
}
