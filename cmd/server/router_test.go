package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/cookie"
	"github.com/dmitrymomot/ignews/pkg/httpserver"
	"github.com/dmitrymomot/ignews/pkg/logger"
	"github.com/dmitrymomot/ignews/pkg/metrics"
	"github.com/dmitrymomot/ignews/pkg/requestid"
	"github.com/dmitrymomot/ignews/pkg/session"
	"github.com/dmitrymomot/ignews/pkg/subscription"
	"github.com/dmitrymomot/ignews/svc/account"
	"github.com/dmitrymomot/ignews/svc/billing"
)

type noUsers struct{}

func (noUsers) GetUserByEmail(context.Context, string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}
func (noUsers) CreateUser(context.Context, *auth.User) error { return nil }
func (noUsers) GetUserByStripeCustomerID(context.Context, string) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}
func (noUsers) SetStripeCustomerID(context.Context, string, string) error { return nil }

type noSubs struct{}

func (noSubs) ActiveSubscription(context.Context, string) (*subscription.Subscription, error) {
	return nil, subscription.ErrSubscriptionNotFound
}

type noOAuth struct{}

func (noOAuth) ProviderID() string { return auth.OAuthProviderGithub }
func (noOAuth) Begin(context.Context) (string, error) {
	return "https://github.com/login/oauth/authorize", nil
}
func (noOAuth) Complete(context.Context, string, string) (auth.Identity, error) {
	return auth.Identity{}, errors.New("not used")
}

type noEvents struct{}

func (noEvents) ParseWebhook([]byte, string) (subscription.Event, error) {
	return nil, subscription.ErrWebhookVerificationFailed
}
func (noEvents) HandleEvent(context.Context, subscription.Event) error { return nil }

type noCheckout struct{}

func (noCheckout) StartCheckout(context.Context, string) (*subscription.CheckoutSession, error) {
	return nil, auth.ErrUserNotFound
}

func newTestRouter(t *testing.T, checks map[string]httpserver.Check) http.Handler {
	t.Helper()

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(), cookies, session.Config{CookieName: "sid", TTL: time.Hour})

	reg := prometheus.NewRegistry()
	recorder := metrics.NewCollector(reg)
	recorder.RecordSignIn(auth.OAuthProviderGithub, metrics.SignInAllowed)

	log := logger.Discard()
	accounts := account.NewService(noUsers{}, noSubs{}, account.WithLogger(log))

	return newRouter(routerDeps{
		logger:      log,
		appName:     "ignews",
		sessions:    sessions,
		account:     account.NewHandler(accounts, noOAuth{}, sessions),
		billing:     billing.NewHandler(noEvents{}, noCheckout{}, sessions, billing.Config{}),
		gatherer:    reg,
		checks:      checks,
		corsOrigins: []string{"http://localhost:3000"},
	})
}

func serve(h http.Handler, method, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, map[string]httpserver.Check{
		"mongo": func(context.Context) error { return nil },
	})

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/live").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/ready").Code)

	failing := newTestRouter(t, map[string]httpserver.Check{
		"mongo": func(context.Context) error { return errors.New("down") },
	})
	assert.Equal(t, http.StatusServiceUnavailable, serve(failing, http.MethodGet, "/health/ready").Code)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t, nil), http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignews_sign_ins_total")
}

func TestRouter_Pages(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil)

	rec := serve(h, http.MethodGet, "/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="/posts" class="active">Posts</a>`)
	assert.Contains(t, rec.Body.String(), `<a href="/">Home</a>`)
	assert.NotEmpty(t, rec.Header().Get(requestid.Header))
}

func TestRouter_API(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil)

	rec := serve(h, http.MethodGet, "/api/webhooks")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = serve(h, http.MethodPost, "/api/webhooks")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Webhook Error: "))

	rec = serve(h, http.MethodGet, "/api/auth/session")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = serve(h, http.MethodPost, "/api/subscribe")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil)

	rec := serve(h, http.MethodOptions, "/api/auth/session", func(r *http.Request) {
		r.Header.Set("Origin", "http://localhost:3000")
		r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(h, http.MethodGet, "/api/auth/session", func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example")
	})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{
		CORSOrigins: []string{"http://localhost:3000"},
		Stripe:      subscription.StripeConfig{PriceID: "price_1"},
		Webhook:     billing.Config{FailureStatus: http.StatusOK, MaxBodyBytes: 1024},
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Stripe.PriceID = ""
	bad.Webhook.FailureStatus = http.StatusTeapot
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrInvalidFailureStatus)
}
