package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/ignews/handler"
	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/clientip"
	"github.com/dmitrymomot/ignews/pkg/config"
	"github.com/dmitrymomot/ignews/pkg/cookie"
	"github.com/dmitrymomot/ignews/pkg/docstore"
	"github.com/dmitrymomot/ignews/pkg/httpserver"
	"github.com/dmitrymomot/ignews/pkg/logger"
	"github.com/dmitrymomot/ignews/pkg/metrics"
	"github.com/dmitrymomot/ignews/pkg/mongo"
	"github.com/dmitrymomot/ignews/pkg/redis"
	"github.com/dmitrymomot/ignews/pkg/requestid"
	"github.com/dmitrymomot/ignews/pkg/session"
	"github.com/dmitrymomot/ignews/pkg/subscription"
	"github.com/dmitrymomot/ignews/svc/account"
	"github.com/dmitrymomot/ignews/svc/billing"
)

const oauthStatePrefix = "ignews:oauth:state:"

func main() {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg Config, log *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := mongo.ConnectDatabase(startCtx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	if err := docstore.EnsureIndexes(startCtx, db); err != nil {
		return err
	}

	checks := map[string]httpserver.Check{"mongo": mongo.Healthcheck(db.Client())}

	var (
		sessionStore session.Store   = session.NewMemoryStore()
		stateStore   auth.StateStore = auth.NewMemoryStateStore()
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.Connect(startCtx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		sessionStore = session.NewRedisStore(rdb, cfg.Session.KeyPrefix)
		stateStore = auth.NewRedisStateStore(rdb, oauthStatePrefix)
		checks["redis"] = redis.Healthcheck(rdb)
	} else {
		log.Warn("REDIS_URL not set, sessions and oauth state are kept in memory")
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return err
	}
	sessions := session.NewManager(sessionStore, cookies, cfg.Session)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	users := docstore.NewUserStore(db)
	stripeProvider, err := subscription.NewStripeProvider(cfg.Stripe)
	if err != nil {
		return err
	}
	subscriptions := subscription.NewService(
		stripeProvider,
		docstore.NewSubscriptionStore(db),
		account.CustomerResolver(users),
		subscription.WithLogger(log.With(logger.Component("subscription"))),
	)

	accounts := account.NewService(users, subscriptions,
		account.WithLogger(log.With(logger.Component("account"))),
		account.WithMetrics(recorder),
	)
	oauth := auth.NewOAuthService(
		auth.NewGitHubProvider(cfg.GitHub),
		stateStore,
		auth.WithLogger(log),
		auth.WithStateTTL(cfg.GitHub.StateTTL),
	)

	errorHandler := handler.NewErrorHandler(log)
	checkout := billing.NewCheckoutService(users, subscriptions, billing.CheckoutConfig{
		PriceID:    cfg.Stripe.PriceID,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	}, log.With(logger.Component("checkout")))

	router := newRouter(routerDeps{
		logger:   log,
		appName:  cfg.AppName,
		sessions: sessions,
		account: account.NewHandler(accounts, oauth, sessions,
			account.WithHandlerLogger(log.With(logger.Component("auth"))),
			account.WithErrorHandler(errorHandler),
		),
		billing: billing.NewHandler(subscriptions, checkout, sessions, cfg.Webhook,
			billing.WithLogger(log.With(logger.Component("webhook"))),
			billing.WithMetrics(recorder),
			billing.WithErrorHandler(errorHandler),
		),
		gatherer:    registry,
		checks:      checks,
		corsOrigins: cfg.CORSOrigins,
	})

	return httpserver.New(cfg.HTTP, httpserver.WithLogger(log)).Run(context.Background(), router)
}
