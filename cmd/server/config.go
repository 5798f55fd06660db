package main

import (
	"errors"

	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/cookie"
	"github.com/dmitrymomot/ignews/pkg/httpserver"
	"github.com/dmitrymomot/ignews/pkg/mongo"
	"github.com/dmitrymomot/ignews/pkg/redis"
	"github.com/dmitrymomot/ignews/pkg/session"
	"github.com/dmitrymomot/ignews/pkg/subscription"
	"github.com/dmitrymomot/ignews/svc/billing"
)

// Config is the whole process configuration, loaded once in main.
type Config struct {
	AppName     string   `env:"APP_NAME" envDefault:"ignews"`
	AppEnv      string   `env:"APP_ENV" envDefault:"development"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	HTTP    httpserver.Config
	Mongo   mongo.Config
	Redis   redis.Config
	Cookie  cookie.Config
	Session session.Config
	GitHub  auth.GitHubConfig
	Stripe  subscription.StripeConfig
	Webhook billing.Config
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Webhook.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Stripe.PriceID == "" {
		errs = append(errs, errors.New("STRIPE_PRICE_ID is required"))
	}
	if len(c.CORSOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin"))
	}
	return errors.Join(errs...)
}
