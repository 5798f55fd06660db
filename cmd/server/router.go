package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/dmitrymomot/ignews/handler"
	"github.com/dmitrymomot/ignews/pkg/clientip"
	"github.com/dmitrymomot/ignews/pkg/httpserver"
	"github.com/dmitrymomot/ignews/pkg/metrics"
	"github.com/dmitrymomot/ignews/pkg/requestid"
	"github.com/dmitrymomot/ignews/pkg/session"
	"github.com/dmitrymomot/ignews/pkg/ui"
	"github.com/dmitrymomot/ignews/svc/account"
	"github.com/dmitrymomot/ignews/svc/billing"
)

type routerDeps struct {
	logger      *slog.Logger
	appName     string
	sessions    *session.Manager
	account     *account.Handler
	billing     *billing.Handler
	gatherer    prometheus.Gatherer
	checks      map[string]httpserver.Check
	corsOrigins []string
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(d.logger, d.checks))
	r.Handle("/metrics", metrics.Handler(d.gatherer))

	// Subscribe resolves the session itself, so only auth needs the middleware.
	r.Mount("/api", d.billing.Routes())
	r.With(d.sessions.Middleware).Mount("/api/auth", d.account.Routes())

	r.Group(func(pages chi.Router) {
		pages.Use(ui.CurrentPathMiddleware)
		pages.Get("/", page(d.appName, "News about the Go world."))
		pages.Get("/posts", page(d.appName, "Posts"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   d.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", requestid.Header},
		ExposedHeaders:   []string{requestid.Header},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func page(title, text string) http.HandlerFunc {
	return handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.Templ(ui.Page(title, ui.Text(text)))
	})
}
