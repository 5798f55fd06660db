// Package billing serves the Stripe webhook and the subscribe endpoint.
package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/ignews/handler"
	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/logger"
	"github.com/dmitrymomot/ignews/pkg/metrics"
	"github.com/dmitrymomot/ignews/pkg/session"
	"github.com/dmitrymomot/ignews/pkg/subscription"
)

// SignatureHeader carries the Stripe webhook signature.
const SignatureHeader = "Stripe-Signature"

// EventProcessor verifies and applies webhook events.
type EventProcessor interface {
	ParseWebhook(payload []byte, signature string) (subscription.Event, error)
	HandleEvent(ctx context.Context, event subscription.Event) error
}

// Checkout starts a checkout for the signed-in user.
type Checkout interface {
	StartCheckout(ctx context.Context, email string) (*subscription.CheckoutSession, error)
}

type Handler struct {
	events       EventProcessor
	checkout     Checkout
	sessions     *session.Manager
	cfg          Config
	metrics      metrics.Recorder
	logger       *slog.Logger
	errorHandler handler.ErrorHandler
}

type HandlerOption func(*Handler)

func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(m metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.metrics = m
		}
	}
}

func WithErrorHandler(eh handler.ErrorHandler) HandlerOption {
	return func(h *Handler) {
		if eh != nil {
			h.errorHandler = eh
		}
	}
}

func NewHandler(events EventProcessor, checkout Checkout, sessions *session.Manager, cfg Config, opts ...HandlerOption) *Handler {
	if cfg.FailureStatus == 0 {
		cfg.FailureStatus = http.StatusOK
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}

	h := &Handler{
		events:   events,
		checkout: checkout,
		sessions: sessions,
		cfg:      cfg,
		metrics:  metrics.Nop(),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.errorHandler == nil {
		h.errorHandler = handler.NewErrorHandler(h.logger)
	}
	return h
}

// Routes serves /webhooks and /subscribe, meant to be mounted at /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/webhooks", h.Webhook())
	r.Handle("/subscribe", h.Subscribe())
	return r
}

// Webhook handles Stripe deliveries. Only POST is accepted.
func (h *Handler) Webhook() http.Handler {
	return handler.AllowMethods(http.MethodPost)(handler.Wrap(h.webhook,
		handler.WithBinders[WebhookRequest](h.bindWebhook),
		handler.WithErrorHandler[WebhookRequest](h.errorHandler),
	))
}

// Subscribe starts a checkout for the signed-in user. Only POST is accepted.
func (h *Handler) Subscribe() http.Handler {
	return handler.AllowMethods(http.MethodPost)(h.sessions.RequireAuth(handler.Wrap(h.subscribe,
		handler.WithErrorHandler[struct{}](h.errorHandler),
	)))
}

// WebhookRequest is the raw delivery. The signature covers Payload byte
// for byte, so the body is never decoded before verification.
type WebhookRequest struct {
	Payload   []byte
	Signature string
}

type receivedBody struct {
	Received bool `json:"received"`
}

type failedBody struct {
	Error string `json:"error"`
}

func (h *Handler) bindWebhook(r *http.Request, v any) error {
	req, ok := v.(*WebhookRequest)
	if !ok {
		return fmt.Errorf("unexpected webhook target %T", v)
	}
	payload, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		return fmt.Errorf("read webhook body: %w", err)
	}
	req.Payload = payload
	req.Signature = r.Header.Get(SignatureHeader)
	return nil
}

func (h *Handler) webhook(ctx handler.Context, req WebhookRequest) handler.Response {
	start := time.Now()
	defer func() { h.metrics.RecordWebhookLatency(time.Since(start)) }()

	event, err := h.events.ParseWebhook(req.Payload, req.Signature)
	if err != nil {
		if errors.Is(err, subscription.ErrWebhookVerificationFailed) {
			h.logger.WarnContext(ctx, "webhook rejected", logger.Error(err))
			h.metrics.RecordWebhook("", metrics.WebhookInvalidSignature)
			return handler.Text(http.StatusBadRequest, "Webhook Error: "+err.Error())
		}
		h.logger.ErrorContext(ctx, "webhook payload unusable", logger.Error(err))
		h.metrics.RecordWebhook("", metrics.WebhookFailed)
		return h.failed()
	}

	log := h.logger.With(logger.EventID(event.ID()), logger.EventType(event.Type()))

	if err := h.events.HandleEvent(ctx, event); err != nil {
		log.ErrorContext(ctx, "webhook handler failed", logger.Error(err))
		h.metrics.RecordWebhook(event.Type(), metrics.WebhookFailed)
		return h.failed()
	}

	if _, ignored := event.(subscription.Ignored); ignored {
		log.DebugContext(ctx, "webhook event ignored")
		h.metrics.RecordWebhook(event.Type(), metrics.WebhookIgnored)
	} else {
		log.InfoContext(ctx, "webhook event processed")
		h.metrics.RecordWebhook(event.Type(), metrics.WebhookProcessed)
	}
	return handler.JSON(receivedBody{Received: true})
}

func (h *Handler) failed() handler.Response {
	return handler.JSON(failedBody{Error: "Webhook handler failed"}, handler.WithJSONStatus(h.cfg.FailureStatus))
}

func (h *Handler) subscribe(ctx handler.Context, _ struct{}) handler.Response {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}

	checkout, err := h.checkout.StartCheckout(ctx, sess.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return handler.Error(errors.Join(handler.ErrUnauthorized, err))
		}
		if errors.Is(err, subscription.ErrProviderError) {
			return handler.Error(errors.Join(handler.ErrBadGateway, err))
		}
		return handler.Error(err)
	}
	return handler.JSON(checkout)
}
