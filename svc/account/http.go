package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/ignews/handler"
	"github.com/dmitrymomot/ignews/pkg/auth"
	"github.com/dmitrymomot/ignews/pkg/binder"
	"github.com/dmitrymomot/ignews/pkg/logger"
	"github.com/dmitrymomot/ignews/pkg/session"
)

// Error codes passed to the error page.
const (
	ErrorAccessDenied  = "AccessDenied"
	ErrorOAuthCallback = "OAuthCallback"
	ErrorOAuthSignin   = "OAuthSignin"
	ErrorSessionFailed = "SessionRequired"
)

// OAuthFlow runs the authorization-code flow for one provider.
type OAuthFlow interface {
	ProviderID() string
	Begin(ctx context.Context) (string, error)
	Complete(ctx context.Context, code, state string) (auth.Identity, error)
}

// Handler serves the /api/auth endpoints.
type Handler struct {
	svc          *Service
	oauth        OAuthFlow
	sessions     *session.Manager
	errorHandler handler.ErrorHandler
	logger       *slog.Logger
	homeURL      string
	errorURL     string
}

type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
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

// WithRedirects sets where the callback sends users after success and failure.
func WithRedirects(homeURL, errorURL string) HandlerOption {
	return func(h *Handler) {
		if homeURL != "" {
			h.homeURL = homeURL
		}
		if errorURL != "" {
			h.errorURL = errorURL
		}
	}
}

func NewHandler(svc *Service, oauth OAuthFlow, sessions *session.Manager, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:      svc,
		oauth:    oauth,
		sessions: sessions,
		logger:   logger.Discard(),
		homeURL:  "/",
		errorURL: "/api/auth/error",
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.errorHandler == nil {
		h.errorHandler = handler.NewErrorHandler(h.logger)
	}
	return h
}

// Routes is meant to be mounted at /api/auth.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	provider := h.oauth.ProviderID()

	r.Get("/signin/"+provider, handler.Wrap(h.signin,
		handler.WithErrorHandler[struct{}](h.errorHandler),
	))
	r.Get("/callback/"+provider, handler.Wrap(h.callback,
		handler.WithBinders[CallbackRequest](binder.Query()),
		handler.WithErrorHandler[CallbackRequest](h.errorHandler),
	))
	r.Get("/session", handler.Wrap(h.session,
		handler.WithErrorHandler[struct{}](h.errorHandler),
	))
	r.Post("/signout", handler.Wrap(h.signout,
		handler.WithErrorHandler[struct{}](h.errorHandler),
	))
	r.Get("/error", handler.Wrap(h.errorPage,
		handler.WithBinders[ErrorRequest](binder.Query()),
		handler.WithErrorHandler[ErrorRequest](h.errorHandler),
	))
	return r
}

type CallbackRequest struct {
	Code  string `query:"code"`
	State string `query:"state"`
	Error string `query:"error"`
}

type ErrorRequest struct {
	Error string `query:"error"`
}

func (h *Handler) signin(ctx handler.Context, _ struct{}) handler.Response {
	authURL, err := h.oauth.Begin(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start oauth flow",
			logger.Provider(h.oauth.ProviderID()),
			logger.Error(err),
		)
		return h.fail(ErrorOAuthSignin)
	}
	return handler.RedirectWithCode(authURL, http.StatusFound)
}

func (h *Handler) callback(ctx handler.Context, req CallbackRequest) handler.Response {
	provider := h.oauth.ProviderID()

	if req.Error != "" {
		h.logger.InfoContext(ctx, "oauth authorization declined",
			logger.Provider(provider),
			slog.String("reason", req.Error),
		)
		return h.fail(ErrorAccessDenied)
	}

	identity, err := h.oauth.Complete(ctx, req.Code, req.State)
	if err != nil {
		h.logger.WarnContext(ctx, "oauth callback failed", logger.Provider(provider), logger.Error(err))
		if errors.Is(err, auth.ErrInvalidState) || errors.Is(err, auth.ErrInvalidCode) {
			return h.fail(ErrorAccessDenied)
		}
		return h.fail(ErrorOAuthCallback)
	}
	if identity.Provider == "" {
		identity.Provider = provider
	}

	user, ok := h.svc.signIn(ctx, identity)
	if !ok {
		return h.fail(ErrorAccessDenied)
	}

	if _, err := h.sessions.Authenticate(ctx, ctx.ResponseWriter(), ctx.Request(), user.ID, user.Email); err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", logger.UserID(user.ID), logger.Error(err))
		return h.fail(ErrorSessionFailed)
	}
	return handler.Redirect(h.homeURL)
}

func (h *Handler) session(ctx handler.Context, _ struct{}) handler.Response {
	sess, ok := session.FromContext(ctx)
	if !ok {
		var err error
		if sess, err = h.sessions.Get(ctx, ctx.Request()); err != nil {
			return handler.JSON(struct{}{})
		}
	}

	payload := h.svc.EnrichSession(ctx, SessionPayload{
		User:    SessionUser{Email: sess.Email},
		Expires: sess.ExpiresAt,
	})
	return handler.JSON(payload)
}

func (h *Handler) signout(ctx handler.Context, _ struct{}) handler.Response {
	if err := h.sessions.Destroy(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
		h.logger.WarnContext(ctx, "failed to delete session", logger.Error(err))
	}
	return handler.Redirect(h.homeURL)
}

func (h *Handler) errorPage(_ handler.Context, req ErrorRequest) handler.Response {
	code := req.Error
	if code == "" {
		code = "Default"
	}
	status := http.StatusBadRequest
	if code == ErrorAccessDenied {
		status = http.StatusForbidden
	}
	return handler.JSON(map[string]string{"error": code}, handler.WithJSONStatus(status))
}

func (h *Handler) fail(code string) handler.Response {
	return handler.Redirect(h.errorURL + "?error=" + url.QueryEscape(code))
}
