package handler

import (
	"errors"
	"log/slog"

	"github.com/dmitrymomot/ignews/pkg/logger"
	"github.com/dmitrymomot/ignews/pkg/requestid"
)

// ErrorBody is the JSON shape of error responses.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// classify maps err to a status and a client-safe key. Anything that is
// not an HTTPError becomes a 500 without details.
func classify(err error) (int, string) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Key
	}
	return ErrInternal.Code, ErrInternal.Key
}

// NewErrorHandler logs the error and answers with ErrorBody.
// 4xx are logged at warn, everything else at error.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		status, key := classify(err)

		level := slog.LevelError
		if status >= 400 && status < 500 {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)

		body := ErrorBody{Error: key, RequestID: requestid.FromContext(r.Context())}
		if renderErr := JSON(body, WithJSONStatus(status)).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
