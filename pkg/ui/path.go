// Package ui holds server-rendered view helpers.
package ui

import (
	"context"
	"net/http"
)

type currentPathKey struct{}

// WithCurrentPath stores the request path used by ActiveLink.
func WithCurrentPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, currentPathKey{}, path)
}

// CurrentPath returns the path set by WithCurrentPath or "".
func CurrentPath(ctx context.Context) string {
	p, _ := ctx.Value(currentPathKey{}).(string)
	return p
}

// CurrentPathMiddleware puts r.URL.Path into the request context.
func CurrentPathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithCurrentPath(r.Context(), r.URL.Path)))
	})
}
