package util

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

const requestIDHeader = "X-Request-Id"

type requestIDContextKey struct{}

// WithRequestID reuses an incoming X-Request-Id or generates a fresh one.
// The id is echoed on the response header and stored in the request context,
// together with a child slog.Logger carrying "request_id" for
// LoggerFromContext callers.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = NewID()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, id)
		ctx = ContextWithLogger(ctx, slog.Default().With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// RequestIDFromRequest returns the request id from the request context.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return RequestIDFromContext(r.Context())
}
