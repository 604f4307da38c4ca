package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const callerContextKey contextKey = "caller"

// ClientIP extracts the client IP from the request, respecting
// X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithCaller returns a context carrying the caller id from the gateway.
func WithCaller(ctx context.Context, callerID uuid.UUID) context.Context {
	return context.WithValue(ctx, callerContextKey, callerID)
}

// CallerFromContext returns the caller id from the request context; the
// second value is false when no caller id was attached.
func CallerFromContext(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(callerContextKey).(uuid.UUID)
	return id, ok
}
