package middleware

import (
	"net/http"

	logpkg "github.com/kyu1c/abstract-analysis-Public/internal/logger"
	"github.com/kyu1c/abstract-analysis-Public/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CallerIDHeader carries the caller's id, set by the upstream gateway after
// it has authenticated the request. This service trusts the gateway;
// authentication itself lives outside it.
const CallerIDHeader = "X-User-ID"

// Caller extracts the caller id header, validates it as a UUID, and attaches
// it to the request context. Requests without a valid caller id are
// rejected.
func Caller(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(CallerIDHeader)
			if raw == "" {
				http.Error(w, "missing "+CallerIDHeader+" header", http.StatusUnauthorized)
				return
			}

			callerID, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn("invalid_caller_id_header",
					zap.String("caller_id", logpkg.SanitizeID(raw)),
				)
				http.Error(w, "invalid "+CallerIDHeader+" header", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithCaller(r.Context(), callerID)))
		})
	}
}
