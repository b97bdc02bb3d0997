package middleware

import (
	"net/http"

	"github.com/daap14/teamhub/internal/api/response"
)

// CronVerifier checks the shared secret presented by the scheduler.
type CronVerifier interface {
	Verify(token string) bool
}

// RequireCronSecret returns middleware that only admits requests carrying
// the cron secret as a bearer token.
func RequireCronSecret(verifier CronVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token := BearerToken(r)
			if token == "" || !verifier.Verify(token) {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
