package middleware

import (
	"log/slog"
	"net/http"

	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/metrics"
)

// RequireAdmin returns middleware that rejects identities without the admin
// role. Rejections are 401 UNAUTHORIZED; the caller's email and role are
// logged and never echoed in the response.
func RequireAdmin(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				m.RecordDenial("unauthenticated")
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			if !identity.IsAdmin() {
				slog.Warn("admin access denied",
					"email", identity.Email,
					"role", identity.Role,
					"tokenId", identity.TokenID,
					"path", r.URL.Path,
					"requestId", requestID,
				)
				m.RecordDenial("forbidden_role")
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
