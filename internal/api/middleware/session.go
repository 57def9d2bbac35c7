package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/auth"
	"github.com/kopiteras/cafe/internal/metrics"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "cafe_session"

const identityKey contextKey = "identity"

// SessionResolver turns a session token into an identity.
type SessionResolver interface {
	ResolveRequest(token string) (*auth.Identity, error)
}

// TokenFromRequest returns the session token from the session cookie or, for
// API clients, from an "Authorization: Bearer" header. The cookie wins.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Session is middleware that resolves the session token to an Identity and
// stores it in the request context. Missing or invalid tokens return 401.
// The account store is not consulted.
func Session(resolver SessionResolver, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token := TokenFromRequest(r)
			if token == "" {
				m.RecordDenial("unauthenticated")
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			identity, err := resolver.ResolveRequest(token)
			if err != nil {
				slog.Debug("session rejected", "error", err, "requestId", requestID)
				m.RecordDenial("invalid_session")
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", requestID)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
