package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api"
	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/auth"
	"github.com/kopiteras/cafe/internal/order"
)

type stubPinger struct{ err error }

func (p *stubPinger) Ping(_ context.Context) error { return p.err }

type stubOrderRepo struct {
	order.Repository
	stats *order.Stats
}

func (r *stubOrderRepo) Stats(_ context.Context) (*order.Stats, error) {
	return r.stats, nil
}

var routerTokens = auth.NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), "cafe-test", time.Hour)

func newTestRouter() http.Handler {
	return api.NewRouter(api.RouterDeps{
		DBPinger:    &stubPinger{},
		Version:     "test",
		AuthService: auth.NewService(nil, routerTokens, 4),
		Orders:      &stubOrderRepo{stats: &order.Stats{TotalOrders: 3, TotalRevenue: 90000}},
	})
}

func tokenFor(t *testing.T, role account.Role) string {
	t.Helper()
	token, _, err := routerTokens.Sign(&auth.Identity{AccountID: 1, Email: "sam@cafe.test", Name: "Sam", Role: role})
	require.NoError(t, err)
	return token
}

func TestRouter_AdminGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		role       account.Role
		wantStatus int
	}{
		{name: "no session", wantStatus: http.StatusUnauthorized},
		{name: "user session", role: account.RoleUser, wantStatus: http.StatusUnauthorized},
		{name: "admin session", role: account.RoleAdmin, wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			router := newTestRouter()
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tc.role != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tokenFor(t, tc.role)})
			}
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestRouter_FederatedRoutesAbsentWithoutProvider(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/auth/oidc/login", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_HealthSetsRequestID(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var env struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "healthy", env.Data.Status)
}
