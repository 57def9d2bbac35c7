package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager([]byte(testSecret), "cafe-test", time.Hour)
}

func makeChiRequest(method, path string, body []byte, routePattern string, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		rctx.RoutePatterns = []string{routePattern}
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

// asUser attaches a resolved identity to req, as the session middleware would.
func asUser(req *http.Request, id int64, email string, role account.Role) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), &auth.Identity{
		AccountID: id,
		Email:     email,
		Name:      "Test",
		Role:      role,
	}))
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "response should carry an error object")
	return errObj
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func strPtr(s string) *string { return &s }

// --- Mock Account Repository ---

type mockAccountRepo struct {
	createFn        func(ctx context.Context, a *account.Account) error
	getByEmailFn    func(ctx context.Context, email string) (*account.Account, error)
	getByIDFn       func(ctx context.Context, id int64) (*account.Account, error)
	listFn          func(ctx context.Context) ([]account.Account, error)
	updateRoleFn    func(ctx context.Context, id int64, role account.Role) (*account.Account, error)
	updateProfileFn func(ctx context.Context, email string, upd account.ProfileUpdate) (*account.Account, error)
	countByRoleFn   func(ctx context.Context, role account.Role) (int, error)
}

func (m *mockAccountRepo) Create(ctx context.Context, a *account.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	now := time.Now().UTC()
	a.ID = 1
	a.CreatedAt, a.UpdatedAt, a.ImageUpdatedAt = now, now, now
	return nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, account.ErrNotFound
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, account.ErrNotFound
}

func (m *mockAccountRepo) List(ctx context.Context) ([]account.Account, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []account.Account{}, nil
}

func (m *mockAccountRepo) UpdateRole(ctx context.Context, id int64, role account.Role) (*account.Account, error) {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, id, role)
	}
	return nil, account.ErrNotFound
}

func (m *mockAccountRepo) UpdateProfile(ctx context.Context, email string, upd account.ProfileUpdate) (*account.Account, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, email, upd)
	}
	return nil, account.ErrNotFound
}

func (m *mockAccountRepo) CountAll(_ context.Context) (int, error) {
	return 0, nil
}

func (m *mockAccountRepo) CountByRole(ctx context.Context, role account.Role) (int, error) {
	if m.countByRoleFn != nil {
		return m.countByRoleFn(ctx, role)
	}
	return 0, nil
}

func sampleAccount(id int64, email string, role account.Role) *account.Account {
	now := time.Now().UTC()
	return &account.Account{
		ID:             id,
		Email:          email,
		Name:           strPtr("Rina"),
		Role:           role,
		ImageUpdatedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
