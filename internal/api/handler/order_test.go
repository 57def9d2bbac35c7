package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api/handler"
	"github.com/kopiteras/cafe/internal/metrics"
	"github.com/kopiteras/cafe/internal/order"
)

// --- Mock Order Repository ---

type mockOrderRepo struct {
	checkoutFn     func(ctx context.Context, userID int64) (*order.Order, error)
	listByUserFn   func(ctx context.Context, userID int64) ([]order.Order, error)
	listAllFn      func(ctx context.Context) ([]order.Order, error)
	updateStatusFn func(ctx context.Context, id int64, status order.Status) (*order.Order, error)
	statsFn        func(ctx context.Context) (*order.Stats, error)
}

func (m *mockOrderRepo) Checkout(ctx context.Context, userID int64) (*order.Order, error) {
	if m.checkoutFn != nil {
		return m.checkoutFn(ctx, userID)
	}
	return nil, order.ErrEmptyCart
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []order.Order{}, nil
}

func (m *mockOrderRepo) ListAll(ctx context.Context) ([]order.Order, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return []order.Order{}, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) Stats(ctx context.Context) (*order.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &order.Stats{}, nil
}

func sampleOrder(id, userID int64) *order.Order {
	now := time.Now().UTC()
	menuID := int64(10)
	return &order.Order{
		ID:          id,
		UserID:      userID,
		TotalAmount: 56000,
		Status:      order.StatusPending,
		Items:       []order.Item{{MenuItemID: &menuID, Name: "Latte", Quantity: 2, UnitPrice: 28000}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ===== POST /api/orders =====

func TestCheckout_Success(t *testing.T) {
	t.Parallel()

	repo := &mockOrderRepo{
		checkoutFn: func(_ context.Context, userID int64) (*order.Order, error) {
			return sampleOrder(100, userID), nil
		},
	}
	h := handler.NewOrderHandler(repo, nil)
	req, w := makeChiRequest(http.MethodPost, "/api/orders", nil, "/api/orders", nil)
	req = asUser(req, 42, "joko@cafe.test", account.RoleUser)

	h.Checkout(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["user_id"])
	assert.Equal(t, "pending", data["status"])
	assert.Len(t, data["items"], 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	h := handler.NewOrderHandler(&mockOrderRepo{}, m)
	req, w := makeChiRequest(http.MethodPost, "/api/orders", nil, "/api/orders", nil)
	req = asUser(req, 42, "joko@cafe.test", account.RoleUser)

	h.Checkout(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errObj := errorObject(t, w)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Equal(t, "Cart is empty", errObj["message"])
}

// ===== GET /api/orders =====

func TestListMine_ScopedToCaller(t *testing.T) {
	t.Parallel()

	repo := &mockOrderRepo{
		listByUserFn: func(_ context.Context, userID int64) ([]order.Order, error) {
			return []order.Order{*sampleOrder(1, userID)}, nil
		},
		listAllFn: func(_ context.Context) ([]order.Order, error) {
			t.Fatal("ListAll must not be used for a customer's history")
			return nil, nil
		},
	}
	h := handler.NewOrderHandler(repo, nil)
	req, w := makeChiRequest(http.MethodGet, "/api/orders", nil, "/api/orders", nil)
	req = asUser(req, 42, "joko@cafe.test", account.RoleUser)

	h.ListMine(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, float64(42), data[0].(map[string]interface{})["user_id"])
}

// ===== GET /api/admin/orders =====

func TestListAll_IncludesCustomer(t *testing.T) {
	t.Parallel()

	repo := &mockOrderRepo{
		listAllFn: func(_ context.Context) ([]order.Order, error) {
			o := sampleOrder(1, 42)
			o.UserName = strPtr("Joko")
			o.UserEmail = "joko@cafe.test"
			return []order.Order{*o}, nil
		},
	}
	h := handler.NewOrderHandler(repo, nil)
	req, w := makeChiRequest(http.MethodGet, "/api/admin/orders", nil, "/api/admin/orders", nil)

	h.ListAll(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	first := parseEnvelope(t, w)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Joko", first["user_name"])
	assert.Equal(t, "joko@cafe.test", first["user_email"])
}

// ===== PUT /api/admin/orders/{id} =====

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		id         string
		body       string
		repoErr    error
		wantStatus int
	}{
		{name: "success", id: "5", body: `{"status":"completed"}`, wantStatus: http.StatusOK},
		{name: "unknown status", id: "5", body: `{"status":"shipped"}`, wantStatus: http.StatusBadRequest},
		{name: "missing status", id: "5", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "invalid id", id: "abc", body: `{"status":"completed"}`, wantStatus: http.StatusBadRequest},
		{name: "not found", id: "5", body: `{"status":"completed"}`, repoErr: order.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockOrderRepo{
				updateStatusFn: func(_ context.Context, id int64, status order.Status) (*order.Order, error) {
					if tc.repoErr != nil {
						return nil, tc.repoErr
					}
					o := sampleOrder(id, 42)
					o.Status = status
					return o, nil
				},
			}
			h := handler.NewOrderHandler(repo, nil)
			req, w := makeChiRequest(http.MethodPut, "/api/admin/orders/"+tc.id, []byte(tc.body), "/api/admin/orders/{id}", map[string]string{"id": tc.id})

			h.UpdateStatus(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusOK {
				data := parseEnvelope(t, w)["data"].(map[string]interface{})
				assert.Equal(t, "completed", data["status"])
			}
		})
	}
}

// ===== GET /api/admin/stats =====

func TestStats(t *testing.T) {
	t.Parallel()

	repo := &mockOrderRepo{
		statsFn: func(_ context.Context) (*order.Stats, error) {
			return &order.Stats{
				TotalUsers:        4,
				TotalMenuItems:    12,
				TotalOrders:       2,
				TotalRevenue:      90000,
				AverageOrderValue: 45000,
				RecentActivity: []order.Activity{
					{OrderID: 2, UserName: "Joko", Status: order.StatusPending, Amount: 50000, CreatedAt: time.Now()},
				},
			}, nil
		},
	}
	h := handler.NewOrderHandler(repo, nil)
	req, w := makeChiRequest(http.MethodGet, "/api/admin/stats", nil, "/api/admin/stats", nil)

	h.Stats(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, float64(4), summary["totalUsers"])
	assert.Equal(t, float64(90000), summary["totalRevenue"])
	assert.Equal(t, float64(45000), summary["aov"])

	activity := data["recentActivity"].([]interface{})
	require.Len(t, activity, 1)
	first := activity[0].(map[string]interface{})
	assert.Equal(t, "Joko", first["user"])
	assert.True(t, strings.HasSuffix(first["time"].(string), "Z"))
}
