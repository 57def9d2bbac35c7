package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/api/validation"
	"github.com/kopiteras/cafe/internal/metrics"
	"github.com/kopiteras/cafe/internal/order"
)

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	MenuItemID *int64 `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

type orderResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	UserName    *string             `json:"user_name,omitempty"`
	UserEmail   string              `json:"user_email,omitempty"`
	TotalAmount int64               `json:"total_amount"`
	Status      string              `json:"status"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}
	return orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		UserName:    o.UserName,
		UserEmail:   o.UserEmail,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Items:       items,
		CreatedAt:   formatTime(o.CreatedAt),
		UpdatedAt:   formatTime(o.UpdatedAt),
	}
}

type activityResponse struct {
	OrderID int64  `json:"orderId"`
	Type    string `json:"type"`
	User    string `json:"user"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount"`
	Time    string `json:"time"`
}

type statsSummaryResponse struct {
	TotalUsers     int     `json:"totalUsers"`
	TotalMenuItems int     `json:"totalMenuItems"`
	TotalOrders    int     `json:"totalOrders"`
	TotalRevenue   int64   `json:"totalRevenue"`
	AOV            float64 `json:"aov"`
}

type statsResponse struct {
	Summary        statsSummaryResponse `json:"summary"`
	RecentActivity []activityResponse   `json:"recentActivity"`
}

// OrderHandler handles checkout, order history, order administration and dashboard stats.
type OrderHandler struct {
	repo    order.Repository
	metrics *metrics.Metrics
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(repo order.Repository, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{repo: repo, metrics: m}
}

// Checkout handles POST /api/orders.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	o, err := h.repo.Checkout(r.Context(), identity.AccountID)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			h.metrics.RecordCheckout("empty_cart")
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Cart is empty", requestID)
			return
		}
		h.metrics.RecordCheckout(metrics.OutcomeError)
		slog.Error("checkout failed", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to place order", requestID)
		return
	}

	h.metrics.RecordCheckout(metrics.OutcomeSuccess)
	slog.Info("order placed", "orderId", o.ID, "accountId", identity.AccountID, "total", o.TotalAmount)
	response.Success(w, http.StatusCreated, toOrderResponse(o), requestID)
}

// ListMine handles GET /api/orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	orders, err := h.repo.ListByUser(r.Context(), identity.AccountID)
	h.writeOrders(w, r, orders, err)
}

// ListAll handles GET /api/admin/orders.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.ListAll(r.Context())
	h.writeOrders(w, r, orders, err)
}

func (h *OrderHandler) writeOrders(w http.ResponseWriter, r *http.Request, orders []order.Order, err error) {
	requestID := middleware.GetRequestID(r.Context())
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		response.Internal(w, "Failed to list orders", requestID)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	response.List(w, out, requestID)
}

// UpdateStatus handles PUT /api/admin/orders/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateOrderStatus(req.Status); len(errs) > 0 {
		validationFailed(w, r, errs)
		return
	}

	o, err := h.repo.UpdateStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Order not found", requestID)
			return
		}
		slog.Error("failed to update order status", "error", err, "orderId", id)
		response.Internal(w, "Failed to update order", requestID)
		return
	}

	slog.Info("order status changed", "orderId", id, "status", o.Status)
	response.Success(w, http.StatusOK, toOrderResponse(o), requestID)
}

// Stats handles GET /api/admin/stats.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	s, err := h.repo.Stats(r.Context())
	if err != nil {
		slog.Error("failed to compute stats", "error", err)
		response.Internal(w, "Failed to load statistics", requestID)
		return
	}

	activity := make([]activityResponse, 0, len(s.RecentActivity))
	for _, a := range s.RecentActivity {
		activity = append(activity, activityResponse{
			OrderID: a.OrderID,
			Type:    "order",
			User:    a.UserName,
			Status:  string(a.Status),
			Amount:  a.Amount,
			Time:    formatTime(a.CreatedAt),
		})
	}

	response.Success(w, http.StatusOK, statsResponse{
		Summary: statsSummaryResponse{
			TotalUsers:     s.TotalUsers,
			TotalMenuItems: s.TotalMenuItems,
			TotalOrders:    s.TotalOrders,
			TotalRevenue:   s.TotalRevenue,
			AOV:            s.AverageOrderValue,
		},
		RecentActivity: activity,
	}, requestID)
}
