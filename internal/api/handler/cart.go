package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/api/validation"
	"github.com/kopiteras/cafe/internal/cart"
)

type cartItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   *int  `json:"quantity"`
}

type cartLineResponse struct {
	CartID     int64   `json:"cart_id"`
	MenuItemID int64   `json:"id"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	Image      *string `json:"image"`
	Quantity   int     `json:"quantity"`
	Subtotal   int64   `json:"subtotal"`
}

type cartLineChange struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// CartHandler handles the caller's cart.
type CartHandler struct {
	repo cart.Repository
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(repo cart.Repository) *CartHandler {
	return &CartHandler{repo: repo}
}

// List handles GET /api/cart.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	lines, err := h.repo.List(r.Context(), identity.AccountID)
	if err != nil {
		slog.Error("failed to list cart", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to load cart", requestID)
		return
	}

	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineResponse{
			CartID:     l.ID,
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Price:      l.Price,
			Image:      l.ImageURL,
			Quantity:   l.Quantity,
			Subtotal:   l.Subtotal(),
		})
	}
	response.List(w, out, requestID)
}

// Add handles POST /api/cart. Adding an item already in the cart increases its quantity.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateCartAdd(validation.CartItemRequest{MenuItemID: req.MenuItemID, Quantity: req.Quantity}); len(errs) > 0 {
		validationFailed(w, r, errs)
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	total, err := h.repo.Add(r.Context(), identity.AccountID, req.MenuItemID, qty)
	if err != nil {
		if errors.Is(err, cart.ErrUnknownMenuItem) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Menu item not found", requestID)
			return
		}
		slog.Error("failed to add to cart", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to add to cart", requestID)
		return
	}

	response.Success(w, http.StatusCreated, cartLineChange{MenuItemID: req.MenuItemID, Quantity: total}, requestID)
}

// Update handles PUT /api/cart. A quantity of zero or less removes the line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateCartUpdate(validation.CartItemRequest{MenuItemID: req.MenuItemID, Quantity: req.Quantity}); len(errs) > 0 {
		validationFailed(w, r, errs)
		return
	}

	var err error
	if *req.Quantity <= 0 {
		err = h.repo.Remove(r.Context(), identity.AccountID, req.MenuItemID)
	} else {
		err = h.repo.SetQuantity(r.Context(), identity.AccountID, req.MenuItemID, *req.Quantity)
	}
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Item not found in cart", requestID)
			return
		}
		slog.Error("failed to update cart", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to update cart", requestID)
		return
	}

	qty := *req.Quantity
	if qty < 0 {
		qty = 0
	}
	response.Success(w, http.StatusOK, cartLineChange{MenuItemID: req.MenuItemID, Quantity: qty}, requestID)
}

// Delete handles DELETE /api/cart[?menu_item_id=]. Without a menu item the whole cart is emptied.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	menuItemID, present, ok := int64Query(w, r, "menu_item_id")
	if !ok {
		return
	}

	var err error
	if present {
		err = h.repo.Remove(r.Context(), identity.AccountID, menuItemID)
	} else {
		err = h.repo.Clear(r.Context(), identity.AccountID)
	}
	if err != nil {
		slog.Error("failed to delete from cart", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to delete from cart", requestID)
		return
	}

	response.NoContent(w)
}
