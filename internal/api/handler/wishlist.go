package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/wishlist"
)

type wishlistToggleRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
}

type wishlistEntryResponse struct {
	WishlistID int64   `json:"wishlist_id"`
	MenuItemID int64   `json:"id"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	Image      *string `json:"image"`
}

type wishlistToggleResponse struct {
	MenuItemID int64  `json:"menu_item_id"`
	Action     string `json:"action"`
}

// WishlistHandler handles the caller's wishlist.
type WishlistHandler struct {
	repo wishlist.Repository
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(repo wishlist.Repository) *WishlistHandler {
	return &WishlistHandler{repo: repo}
}

// List handles GET /api/wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	entries, err := h.repo.List(r.Context(), identity.AccountID)
	if err != nil {
		slog.Error("failed to list wishlist", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to load wishlist", requestID)
		return
	}

	out := make([]wishlistEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, wishlistEntryResponse{
			WishlistID: e.ID,
			MenuItemID: e.MenuItemID,
			Name:       e.Name,
			Price:      e.Price,
			Image:      e.ImageURL,
		})
	}
	response.List(w, out, requestID)
}

// Toggle handles POST /api/wishlist: 201 when the item was added, 200 when removed.
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req wishlistToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MenuItemID <= 0 {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "menu_item_id is required", requestID)
		return
	}

	result, err := h.repo.Toggle(r.Context(), identity.AccountID, req.MenuItemID)
	if err != nil {
		if errors.Is(err, wishlist.ErrUnknownMenuItem) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Menu item not found", requestID)
			return
		}
		slog.Error("failed to toggle wishlist", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to update wishlist", requestID)
		return
	}

	status := http.StatusOK
	if result == wishlist.Added {
		status = http.StatusCreated
	}
	response.Success(w, status, wishlistToggleResponse{MenuItemID: req.MenuItemID, Action: string(result)}, requestID)
}

// Delete handles DELETE /api/wishlist?menu_item_id=.
func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	menuItemID, present, ok := int64Query(w, r, "menu_item_id")
	if !ok {
		return
	}
	if !present {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "menu_item_id is required", requestID)
		return
	}

	if err := h.repo.Remove(r.Context(), identity.AccountID, menuItemID); err != nil {
		slog.Error("failed to remove from wishlist", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to update wishlist", requestID)
		return
	}

	response.NoContent(w)
}
