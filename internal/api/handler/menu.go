package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/api/validation"
	"github.com/kopiteras/cafe/internal/menu"
)

type menuItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       *int64  `json:"price"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"image_url"`
}

type menuItemResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"image_url"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toMenuItemResponse(it *menu.Item) menuItemResponse {
	return menuItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Category:    it.Category,
		ImageURL:    it.ImageURL,
		CreatedAt:   formatTime(it.CreatedAt),
		UpdatedAt:   formatTime(it.UpdatedAt),
	}
}

// MenuHandler handles the public menu and its administration.
type MenuHandler struct {
	repo menu.Repository
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(repo menu.Repository) *MenuHandler {
	return &MenuHandler{repo: repo}
}

// List handles GET /api/menu[?category=].
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, menu.ListFilter{Category: r.URL.Query().Get("category")})
}

// AdminList handles GET /api/admin/menu, ordered by category then name.
func (h *MenuHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, menu.ListFilter{ByCategory: true})
}

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request, filter menu.ListFilter) {
	requestID := middleware.GetRequestID(r.Context())

	items, err := h.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list menu", "error", err)
		response.Internal(w, "Failed to list menu items", requestID)
		return
	}

	out := make([]menuItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toMenuItemResponse(&items[i]))
	}
	response.List(w, out, requestID)
}

// Get handles GET /api/menu/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	it, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Menu item not found", requestID)
			return
		}
		slog.Error("failed to get menu item", "error", err, "id", id)
		response.Internal(w, "Failed to get menu item", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMenuItemResponse(it), requestID)
}

// Create handles POST /api/admin/menu.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	it, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	if err := h.repo.Create(r.Context(), it); err != nil {
		slog.Error("failed to create menu item", "error", err)
		response.Internal(w, "Failed to create menu item", requestID)
		return
	}

	slog.Info("menu item created", "id", it.ID, "category", it.Category)
	response.Success(w, http.StatusCreated, toMenuItemResponse(it), requestID)
}

// Update handles PUT /api/admin/menu/{id}.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	it, ok := h.decodeItem(w, r)
	if !ok {
		return
	}
	it.ID = id

	if err := h.repo.Update(r.Context(), it); err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Menu item not found", requestID)
			return
		}
		slog.Error("failed to update menu item", "error", err, "id", id)
		response.Internal(w, "Failed to update menu item", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMenuItemResponse(it), requestID)
}

// Delete handles DELETE /api/admin/menu/{id}.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Menu item not found", requestID)
			return
		}
		slog.Error("failed to delete menu item", "error", err, "id", id)
		response.Internal(w, "Failed to delete menu item", requestID)
		return
	}

	slog.Info("menu item deleted", "id", id)
	response.NoContent(w)
}

func (h *MenuHandler) decodeItem(w http.ResponseWriter, r *http.Request) (*menu.Item, bool) {
	var req menuItemRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}

	if errs := validation.ValidateMenuItemRequest(validation.MenuItemRequest{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}); len(errs) > 0 {
		validationFailed(w, r, errs)
		return nil, false
	}

	it := &menu.Item{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       *req.Price,
		Category:    req.Category,
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		it.ImageURL = req.ImageURL
	}
	return it, true
}
