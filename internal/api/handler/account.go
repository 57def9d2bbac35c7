package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/api/validation"
	"github.com/kopiteras/cafe/internal/auth"
)

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// AccountHandler handles account administration.
type AccountHandler struct {
	svc      *auth.Service
	accounts account.Repository
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *auth.Service, accounts account.Repository) *AccountHandler {
	return &AccountHandler{svc: svc, accounts: accounts}
}

// List handles GET /api/admin/users.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		slog.Error("failed to list accounts", "error", err)
		response.Internal(w, "Failed to list users", requestID)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	response.List(w, out, requestID)
}

// Create handles POST /api/admin/users. Unlike public signup the caller may
// choose the role.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = string(account.RoleUser)
	}

	fieldErrors := validation.ValidateSignUpRequest(validation.SignUpRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	fieldErrors = append(fieldErrors, validation.ValidateRole(req.Role)...)
	if len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}

	a, err := h.svc.CreateAccount(r.Context(), auth.SignUpRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, account.Role(req.Role))
	if err != nil {
		if errors.Is(err, auth.ErrConflict) {
			response.Err(w, http.StatusConflict, "CONFLICT", "An account with this email already exists", requestID)
			return
		}
		slog.Error("failed to create account", "error", err)
		response.Internal(w, "Failed to create user", requestID)
		return
	}

	creator := middleware.GetIdentity(r.Context())
	if creator != nil {
		slog.Info("account created by admin", "accountId", a.ID, "role", a.Role, "adminId", creator.AccountID)
	}
	response.Success(w, http.StatusCreated, toAccountResponse(a), requestID)
}

// SetRole handles PUT /api/admin/users/{id}/role. The affected user's existing
// sessions keep their previous role until they are refreshed.
func (h *AccountHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	var req setRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateRole(req.Role); len(errs) > 0 {
		validationFailed(w, r, errs)
		return
	}

	a, err := h.svc.SetRole(r.Context(), id, account.Role(req.Role))
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to set role", "error", err, "accountId", id)
		response.Internal(w, "Failed to update role", requestID)
		return
	}

	response.Success(w, http.StatusOK, toAccountResponse(a), requestID)
}
