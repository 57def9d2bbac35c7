package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/api/validation"
)

// avatarPath is the authenticated avatar endpoint. Clients that echo it back
// on profile update leave the stored avatar unchanged.
const avatarPath = "/api/profile/image"

// maxProfileBodyBytes allows inline data: avatars.
const maxProfileBodyBytes = 4 << 20

type updateProfileRequest struct {
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

type profileResponse struct {
	ID            int64   `json:"id"`
	Name          *string `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	Image         *string `json:"image"`
	EmailVerified *string `json:"emailVerified"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func toProfileResponse(a *account.Account) profileResponse {
	resp := profileResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      string(a.Role),
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
	if a.Image != nil && *a.Image != "" {
		img := fmt.Sprintf("%s?t=%d", avatarPath, a.ImageUpdatedAt.UnixMilli())
		resp.Image = &img
	}
	if a.EmailVerified != nil {
		v := formatTime(*a.EmailVerified)
		resp.EmailVerified = &v
	}
	return resp
}

// ProfileHandler handles the caller's own profile and avatar.
type ProfileHandler struct {
	accounts account.Repository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(accounts account.Repository) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	a, err := h.accounts.GetByEmail(r.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Account not found", requestID)
			return
		}
		slog.Error("failed to load profile", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to load profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(a), requestID)
}

// Update handles PUT /api/profile. The name is required. The avatar is
// replaced only when an image is submitted that is not the avatar endpoint
// itself; an empty string clears it.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decodeJSONLimit(w, r, &req, maxProfileBodyBytes) {
		return
	}

	fieldErrors := validation.ValidateProfileName(req.Name)
	upd := account.ProfileUpdate{Name: strings.TrimSpace(req.Name)}
	if req.Image != nil && !strings.HasPrefix(*req.Image, avatarPath) {
		fieldErrors = append(fieldErrors, validation.ValidateAvatar(*req.Image)...)
		upd.Image = req.Image
	}
	if len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}

	a, err := h.accounts.UpdateProfile(r.Context(), identity.Email, upd)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Account not found", requestID)
			return
		}
		slog.Error("failed to update profile", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to update profile", requestID)
		return
	}

	slog.Info("profile updated", "accountId", a.ID, "imageChanged", upd.Image != nil)
	response.Success(w, http.StatusOK, toProfileResponse(a), requestID)
}

// Image handles GET /api/profile/image. Inline data: avatars are decoded and
// served with an immutable cache header (the URL is versioned); URL avatars
// redirect; no avatar is 404.
func (h *ProfileHandler) Image(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	a, err := h.accounts.GetByEmail(r.Context(), identity.Email)
	if err != nil && !errors.Is(err, account.ErrNotFound) {
		slog.Error("failed to load avatar", "error", err, "accountId", identity.AccountID)
		response.Internal(w, "Failed to load avatar", requestID)
		return
	}
	if a == nil || a.Image == nil || *a.Image == "" {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "No avatar", requestID)
		return
	}

	img := *a.Image
	if !strings.HasPrefix(img, "data:") {
		http.Redirect(w, r, img, http.StatusFound)
		return
	}

	contentType, data, err := decodeDataURI(img)
	if err != nil {
		slog.Warn("stored avatar is not a valid data URI", "accountId", a.ID, "error", err)
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "No avatar", requestID)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write avatar", "error", err)
	}
}
