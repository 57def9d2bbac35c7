package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/auth"
)

const maxBodyBytes = 1 << 20

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// decodeJSON reads a size-limited JSON body into dst, writing INVALID_JSON on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeJSONLimit(w, r, dst, maxBodyBytes)
}

func decodeJSONLimit(w http.ResponseWriter, r *http.Request, dst any, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// int64Param parses a positive integer from the chi URL parameter name.
func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a positive integer", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}

// int64Query parses an optional positive integer query parameter. The second
// result is false when the parameter is absent.
func int64Query(w http.ResponseWriter, r *http.Request, name string) (int64, bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a positive integer", middleware.GetRequestID(r.Context()))
		return 0, false, false
	}
	return id, true, true
}

// requireIdentity returns the identity placed in the context by the session
// middleware, writing 401 when the route was mounted without it.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return identity, true
}

func validationFailed(w http.ResponseWriter, r *http.Request, details any) {
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, middleware.GetRequestID(r.Context()))
}
