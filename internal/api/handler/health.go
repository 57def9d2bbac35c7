package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
)

// DBPinger reports whether the database is reachable.
type DBPinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
	}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP reports "healthy" when the database answers a ping and "degraded" otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	connected := false
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := h.db.Ping(ctx)
		cancel()
		if err != nil {
			slog.Warn("health check: database ping failed", "error", err)
		}
		connected = err == nil
	}

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	response.Success(w, http.StatusOK, healthData{
		Status:   status,
		Version:  h.version,
		Database: databaseStatus{Connected: connected},
	}, requestID)
}
