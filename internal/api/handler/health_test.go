package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kopiteras/cafe/internal/api/handler"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error {
	return m.err
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		db            handler.DBPinger
		wantStatus    string
		wantConnected bool
	}{
		{name: "healthy", db: &mockPinger{}, wantStatus: "healthy", wantConnected: true},
		{name: "ping fails", db: &mockPinger{err: errors.New("connection refused")}, wantStatus: "degraded", wantConnected: false},
		{name: "no database", db: nil, wantStatus: "degraded", wantConnected: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			h := handler.NewHealthHandler(tc.db, "0.1.0")
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			// Act
			h.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			env := parseEnvelope(t, w)
			data := env["data"].(map[string]interface{})
			assert.Equal(t, tc.wantStatus, data["status"])
			assert.Equal(t, "0.1.0", data["version"])
			db := data["database"].(map[string]interface{})
			assert.Equal(t, tc.wantConnected, db["connected"])
			assert.Nil(t, env["error"])
		})
	}
}
