package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
)

// OpenAPIHandler serves the embedded YAML document as JSON.
type OpenAPIHandler struct {
	toJSON func() ([]byte, error)
}

// NewOpenAPIHandler creates a handler that converts yamlDoc on first request and caches the result.
func NewOpenAPIHandler(yamlDoc []byte) *OpenAPIHandler {
	return &OpenAPIHandler{
		toJSON: sync.OnceValues(func() ([]byte, error) {
			return yaml.YAMLToJSON(yamlDoc)
		}),
	}
}

func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc, err := h.toJSON()
	if err != nil {
		slog.Error("openapi document is not valid YAML", "error", err)
		response.Internal(w, "Failed to render API document", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		slog.Error("failed to write openapi document", "error", err)
	}
}
