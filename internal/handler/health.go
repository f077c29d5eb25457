package handler

import (
	"net/http"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetOpenAPI handles GET /openapi.yaml with the embedded API document.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	if len(s.openAPI) == 0 {
		writeError(w, http.StatusNotFound, codeNotFound, "api document not bundled")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.openAPI)
}

// ListFilters handles GET /filters.
func (s *Server) ListFilters(w http.ResponseWriter, _ *http.Request) {
	filters := s.filters.List()
	if filters == nil {
		filters = []domain.Filter{}
	}
	writeJSON(w, http.StatusOK, filters)
}
