package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/repcount/internal/tracker"
)

// CountsHandler exposes the live per-person counts.
type CountsHandler struct {
	engine Engine
}

// NewCountsHandler creates a new CountsHandler.
func NewCountsHandler(e Engine) *CountsHandler {
	return &CountsHandler{engine: e}
}

type countsResponse struct {
	Enabled bool                   `json:"enabled"`
	People  []tracker.PersonCounts `json:"people"`
}

type updateCountsRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET (read), PUT (pause or resume) and DELETE (reset)
// on /api/counts.
func (h *CountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		var req updateCountsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.engine.SetEnabled(*req.Enabled)
		h.get(w)
	case http.MethodDelete:
		h.engine.ResetCounts()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CountsHandler) get(w http.ResponseWriter) {
	people := h.engine.Counts()
	if people == nil {
		people = []tracker.PersonCounts{}
	}
	writeJSON(w, http.StatusOK, countsResponse{Enabled: h.engine.IsEnabled(), People: people})
}
