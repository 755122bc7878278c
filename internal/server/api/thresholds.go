package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/repcount/internal/counter"
)

// ThresholdsHandler reads and tunes the detector thresholds.
type ThresholdsHandler struct {
	engine Engine
}

// NewThresholdsHandler creates a new ThresholdsHandler.
func NewThresholdsHandler(e Engine) *ThresholdsHandler {
	return &ThresholdsHandler{engine: e}
}

// ServeHTTP handles GET and PUT on /api/thresholds. A PUT body may omit
// fields; omitted fields keep their current value.
func (h *ThresholdsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.engine.Thresholds())
	case http.MethodPut:
		t := h.engine.Thresholds()
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := h.engine.SetThresholds(t); err != nil {
			if errors.Is(err, counter.ErrInvalidThresholds) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to save thresholds")
			return
		}
		writeJSON(w, http.StatusOK, t)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
