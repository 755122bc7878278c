// Package api provides the JSON HTTP handlers of the repetition counter.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/repcount/internal/counter"
	"github.com/ayusman/repcount/internal/tracker"
)

// Engine is the live counting state the API reads and tunes.
type Engine interface {
	Counts() []tracker.PersonCounts
	ResetCounts()
	Thresholds() counter.Thresholds
	SetThresholds(t counter.Thresholds) error
	IsEnabled() bool
	SetEnabled(enabled bool)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
