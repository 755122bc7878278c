// Package plugin runs external programs when repetitions are counted.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// For every matching repetition the executable is started with one JSON
// Request on stdin and must print one JSON Response on stdout.
package plugin

import "encoding/json"

// EventRepetition is the only event type sent to plugins today.
const EventRepetition = "repetition"

// Manifest describes a plugin and the repetitions it wants to hear about.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`

	// Kinds limits the plugin to some movement kinds. Empty means all.
	Kinds []string `json:"kinds,omitempty"`

	// Every fires the plugin only when the count is a multiple of Every,
	// e.g. 10 for every tenth squat. Zero or one means every repetition.
	Every int `json:"every,omitempty"`

	// Config is passed back verbatim in every Request.
	Config json.RawMessage `json:"config,omitempty"`
}

// Request is what a plugin receives on stdin.
type Request struct {
	Event     string          `json:"event"`
	SessionID string          `json:"session_id,omitempty"`
	Person    int             `json:"person"`
	Kind      string          `json:"kind"`
	Count     int             `json:"count"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Wants reports whether the plugin subscribes to a count of kind.
func (p *Plugin) Wants(kind string, count int) bool {
	if count <= 0 {
		return false
	}
	if len(p.Manifest.Kinds) > 0 {
		found := false
		for _, k := range p.Manifest.Kinds {
			if k == kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return p.Manifest.Every <= 1 || count%p.Manifest.Every == 0
}
