package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/repcount/internal/counter"
	"github.com/ayusman/repcount/internal/tracker"
)

// stubEngine is a fixed api.Engine used to check routing.
type stubEngine struct {
	enabled bool
}

func (e *stubEngine) Counts() []tracker.PersonCounts {
	return []tracker.PersonCounts{{Person: 0, Counts: map[counter.Kind]int{counter.KindSquat: 4}}}
}
func (e *stubEngine) ResetCounts()                           {}
func (e *stubEngine) Thresholds() counter.Thresholds         { return counter.DefaultThresholds() }
func (e *stubEngine) SetThresholds(counter.Thresholds) error { return nil }
func (e *stubEngine) IsEnabled() bool                        { return e.enabled }
func (e *stubEngine) SetEnabled(enabled bool)                { e.enabled = enabled }

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("reports status, uptime and clients", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var response struct {
			Status  string `json:"status"`
			Uptime  string `json:"uptime"`
			Clients int    `json:"clients"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Status != "ok" || response.Uptime == "" || response.Clients != 0 {
			t.Errorf("unexpected health response %+v", response)
		}
	})

	t.Run("rejects other methods", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(method, "/api/health", nil))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_Routes(t *testing.T) {
	withEngine := New(Config{Engine: &stubEngine{enabled: true}})
	bare := New(Config{})

	tests := []struct {
		name   string
		server *Server
		path   string
		want   int
	}{
		{name: "counts with engine", server: withEngine, path: "/api/counts", want: http.StatusOK},
		{name: "thresholds with engine", server: withEngine, path: "/api/thresholds", want: http.StatusOK},
		{name: "counts need an engine", server: bare, path: "/api/counts", want: http.StatusNotFound},
		{name: "thresholds need an engine", server: bare, path: "/api/thresholds", want: http.StatusNotFound},
		{name: "sessions need a store", server: bare, path: "/api/sessions", want: http.StatusNotFound},
		{name: "stream needs frames", server: bare, path: "/api/stream", want: http.StatusNotFound},
		{name: "unknown api path", server: withEngine, path: "/api/gestures", want: http.StatusNotFound},
		{name: "root without static dir", server: bare, path: "/", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.want, rec.Code)
			}
		})
	}
}

func TestServer_CountsFromEngine(t *testing.T) {
	s := New(Config{Engine: &stubEngine{enabled: true}})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/counts", nil))

	var response struct {
		Enabled bool                   `json:"enabled"`
		People  []tracker.PersonCounts `json:"people"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Enabled || len(response.People) != 1 || response.People[0].Counts[counter.KindSquat] != 4 {
		t.Errorf("unexpected counts response %+v", response)
	}
}

func TestServer_Dashboard(t *testing.T) {
	webDir := t.TempDir()
	files := map[string]string{
		"index.html": "<html><body>repcount</body></html>",
		"app.js":     "connect('/api/events');",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(webDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	s := New(Config{StaticDir: webDir})

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{path: "/", wantCode: http.StatusOK, wantBody: files["index.html"]},
		{path: "/app.js", wantCode: http.StatusOK, wantBody: files["app.js"]},
		{path: "/missing.css", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestServer_PublishWithoutClients(t *testing.T) {
	s := New(Config{})

	// Must not block or panic.
	s.Publish(nil)
	s.Publish([]tracker.Event{{Person: 0, Kind: counter.KindJump, Count: 1}})
}

func TestServer_ShutdownBeforeListen(t *testing.T) {
	s := New(Config{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
