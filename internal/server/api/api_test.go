package api

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/repcount/internal/counter"
	"github.com/ayusman/repcount/internal/store"
	"github.com/ayusman/repcount/internal/tracker"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// fakeEngine is an in-memory Engine.
type fakeEngine struct {
	mu         sync.Mutex
	people     []tracker.PersonCounts
	thresholds counter.Thresholds
	enabled    bool
	resets     int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{thresholds: counter.DefaultThresholds(), enabled: true}
}

func (e *fakeEngine) Counts() []tracker.PersonCounts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.people
}

func (e *fakeEngine) ResetCounts() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.people = nil
	e.resets++
}

func (e *fakeEngine) Thresholds() counter.Thresholds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thresholds
}

func (e *fakeEngine) SetThresholds(t counter.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thresholds = t
	return nil
}

func (e *fakeEngine) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

func (e *fakeEngine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}
