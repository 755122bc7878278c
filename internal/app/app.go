// Package app wires a frame source, a pose detector and the repetition
// registry into a running counting session.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/capture"
	"github.com/ayusman/repcount/internal/counter"
	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/internal/store"
	"github.com/ayusman/repcount/internal/tracker"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while someone is moving.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// ThresholdsKey is the settings key under which tuned thresholds are persisted.
const ThresholdsKey = "thresholds"

// DefaultMotionThreshold is the percentage of changed pixels that wakes the pipeline.
const DefaultMotionThreshold = 1.0

// Config holds configuration options for the application.
type Config struct {
	// Store is optional. When set, sessions, events and thresholds are persisted.
	Store *store.Store

	// CameraID selects the capture device. Ignored when VideoPath is set.
	CameraID int

	// VideoPath plays back a recorded file instead of a live camera.
	VideoPath string

	// MotionThresh is the motion gate in percent of changed pixels. Zero means
	// DefaultMotionThreshold and a negative value disables the gate.
	MotionThresh float64

	Registry tracker.Config
}

// EventHandler receives every non-empty batch of repetition events.
type EventHandler func(events []tracker.Event)

// App drives the counting pipeline.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	registry *tracker.Registry
	session  *store.Session
	handlers []EventHandler
	latest   *gocv.Mat
	enabled  bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a new App. Thresholds persisted in the store take precedence
// over config.Registry.Thresholds.
func New(config Config) (*App, error) {
	if config.MotionThresh == 0 {
		config.MotionThresh = DefaultMotionThreshold
	}
	if config.Registry.Thresholds == (counter.Thresholds{}) {
		config.Registry.Thresholds = counter.DefaultThresholds()
	}

	if config.Store != nil {
		var saved counter.Thresholds
		err := config.Store.Settings().GetJSON(ThresholdsKey, &saved)
		switch {
		case err == nil && saved.Validate() == nil:
			config.Registry.Thresholds = saved
			log.Println("Loaded saved thresholds")
		case err == nil:
			log.Printf("Ignoring invalid saved thresholds: %v", saved.Validate())
		case !errors.Is(err, store.ErrNotFound):
			log.Printf("Failed to load saved thresholds: %v", err)
		}
	}

	registry, err := tracker.NewRegistry(config.Registry)
	if err != nil {
		return nil, fmt.Errorf("create registry: %w", err)
	}
	config.Registry = registry.Config()

	var camera capture.Camera
	if config.VideoPath != "" {
		camera = capture.NewVideoFile(config.VideoPath)
	} else {
		camera = capture.NewCamera(config.CameraID)
	}

	a := &App{
		config:   config,
		camera:   camera,
		motion:   capture.NewMotionDetector(config.MotionThresh),
		registry: registry,
		enabled:  true,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a, nil
}

// SetEnabled pauses or resumes counting. Frames are still read while paused
// so the live stream keeps moving.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether counting is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// OnEvents registers a handler called after events have been persisted.
// Handlers run on the pipeline goroutine and must not block.
func (a *App) OnEvents(h EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, h)
}

// BeginSession starts a new counting session: counts are cleared and, with a
// store configured, a session row is created.
func (a *App) BeginSession(source string) (*store.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.endSessionLocked()
	a.registry.Reset()

	if a.config.Store == nil {
		return nil, nil
	}

	sess := &store.Session{Source: source, Policy: string(a.config.Registry.Policy)}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	a.session = sess
	log.Printf("Session %s started (%s)", sess.ID, source)

	return sess, nil
}

// EndSession marks the current session as finished.
func (a *App) EndSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.endSessionLocked()
}

func (a *App) endSessionLocked() {
	if a.session == nil || a.config.Store == nil {
		return
	}
	if err := a.config.Store.Sessions().End(a.session.ID); err != nil {
		log.Printf("Error ending session %s: %v", a.session.ID, err)
	} else {
		log.Printf("Session %s ended", a.session.ID)
	}
	a.session = nil
}

// Session returns the current session, or nil when none is active.
func (a *App) Session() *store.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Counts returns the current per-person counts.
func (a *App) Counts() []tracker.PersonCounts {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry.Snapshot()
}

// ResetCounts discards every person slot.
func (a *App) ResetCounts() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.registry.Reset()
}

// Thresholds returns the thresholds used for newly tracked people.
func (a *App) Thresholds() counter.Thresholds {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry.Config().Thresholds
}

// SetThresholds validates and applies new thresholds. People already being
// counted keep their old thresholds until their slot is recreated.
func (a *App) SetThresholds(t counter.Thresholds) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.registry.SetThresholds(t); err != nil {
		return err
	}
	a.config.Registry.Thresholds = t

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetJSON(ThresholdsKey, t); err != nil {
			return fmt.Errorf("save thresholds: %w", err)
		}
	}
	return nil
}

// ProcessFrame runs pose detection on frame and feeds the result to the
// registry. The caller keeps ownership of frame.
func (a *App) ProcessFrame(frame *gocv.Mat) ([]tracker.Event, error) {
	a.mu.RLock()
	d := a.detector
	a.mu.RUnlock()

	if d == nil {
		return nil, nil
	}

	people, err := d.Detect(frame)
	if err != nil {
		return nil, fmt.Errorf("detect poses: %w", err)
	}
	return a.ProcessPeople(people), nil
}

// ProcessPeople feeds one frame of detections to the registry, then logs,
// persists and publishes the resulting events.
func (a *App) ProcessPeople(people []detector.PoseLandmarks) []tracker.Event {
	a.mu.Lock()
	events := a.registry.Update(people)
	sess := a.session
	handlers := a.handlers
	a.mu.Unlock()

	if len(events) == 0 {
		return nil
	}

	for _, e := range events {
		log.Printf("person %d: %s - %d", e.Person, e.Kind, e.Count)
	}

	if sess != nil && a.config.Store != nil {
		if err := a.config.Store.Events().Create(sess.ID, toRepEvents(events)); err != nil {
			log.Printf("Error saving events: %v", err)
		}
	}

	for _, h := range handlers {
		h(events)
	}

	return events
}

func toRepEvents(events []tracker.Event) []store.RepEvent {
	out := make([]store.RepEvent, len(events))
	for i, e := range events {
		out[i] = store.RepEvent{Person: e.Person, Kind: string(e.Kind), Count: e.Count}
	}
	return out
}

// LatestFrame returns a copy of the most recently read frame. The caller
// must close it.
func (a *App) LatestFrame() (gocv.Mat, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.latest == nil || a.latest.Empty() {
		return gocv.Mat{}, false
	}
	return a.latest.Clone(), true
}

func (a *App) setLatest(frame *gocv.Mat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == nil {
		m := gocv.NewMat()
		a.latest = &m
	}
	frame.CopyTo(a.latest)
}

// Start opens the frame source and begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Done returns a channel closed when the pipeline exits, either after Stop or
// when a video file runs out of frames. It is nil before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Stop halts the pipeline, ends the session and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.endSessionLocked()
	if a.latest != nil {
		a.latest.Close()
		a.latest = nil
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Policy returns the slot policy in use.
func (a *App) Policy() tracker.Policy {
	return a.config.Registry.Policy
}
