package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	people   []PoseLandmarks
	sequence [][]PoseLandmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPeople sets the people returned by every Detect call.
func (m *MockDetector) SetPeople(people []PoseLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people = people
	m.sequence = nil
}

// SetSequence queues per-frame results. Each Detect call consumes one entry;
// once the queue is drained Detect falls back to the people set by SetPeople.
func (m *MockDetector) SetSequence(frames [][]PoseLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured people or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]PoseLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.people, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Segment lengths used by PoseFromAngles, in normalized units.
const (
	mockLegLength   = 0.2
	mockTorsoLength = 0.3
	mockHipHalfGap  = 0.05
)

// PoseFromAngles builds a side-view pose whose hip midpoint sits at height
// hipY and whose hip and knee angles (degrees) are exactly hipAngle and
// kneeAngle on both sides. Shins are vertical.
func PoseFromAngles(hipY, hipAngle, kneeAngle float64) PoseLandmarks {
	pose := PoseLandmarks{Score: 0.95}

	kr := kneeAngle * math.Pi / 180
	hr := hipAngle * math.Pi / 180

	// Direction from knee to hip; the shin points straight down (0, 1).
	thighX, thighY := math.Sin(kr), math.Cos(kr)

	// Direction from hip to knee, rotated by hipAngle to reach the shoulder.
	dx, dy := -thighX, -thighY
	torsoX := dx*math.Cos(hr) - dy*math.Sin(hr)
	torsoY := dx*math.Sin(hr) + dy*math.Cos(hr)

	for _, side := range []struct {
		shoulder, hip, knee, ankle int
		offset                     float64
	}{
		{LeftShoulder, LeftHip, LeftKnee, LeftAnkle, -mockHipHalfGap},
		{RightShoulder, RightHip, RightKnee, RightAnkle, mockHipHalfGap},
	} {
		hip := Landmark{X: 0.5 + side.offset, Y: hipY, Visibility: 0.99}
		knee := Landmark{X: hip.X - mockLegLength*thighX, Y: hip.Y - mockLegLength*thighY, Visibility: 0.99}
		ankle := Landmark{X: knee.X, Y: knee.Y + mockLegLength, Visibility: 0.99}
		shoulder := Landmark{X: hip.X + mockTorsoLength*torsoX, Y: hip.Y + mockTorsoLength*torsoY, Visibility: 0.99}

		pose.Points[side.hip] = hip
		pose.Points[side.knee] = knee
		pose.Points[side.ankle] = ankle
		pose.Points[side.shoulder] = shoulder
	}

	return pose
}

// StandingLandmarks returns a preset pose of a person standing upright.
func StandingLandmarks() PoseLandmarks {
	return PoseFromAngles(0.55, 175, 175)
}

// SquatLandmarks returns a preset pose at the bottom of a squat.
func SquatLandmarks() PoseLandmarks {
	return PoseFromAngles(0.7, 80, 85)
}

// BendLandmarks returns a preset pose of a forward bend with straight legs.
func BendLandmarks() PoseLandmarks {
	return PoseFromAngles(0.55, 55, 170)
}

// JumpLandmarks returns StandingLandmarks lifted by height normalized units.
func JumpLandmarks(height float64) PoseLandmarks {
	return StandingLandmarks().Translate(0, -height)
}
