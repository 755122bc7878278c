package detector

import "gocv.io/x/gocv"

// Detector defines the interface for pose estimation implementations.
type Detector interface {
	// Detect analyzes a video frame and returns one PoseLandmarks per visible person,
	// in the order the model reports them. Returns an empty slice if nobody is detected.
	Detect(frame *gocv.Mat) ([]PoseLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MaxPeople is the maximum number of people to detect per frame (default: 4).
	MaxPeople int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxPeople:       4,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
