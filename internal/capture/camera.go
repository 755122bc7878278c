// Package capture provides video frame sources using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEndOfStream is returned when a video file has no more frames.
	ErrEndOfStream = errors.New("end of video stream")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// videoSource reads frames from either a camera device or a video file.
type videoSource struct {
	deviceID int
	path     string
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a Camera reading from the given device ID.
// The default FPS is 5 until the pipeline switches to active mode.
func NewCamera(deviceID int) Camera {
	return &videoSource{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// NewVideoFile creates a Camera that plays back a recorded video file.
// Once the file is exhausted ReadFrame returns ErrEndOfStream.
func NewVideoFile(path string) Camera {
	return &videoSource{
		path: path,
		fps:  DefaultFPS,
	}
}

// IsFile reports whether c plays back a recorded file rather than a live device.
func IsFile(c Camera) bool {
	v, ok := c.(*videoSource)
	return ok && v.path != ""
}

// Open opens the device or file for reading.
// Live devices are set to 640x480 for performance.
func (c *videoSource) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.path != "" {
		capture, err = gocv.VideoCaptureFile(c.path)
	} else {
		capture, err = gocv.OpenVideoCapture(c.deviceID)
	}
	if err != nil {
		return fmt.Errorf("open video source: %w", err)
	}

	if c.path == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close releases the underlying capture.
func (c *videoSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame.
// The caller is responsible for closing the returned Mat.
func (c *videoSource) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		if c.path != "" {
			return nil, ErrEndOfStream
		}
		return nil, errors.New("failed to read frame from camera")
	}

	return &mat, nil
}

// SetFPS sets the capture rate. Values less than or equal to 0 are ignored.
// Video files always decode at their own pace; only the stored value changes.
func (c *videoSource) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil && c.path == "" {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *videoSource) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the source is open.
func (c *videoSource) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
