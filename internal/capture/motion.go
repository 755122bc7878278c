package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	// BlurKernel is the Gaussian kernel size used to suppress sensor noise.
	BlurKernel = 21
	// PixelDelta is the per-pixel intensity change that counts as changed.
	PixelDelta = 25
)

// MotionDetector reports whether enough of the image changed since the
// previous frame for pose estimation to be worth running. A person standing
// still between repetitions produces no motion, so the pipeline can idle.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	previous  gocv.Mat
	primed    bool
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of
// pixels that must change, e.g. 1.0 for 1%.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		previous:  gocv.NewMat(),
	}
}

// Threshold returns the active change percentage.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// SetThreshold sets the change percentage. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Detect compares frame with the previous one and returns whether the
// changed-pixel percentage exceeds the threshold, along with that percentage.
// The first frame only primes the detector.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := smoothGray(frame)

	if !m.primed {
		m.previous.Close()
		m.previous = current
		m.primed = true
		return false, 0
	}

	changed := changedPercent(current, m.previous)

	m.previous.Close()
	m.previous = current

	return changed > m.threshold, changed
}

// Reset forgets the previous frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the stored frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	m.previous.Close()
	m.previous = gocv.NewMat()
	m.primed = false
}

// smoothGray returns a blurred grayscale copy of frame owned by the caller.
func smoothGray(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	out := gocv.NewMat()
	gocv.GaussianBlur(gray, &out, image.Pt(BlurKernel, BlurKernel), 0, 0, gocv.BorderDefault)
	return out
}

// changedPercent returns the share of pixels, in percent, whose intensity
// differs by more than PixelDelta between a and b.
func changedPercent(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, PixelDelta, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100
}
