package counter

import (
	"math"

	"github.com/ayusman/repcount/internal/detector"
)

// Jump counts vertical jumps from the hip height signal.
//
// While the hips stay within GroundHeight of the baseline the person is on
// the ground and the baseline follows them. Rising more than JumpHeight above
// the baseline counts one jump on takeoff; the flag clears on landing.
type Jump struct {
	jumpHeight   float64
	groundHeight float64

	count       int
	airborne    bool
	baseline    float64
	hasBaseline bool
}

// NewJump creates a jump counter.
func NewJump(t Thresholds) *Jump {
	return &Jump{
		jumpHeight:   t.JumpHeight,
		groundHeight: t.GroundHeight,
	}
}

func (j *Jump) Kind() Kind { return KindJump }

func (j *Jump) Count() int { return j.count }

// Airborne reports whether the last frame was classified as in the air.
func (j *Jump) Airborne() bool { return j.airborne }

func (j *Jump) Update(p *detector.PoseLandmarks) int {
	if p == nil {
		return j.count
	}
	j.observe(HipHeight(p))
	return j.count
}

func (j *Jump) observe(height float64) {
	if math.IsNaN(height) || math.IsInf(height, 0) {
		return
	}

	if !j.hasBaseline {
		j.baseline = height
		j.hasBaseline = true
		return
	}

	diff := j.baseline - height
	grounded := math.Abs(diff) < j.groundHeight

	if grounded {
		j.baseline = height
		j.airborne = false
	}

	// Edge trigger: at most one count per ground-to-air excursion.
	if !j.airborne && diff > j.jumpHeight {
		j.airborne = true
		j.count++
	}
}

// Reset forgets the baseline and the airborne flag.
func (j *Jump) Reset() {
	j.airborne = false
	j.hasBaseline = false
	j.baseline = 0
}
