package counter

import (
	"math"

	"github.com/ayusman/repcount/internal/detector"
)

// Squat counts squats from the averaged knee angle. A repetition is counted
// when the person stands back up, not on the way down.
type Squat struct {
	downAngle  float64
	standAngle float64

	count int
	down  bool
}

// NewSquat creates a squat counter.
func NewSquat(t Thresholds) *Squat {
	return &Squat{
		downAngle:  t.SquatAngle,
		standAngle: t.SquatStandAngle,
	}
}

func (s *Squat) Kind() Kind { return KindSquat }

func (s *Squat) Count() int { return s.count }

// Down reports whether the person is currently in the bottom of a squat.
func (s *Squat) Down() bool { return s.down }

func (s *Squat) Update(p *detector.PoseLandmarks) int {
	if p == nil {
		return s.count
	}
	s.observe(KneeAngle(p))
	return s.count
}

func (s *Squat) observe(knee float64) {
	if math.IsNaN(knee) {
		return
	}

	switch {
	case !s.down && knee < s.downAngle:
		s.down = true
	case s.down && knee > s.standAngle:
		s.down = false
		s.count++
	}
}

func (s *Squat) Reset() {
	s.down = false
}
