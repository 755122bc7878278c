package counter

import (
	"math"

	"github.com/ayusman/repcount/internal/detector"
)

// Bend counts forward bends from the averaged hip angle. Entering a bend
// requires the knees to stay nearly straight, which separates it from a
// squat; standing back up is judged by the hip angle alone.
type Bend struct {
	hipAngle   float64
	kneeAngle  float64
	standAngle float64

	count int
	bent  bool
}

// NewBend creates a bend counter.
func NewBend(t Thresholds) *Bend {
	return &Bend{
		hipAngle:   t.BendHipAngle,
		kneeAngle:  t.BendKneeAngle,
		standAngle: t.BendStandAngle,
	}
}

func (b *Bend) Kind() Kind { return KindBend }

func (b *Bend) Count() int { return b.count }

// Bent reports whether the person is currently bent forward.
func (b *Bend) Bent() bool { return b.bent }

func (b *Bend) Update(p *detector.PoseLandmarks) int {
	if p == nil {
		return b.count
	}
	b.observe(HipAngle(p), KneeAngle(p))
	return b.count
}

func (b *Bend) observe(hip, knee float64) {
	if math.IsNaN(hip) {
		return
	}

	if !b.bent {
		// NaN knee fails the comparison and leaves the flag clear.
		if hip < b.hipAngle && knee > b.kneeAngle {
			b.bent = true
		}
		return
	}

	if hip > b.standAngle {
		b.bent = false
		b.count++
	}
}

func (b *Bend) Reset() {
	b.bent = false
}
