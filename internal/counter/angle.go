package counter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/repcount/internal/detector"
)

// minSegment is the shortest joint-to-joint length treated as a real limb.
const minSegment = 1e-9

// AngleAt returns the angle in degrees at vertex b formed by the rays b→a and
// b→c, using only the image-plane coordinates. The result is in [0, 180], or
// NaN when either ray is degenerate (coincident joints).
func AngleAt(a, b, c detector.Landmark) float64 {
	vertex := r2.Vec{X: b.X, Y: b.Y}
	u := r2.Sub(r2.Vec{X: a.X, Y: a.Y}, vertex)
	v := r2.Sub(r2.Vec{X: c.X, Y: c.Y}, vertex)

	nu, nv := r2.Norm(u), r2.Norm(v)
	if nu < minSegment || nv < minSegment {
		return math.NaN()
	}

	// Rounding can push the ratio just outside the domain of Acos.
	cos := math.Max(-1, math.Min(1, r2.Dot(u, v)/(nu*nv)))
	return math.Acos(cos) * 180 / math.Pi
}

func mean(a, b float64) float64 {
	return (a + b) / 2
}

// HipHeight is the mean image-plane height of both hips. Smaller is higher.
func HipHeight(p *detector.PoseLandmarks) float64 {
	return mean(p.Points[detector.LeftHip].Y, p.Points[detector.RightHip].Y)
}

// KneeAngle averages the left and right hip-knee-ankle angles.
func KneeAngle(p *detector.PoseLandmarks) float64 {
	pt := &p.Points
	return mean(
		AngleAt(pt[detector.LeftHip], pt[detector.LeftKnee], pt[detector.LeftAnkle]),
		AngleAt(pt[detector.RightHip], pt[detector.RightKnee], pt[detector.RightAnkle]),
	)
}

// HipAngle averages the left and right shoulder-hip-knee angles.
func HipAngle(p *detector.PoseLandmarks) float64 {
	pt := &p.Points
	return mean(
		AngleAt(pt[detector.LeftShoulder], pt[detector.LeftHip], pt[detector.LeftKnee]),
		AngleAt(pt[detector.RightShoulder], pt[detector.RightHip], pt[detector.RightKnee]),
	)
}

