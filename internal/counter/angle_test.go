package counter

import (
	"math"
	"testing"

	"github.com/ayusman/repcount/internal/detector"
)

const epsilon = 1e-9

func lm(x, y float64) detector.Landmark {
	return detector.Landmark{X: x, Y: y}
}

func TestAngleAt(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c detector.Landmark
		want    float64
	}{
		{name: "right angle", a: lm(1, 0), b: lm(0, 0), c: lm(0, 1), want: 90},
		{name: "straight line", a: lm(-1, 0), b: lm(0, 0), c: lm(2, 0), want: 180},
		{name: "same direction", a: lm(1, 1), b: lm(0, 0), c: lm(3, 3), want: 0},
		{name: "45 degrees", a: lm(1, 0), b: lm(0, 0), c: lm(1, 1), want: 45},
		{name: "order of rays does not matter", a: lm(0, 1), b: lm(0, 0), c: lm(1, 0), want: 90},
		{name: "translated vertex", a: lm(0.5, 0.2), b: lm(0.5, 0.5), c: lm(0.8, 0.5), want: 90},
		{name: "ignores depth", a: detector.Landmark{X: 1, Z: 5}, b: lm(0, 0), c: detector.Landmark{Y: 1, Z: -3}, want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleAt(tt.a, tt.b, tt.c)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("AngleAt() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAngleAt_ClampsRounding(t *testing.T) {
	// Nearly collinear rays whose cosine rounds past 1 without the clamp.
	a := lm(0.1, 0.3)
	b := lm(0.2, 0.6)
	c := lm(0.30000000000000004, 0.9000000000000001)

	got := AngleAt(a, b, c)
	if math.IsNaN(got) {
		t.Fatal("AngleAt returned NaN for collinear rays")
	}
	if math.Abs(got-180) > 1e-6 {
		t.Errorf("AngleAt() = %f, want 180", got)
	}

	got = AngleAt(c, b, lm(0.4, 1.2))
	if math.IsNaN(got) || got > 1e-6 {
		t.Errorf("AngleAt() = %f, want 0", got)
	}
}

func TestAngleAt_Degenerate(t *testing.T) {
	p := lm(0.4, 0.4)

	tests := []struct {
		name    string
		a, b, c detector.Landmark
	}{
		{name: "all coincident", a: p, b: p, c: p},
		{name: "first ray zero", a: p, b: p, c: lm(0.5, 0.5)},
		{name: "second ray zero", a: lm(0.5, 0.5), b: p, c: p},
		{name: "missing joints", a: detector.Landmark{}, b: detector.Landmark{}, c: detector.Landmark{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AngleAt(tt.a, tt.b, tt.c); !math.IsNaN(got) {
				t.Errorf("AngleAt() = %f, want NaN", got)
			}
		})
	}
}

func TestFeatureExtractors(t *testing.T) {
	pose := detector.PoseFromAngles(0.62, 80, 120)

	if got := HipHeight(&pose); math.Abs(got-0.62) > epsilon {
		t.Errorf("HipHeight() = %f, want 0.62", got)
	}
	if got := KneeAngle(&pose); math.Abs(got-120) > 1e-6 {
		t.Errorf("KneeAngle() = %f, want 120", got)
	}
	if got := HipAngle(&pose); math.Abs(got-80) > 1e-6 {
		t.Errorf("HipAngle() = %f, want 80", got)
	}

	t.Run("averages both sides", func(t *testing.T) {
		var p detector.PoseLandmarks
		p.Points[detector.LeftHip] = lm(0.4, 0.5)
		p.Points[detector.RightHip] = lm(0.6, 0.7)
		// Left leg straight, right knee at 90 degrees.
		p.Points[detector.LeftKnee] = lm(0.4, 0.7)
		p.Points[detector.LeftAnkle] = lm(0.4, 0.9)
		p.Points[detector.RightKnee] = lm(0.6, 0.9)
		p.Points[detector.RightAnkle] = lm(0.8, 0.9)

		if got := HipHeight(&p); math.Abs(got-0.6) > epsilon {
			t.Errorf("HipHeight() = %f, want 0.6", got)
		}
		if got := KneeAngle(&p); math.Abs(got-135) > 1e-6 {
			t.Errorf("KneeAngle() = %f, want 135", got)
		}
	})
}
