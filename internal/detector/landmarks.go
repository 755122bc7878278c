// Package detector provides pose detection interfaces and types for repetition counting.
package detector

import "math"

// Pose landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Landmark is a single body joint in normalized image coordinates.
// X and Y are in 0..1 with Y growing downward; Z is relative depth.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// PoseLandmarks represents the 33 body landmarks detected for one person.
type PoseLandmarks struct {
	Points [NumLandmarks]Landmark `json:"points"`
	Score  float64                `json:"score"`
}

// HipCenter returns the midpoint between the left and right hip.
func (p *PoseLandmarks) HipCenter() Landmark {
	l, r := p.Points[LeftHip], p.Points[RightHip]
	return Landmark{
		X:          (l.X + r.X) / 2,
		Y:          (l.Y + r.Y) / 2,
		Z:          (l.Z + r.Z) / 2,
		Visibility: math.Min(l.Visibility, r.Visibility),
	}
}

// Translate returns a copy of the pose with every point shifted by dx, dy.
func (p PoseLandmarks) Translate(dx, dy float64) PoseLandmarks {
	for i := range p.Points {
		p.Points[i].X += dx
		p.Points[i].Y += dy
	}
	return p
}
