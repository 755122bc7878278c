package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

// jointAngle mirrors the counter package's vertex angle so fixtures can be
// checked without an import cycle.
func jointAngle(a, b, c Landmark) float64 {
	ux, uy := a.X-b.X, a.Y-b.Y
	vx, vy := c.X-b.X, c.Y-b.Y
	cos := (ux*vx + uy*vy) / (math.Hypot(ux, uy) * math.Hypot(vx, vy))
	return math.Acos(math.Max(-1, math.Min(1, cos))) * 180 / math.Pi
}

func TestPoseLandmarks_HipCenter(t *testing.T) {
	var pose PoseLandmarks
	pose.Points[LeftHip] = Landmark{X: 0.4, Y: 0.6, Z: 0.1, Visibility: 0.9}
	pose.Points[RightHip] = Landmark{X: 0.6, Y: 0.8, Z: 0.3, Visibility: 0.7}

	center := pose.HipCenter()

	if math.Abs(center.X-0.5) > epsilon {
		t.Errorf("expected X 0.5, got %f", center.X)
	}
	if math.Abs(center.Y-0.7) > epsilon {
		t.Errorf("expected Y 0.7, got %f", center.Y)
	}
	if math.Abs(center.Z-0.2) > epsilon {
		t.Errorf("expected Z 0.2, got %f", center.Z)
	}
	if center.Visibility != 0.7 {
		t.Errorf("expected visibility to be the lower of both hips, got %f", center.Visibility)
	}
}

func TestPoseLandmarks_Translate(t *testing.T) {
	pose := StandingLandmarks()
	moved := pose.Translate(0.1, -0.05)

	for i := 0; i < NumLandmarks; i++ {
		if math.Abs(moved.Points[i].X-pose.Points[i].X-0.1) > epsilon {
			t.Fatalf("point %d: X not shifted", i)
		}
		if math.Abs(moved.Points[i].Y-pose.Points[i].Y+0.05) > epsilon {
			t.Fatalf("point %d: Y not shifted", i)
		}
	}

	if pose.Points[LeftHip] == moved.Points[LeftHip] {
		t.Error("Translate must not modify the receiver")
	}
}

func TestPoseFromAngles(t *testing.T) {
	tests := []struct {
		name      string
		hipAngle  float64
		kneeAngle float64
	}{
		{name: "standing", hipAngle: 175, kneeAngle: 175},
		{name: "deep squat", hipAngle: 60, kneeAngle: 90},
		{name: "bend with straight legs", hipAngle: 60, kneeAngle: 160},
		{name: "bend with bent knees", hipAngle: 60, kneeAngle: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pose := PoseFromAngles(0.6, tt.hipAngle, tt.kneeAngle)

			sides := []struct{ shoulder, hip, knee, ankle int }{
				{LeftShoulder, LeftHip, LeftKnee, LeftAnkle},
				{RightShoulder, RightHip, RightKnee, RightAnkle},
			}
			for _, s := range sides {
				p := pose.Points
				knee := jointAngle(p[s.hip], p[s.knee], p[s.ankle])
				if math.Abs(knee-tt.kneeAngle) > 1e-6 {
					t.Errorf("knee angle = %f, want %f", knee, tt.kneeAngle)
				}
				hip := jointAngle(p[s.shoulder], p[s.hip], p[s.knee])
				if math.Abs(hip-tt.hipAngle) > 1e-6 {
					t.Errorf("hip angle = %f, want %f", hip, tt.hipAngle)
				}
			}

			if math.Abs(pose.HipCenter().Y-0.6) > epsilon {
				t.Errorf("hip height = %f, want 0.6", pose.HipCenter().Y)
			}
		})
	}
}

func TestJumpLandmarks(t *testing.T) {
	standing := StandingLandmarks()
	jumping := JumpLandmarks(0.1)

	lift := standing.HipCenter().Y - jumping.HipCenter().Y
	if math.Abs(lift-0.1) > epsilon {
		t.Errorf("expected hips lifted by 0.1, got %f", lift)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns no people by default", func(t *testing.T) {
		mock := NewMockDetector()

		people, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if people != nil {
			t.Errorf("expected nil people, got %v", people)
		}
	})

	t.Run("returns configured people", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetPeople([]PoseLandmarks{StandingLandmarks(), SquatLandmarks()})

		people, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(people) != 2 {
			t.Errorf("expected 2 people, got %d", len(people))
		}
	})

	t.Run("plays a sequence then falls back", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetPeople([]PoseLandmarks{StandingLandmarks()})
		mock.SetSequence([][]PoseLandmarks{
			{},
			{StandingLandmarks(), StandingLandmarks()},
		})

		wantLens := []int{0, 2, 1, 1}
		for i, want := range wantLens {
			people, _ := mock.Detect(nil)
			if len(people) != want {
				t.Errorf("call %d: expected %d people, got %d", i, want, len(people))
			}
		}
		if mock.Calls() != len(wantLens) {
			t.Errorf("expected %d calls, got %d", len(wantLens), mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		people, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if people != nil {
			t.Errorf("expected nil people when error is set, got %v", people)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("decodes people", func(t *testing.T) {
		line := []byte(`{"people":[{"points":[{"x":0.1,"y":0.2,"z":0.3,"visibility":0.9}],"score":0.8},{"points":[],"score":0.5}]}` + "\n")

		people, err := parseResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(people) != 2 {
			t.Fatalf("expected 2 people, got %d", len(people))
		}
		if people[0].Points[Nose] != (Landmark{X: 0.1, Y: 0.2, Z: 0.3, Visibility: 0.9}) {
			t.Errorf("unexpected nose landmark: %+v", people[0].Points[Nose])
		}
		if people[0].Points[LeftHip] != (Landmark{}) {
			t.Error("missing points should stay zeroed")
		}
		if people[1].Score != 0.5 {
			t.Errorf("expected score 0.5, got %f", people[1].Score)
		}
	})

	t.Run("empty frame", func(t *testing.T) {
		people, err := parseResponse([]byte(`{"people":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(people) != 0 {
			t.Errorf("expected no people, got %d", len(people))
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"people":[],"error":"model missing"}`)); err == nil {
			t.Error("expected error from service")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"people":`)); err == nil {
			t.Error("expected parse error")
		}
	})
}
