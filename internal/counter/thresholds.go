package counter

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds is returned when a Thresholds value cannot produce a
// working hysteresis band.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds holds the tunable hysteresis bounds of every detector.
// Heights are in normalized image units, angles in degrees.
type Thresholds struct {
	// JumpHeight is the minimum rise above the ground baseline that counts as airborne.
	JumpHeight float64 `json:"jump_height"`
	// GroundHeight is the maximum deviation from the baseline that still counts as grounded.
	GroundHeight float64 `json:"ground_height"`

	// SquatAngle is the knee angle below which a squat is entered.
	SquatAngle float64 `json:"squat_angle"`
	// SquatStandAngle is the knee angle above which a squat is completed.
	SquatStandAngle float64 `json:"squat_stand_angle"`

	// BendHipAngle is the hip angle below which a forward bend is entered.
	BendHipAngle float64 `json:"bend_hip_angle"`
	// BendKneeAngle is the knee angle the legs must stay above while bending.
	BendKneeAngle float64 `json:"bend_knee_angle"`
	// BendStandAngle is the hip angle above which a bend is completed.
	BendStandAngle float64 `json:"bend_stand_angle"`
}

// DefaultThresholds returns thresholds calibrated for a front-facing webcam.
func DefaultThresholds() Thresholds {
	return Thresholds{
		JumpHeight:      0.04,
		GroundHeight:    0.01,
		SquatAngle:      100,
		SquatStandAngle: 160,
		BendHipAngle:    70,
		BendKneeAngle:   150,
		BendStandAngle:  100,
	}
}

// Validate reports whether every enter threshold sits strictly inside its
// exit threshold and all values are in range.
func (t Thresholds) Validate() error {
	if t.GroundHeight <= 0 || t.JumpHeight <= 0 {
		return fmt.Errorf("%w: heights must be positive", ErrInvalidThresholds)
	}
	if t.GroundHeight >= t.JumpHeight {
		return fmt.Errorf("%w: ground height %.3f must be below jump height %.3f",
			ErrInvalidThresholds, t.GroundHeight, t.JumpHeight)
	}

	angles := map[string]float64{
		"squat_angle":       t.SquatAngle,
		"squat_stand_angle": t.SquatStandAngle,
		"bend_hip_angle":    t.BendHipAngle,
		"bend_knee_angle":   t.BendKneeAngle,
		"bend_stand_angle":  t.BendStandAngle,
	}
	for name, v := range angles {
		if v <= 0 || v > 180 {
			return fmt.Errorf("%w: %s %.1f outside (0, 180]", ErrInvalidThresholds, name, v)
		}
	}

	if t.SquatAngle >= t.SquatStandAngle {
		return fmt.Errorf("%w: squat angle %.1f must be below stand angle %.1f",
			ErrInvalidThresholds, t.SquatAngle, t.SquatStandAngle)
	}
	if t.BendHipAngle >= t.BendStandAngle {
		return fmt.Errorf("%w: bend hip angle %.1f must be below stand angle %.1f",
			ErrInvalidThresholds, t.BendHipAngle, t.BendStandAngle)
	}

	return nil
}
