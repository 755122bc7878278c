// Package counter turns per-frame pose landmarks into repetition counts using
// hysteresis state machines, one per movement kind.
package counter

import (
	"errors"
	"fmt"

	"github.com/ayusman/repcount/internal/detector"
)

// ErrUnknownKind is returned when a movement kind has no detector.
var ErrUnknownKind = errors.New("unknown movement kind")

// Kind identifies a counted movement.
type Kind string

const (
	KindJump  Kind = "jump"
	KindSquat Kind = "squat"
	KindBend  Kind = "bend"
)

// Kinds lists every movement kind in reporting order.
var Kinds = []Kind{KindJump, KindSquat, KindBend}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Counter is a stateful repetition detector for one person.
type Counter interface {
	// Kind returns the movement this counter detects.
	Kind() Kind

	// Update consumes one frame of landmarks and returns the current count.
	// The count never decreases. Landmarks are not retained after the call.
	Update(p *detector.PoseLandmarks) int

	// Count returns the current count without consuming a frame.
	Count() int

	// Reset clears the transient phase state but keeps the count.
	Reset()
}

// New creates a counter for the given kind.
func New(kind Kind, t Thresholds) (Counter, error) {
	switch kind {
	case KindJump:
		return NewJump(t), nil
	case KindSquat:
		return NewSquat(t), nil
	case KindBend:
		return NewBend(t), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NewSet creates one counter per kind, in Kinds order.
func NewSet(t Thresholds) []Counter {
	return []Counter{NewJump(t), NewSquat(t), NewBend(t)}
}
