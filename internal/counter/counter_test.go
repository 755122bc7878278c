package counter

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ayusman/repcount/internal/detector"
)

func TestNew(t *testing.T) {
	for _, kind := range Kinds {
		c, err := New(kind, DefaultThresholds())
		if err != nil {
			t.Fatalf("New(%s) error = %v", kind, err)
		}
		if c.Kind() != kind {
			t.Errorf("New(%s).Kind() = %s", kind, c.Kind())
		}
		if c.Count() != 0 {
			t.Errorf("New(%s) starts at %d", kind, c.Count())
		}
	}

	if _, err := New("pushup", DefaultThresholds()); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestNewSet_Order(t *testing.T) {
	set := NewSet(DefaultThresholds())

	if len(set) != len(Kinds) {
		t.Fatalf("expected %d counters, got %d", len(Kinds), len(set))
	}
	for i, c := range set {
		if c.Kind() != Kinds[i] {
			t.Errorf("counter %d is %s, want %s", i, c.Kind(), Kinds[i])
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		got, err := ParseKind(string(kind))
		if err != nil || got != kind {
			t.Errorf("ParseKind(%q) = %q, %v", kind, got, err)
		}
	}
	if _, err := ParseKind("Jump"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestCounters_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, c := range NewSet(DefaultThresholds()) {
		t.Run(string(c.Kind()), func(t *testing.T) {
			prev := 0
			for i := 0; i < 2000; i++ {
				pose := detector.PoseFromAngles(
					0.4+rng.Float64()*0.3,
					20+rng.Float64()*160,
					20+rng.Float64()*160,
				)
				if i%97 == 0 {
					pose = detector.PoseLandmarks{}
				}
				if i%211 == 0 {
					c.Reset()
				}

				got := c.Update(&pose)
				if got < prev {
					t.Fatalf("frame %d: count decreased from %d to %d", i, prev, got)
				}
				prev = got
			}
			if prev == 0 {
				t.Error("expected random motion to produce at least one repetition")
			}
		})
	}
}
