// Package tracker keeps one set of repetition counters per visible person and
// reports the counts that changed on every frame.
package tracker

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/repcount/internal/counter"
	"github.com/ayusman/repcount/internal/detector"
)

// ErrUnknownPolicy is returned for an unrecognized slot policy.
var ErrUnknownPolicy = errors.New("unknown tracking policy")

// Policy decides how detections are mapped onto person slots.
type Policy string

const (
	// PolicyPositional maps detection i to slot i and discards every slot
	// whenever the number of visible people changes.
	PolicyPositional Policy = "positional"

	// PolicyTracked associates detections with slots by nearest hip center and
	// only discards a slot after it has been missing for GracePeriod frames.
	PolicyTracked Policy = "tracked"
)

// ParsePolicy converts a string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyPositional, PolicyTracked:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Config holds the registry configuration.
type Config struct {
	Thresholds counter.Thresholds
	Policy     Policy

	// GracePeriod is the number of consecutive frames a tracked person may be
	// missing before their counts are discarded. PolicyTracked only.
	GracePeriod int

	// MaxMatchDistance is the largest hip-center movement between frames, in
	// normalized units, still considered the same person. PolicyTracked only.
	MaxMatchDistance float64
}

// DefaultConfig returns the positional policy with default thresholds.
func DefaultConfig() Config {
	return Config{
		Thresholds:       counter.DefaultThresholds(),
		Policy:           PolicyPositional,
		GracePeriod:      15,
		MaxMatchDistance: 0.2,
	}
}

// Event reports a counter whose value changed this frame.
type Event struct {
	Person int          `json:"person"`
	Kind   counter.Kind `json:"kind"`
	Count  int          `json:"count"`
}

// PersonCounts is the current state of one person slot.
type PersonCounts struct {
	Person int                  `json:"person"`
	Counts map[counter.Kind]int `json:"counts"`
}

type slot struct {
	id       int
	counters []counter.Counter
	last     []int
	center   detector.Landmark
	missed   int
}

// Registry owns the person slots. It is not safe for concurrent use; callers
// must serialize Update with every other method.
type Registry struct {
	config Config
	slots  []*slot
	nextID int
}

// NewRegistry creates a Registry. Zero GracePeriod and MaxMatchDistance take
// their defaults; an empty Policy means PolicyPositional.
func NewRegistry(config Config) (*Registry, error) {
	defaults := DefaultConfig()
	if config.Policy == "" {
		config.Policy = defaults.Policy
	}
	if _, err := ParsePolicy(string(config.Policy)); err != nil {
		return nil, err
	}
	if err := config.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = defaults.GracePeriod
	}
	if config.MaxMatchDistance <= 0 {
		config.MaxMatchDistance = defaults.MaxMatchDistance
	}

	return &Registry{config: config}, nil
}

// Config returns the active configuration.
func (r *Registry) Config() Config {
	return r.config
}

// SetThresholds changes the thresholds used for slots created from now on.
// Existing slots keep the thresholds they were created with.
func (r *Registry) SetThresholds(t counter.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.config.Thresholds = t
	return nil
}

// Len returns the number of live person slots.
func (r *Registry) Len() int {
	return len(r.slots)
}

// Reset discards every slot and its counts.
func (r *Registry) Reset() {
	r.slots = nil
}

// Update feeds one frame of detections and returns an event for every count
// that changed, ordered by person and then by counter.Kinds.
func (r *Registry) Update(people []detector.PoseLandmarks) []Event {
	if r.config.Policy == PolicyTracked {
		return r.updateTracked(people)
	}
	return r.updatePositional(people)
}

// Snapshot returns the counts of every live slot, ordered by person.
func (r *Registry) Snapshot() []PersonCounts {
	out := make([]PersonCounts, 0, len(r.slots))
	for _, s := range r.slots {
		pc := PersonCounts{Person: s.id, Counts: make(map[counter.Kind]int, len(s.counters))}
		for _, c := range s.counters {
			pc.Counts[c.Kind()] = c.Count()
		}
		out = append(out, pc)
	}
	return out
}

func (r *Registry) newSlot(id int) *slot {
	counters := counter.NewSet(r.config.Thresholds)
	return &slot{
		id:       id,
		counters: counters,
		last:     make([]int, len(counters)),
	}
}

// updatePositional is a hard reset on any change of person count: slots
// are matched by position only, so counts cannot follow a person across a
// change in who is visible.
func (r *Registry) updatePositional(people []detector.PoseLandmarks) []Event {
	if len(people) != len(r.slots) {
		r.slots = make([]*slot, len(people))
		for i := range people {
			r.slots[i] = r.newSlot(i)
		}
		return nil
	}

	var events []Event
	for i := range people {
		events = r.feed(r.slots[i], &people[i], events)
	}
	return events
}

type candidate struct {
	slot, person int
	dist         float64
}

func (r *Registry) updateTracked(people []detector.PoseLandmarks) []Event {
	centers := make([]detector.Landmark, len(people))
	for i := range people {
		centers[i] = people[i].HipCenter()
	}

	// Greedy nearest-center association.
	var candidates []candidate
	for si, s := range r.slots {
		for pi, c := range centers {
			d := hipDistance(s.center, c)
			if d <= r.config.MaxMatchDistance {
				candidates = append(candidates, candidate{slot: si, person: pi, dist: d})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	slotPerson := make([]int, len(r.slots))
	for i := range slotPerson {
		slotPerson[i] = -1
	}
	personTaken := make([]bool, len(people))
	for _, c := range candidates {
		if slotPerson[c.slot] >= 0 || personTaken[c.person] {
			continue
		}
		slotPerson[c.slot] = c.person
		personTaken[c.person] = true
	}

	var events []Event
	live := r.slots[:0]
	for si, s := range r.slots {
		pi := slotPerson[si]
		if pi < 0 {
			s.missed++
			for _, c := range s.counters {
				c.Reset()
			}
			if s.missed > r.config.GracePeriod {
				continue
			}
			live = append(live, s)
			continue
		}

		s.missed = 0
		s.center = centers[pi]
		events = r.feed(s, &people[pi], events)
		live = append(live, s)
	}
	r.slots = live

	for pi := range people {
		if personTaken[pi] {
			continue
		}
		s := r.newSlot(r.nextID)
		r.nextID++
		s.center = centers[pi]
		events = r.feed(s, &people[pi], events)
		r.slots = append(r.slots, s)
	}

	return events
}

func (r *Registry) feed(s *slot, p *detector.PoseLandmarks, events []Event) []Event {
	for i, c := range s.counters {
		n := c.Update(p)
		if n != s.last[i] {
			s.last[i] = n
			events = append(events, Event{Person: s.id, Kind: c.Kind(), Count: n})
		}
	}
	return events
}

func hipDistance(a, b detector.Landmark) float64 {
	return r2.Norm(r2.Sub(r2.Vec{X: a.X, Y: a.Y}, r2.Vec{X: b.X, Y: b.Y}))
}
