package gesture

import "math"

// State machine defaults, in downsampled pixel units.
const (
	DefaultMinDirChange  = 2
	DefaultLongDirChange = 7
)

// State is the state of a StateMachine.
type State int

const (
	// Idle waits for a significant burst of motion.
	Idle State = iota
	// Armed holds the anchor centroid and waits for the next sample.
	Armed
	// Cooldown waits for motion to fall back to baseline.
	Cooldown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Cooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// StateMachine converts a series of motion centroids into at most one gesture
// per Idle -> Armed -> Cooldown cycle.
type StateMachine struct {
	minDirChange  float64
	longDirChange float64

	state  State
	anchor NormalizedMotion
}

// NewStateMachine creates a StateMachine in the Idle state.
func NewStateMachine(minDirChange, longDirChange int) *StateMachine {
	m := &StateMachine{}
	m.SetThresholds(minDirChange, longDirChange)
	return m
}

// SetThresholds changes the displacement thresholds. Negative values fall
// back to the defaults.
func (m *StateMachine) SetThresholds(minDirChange, longDirChange int) {
	if minDirChange < 0 {
		minDirChange = DefaultMinDirChange
	}
	if longDirChange < 0 {
		longDirChange = DefaultLongDirChange
	}
	m.minDirChange = float64(minDirChange)
	m.longDirChange = float64(longDirChange)
}

// State returns the current state.
func (m *StateMachine) State() State {
	return m.state
}

// Reset returns the machine to Idle and forgets the anchor.
func (m *StateMachine) Reset() {
	m.state = Idle
	m.anchor = NormalizedMotion{}
}

// Step feeds one filtered sample into the machine. It returns the gesture
// and true only on the Armed -> Cooldown transition, when the displacement
// from the anchor is large enough.
func (m *StateMachine) Step(motion NormalizedMotion, significant bool) (Event, bool) {
	switch m.state {
	case Idle:
		if significant && motion.Valid() {
			m.anchor = motion
			m.state = Armed
		}
		return Event{}, false

	case Armed:
		// A sample without a centroid cannot be compared to the anchor.
		if !motion.Valid() {
			return Event{}, false
		}
		m.state = Cooldown
		dir, ok := m.classify(motion.X-m.anchor.X, motion.Y-m.anchor.Y)
		if !ok {
			return Event{}, false
		}
		return Event{Direction: dir, Magnitude: motion.Magnitude}, true

	case Cooldown:
		if !significant {
			m.state = Idle
		}
		return Event{}, false
	}

	return Event{}, false
}

// classify maps a centroid displacement to a direction. The camera view is
// mirrored, so a positive dx in pixel space is the user's left.
func (m *StateMachine) classify(dx, dy float64) (Direction, bool) {
	horizontal := math.Abs(dy) < math.Abs(dx)

	if horizontal {
		switch {
		case dx < -m.minDirChange:
			return Right, true
		case dx > m.minDirChange:
			return Left, true
		}
		return 0, false
	}

	switch {
	case dy > m.minDirChange:
		if math.Abs(dy) <= m.longDirChange {
			return Down, true
		}
		return LongDown, true
	case dy < -m.minDirChange:
		if math.Abs(dy) <= m.longDirChange {
			return Up, true
		}
		return LongUp, true
	}
	return 0, false
}
