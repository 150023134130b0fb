package lane

import "fmt"

// SideState is the hysteresis state of one lane boundary.
type SideState int

const (
	// StateExpired means no line is held. Initial state.
	StateExpired SideState = iota
	// StateActive means the line was detected in the latest frame.
	StateActive
	// StateDecaying means the line is held from an earlier frame.
	StateDecaying
)

func (s SideState) String() string {
	switch s {
	case StateExpired:
		return "expired"
	case StateActive:
		return "active"
	case StateDecaying:
		return "decaying"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s SideState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *SideState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "expired":
		*s = StateExpired
	case "active":
		*s = StateActive
	case "decaying":
		*s = StateDecaying
	default:
		return fmt.Errorf("unknown side state %q", text)
	}
	return nil
}

// sideMemory holds one boundary and its countdown.
type sideMemory struct {
	line  *Line
	ttl   int
	state SideState
}

func (m *sideMemory) update(estimate *Line, maxTTL int) {
	switch {
	case estimate != nil:
		l := *estimate
		m.line = &l
		m.ttl = maxTTL
		m.state = StateActive
	case m.line == nil:
		// Expired sides wait at a full ttl for the next detection.
		m.ttl = maxTTL
		m.state = StateExpired
	case m.ttl > 0:
		m.ttl--
		m.state = StateDecaying
	default:
		m.line = nil
		m.ttl = maxTTL
		m.state = StateExpired
	}
}

// Memory keeps the last known left and right lines across frames. A side
// that misses a detection keeps its line for MaxTTL further frames and is
// cleared on the one after. Memory belongs to a single stream and is not
// safe for concurrent use.
type Memory struct {
	maxTTL int
	left   sideMemory
	right  sideMemory
}

// NewMemory creates a memory with both sides expired.
func NewMemory(maxTTL int) (*Memory, error) {
	if maxTTL < 0 {
		return nil, ErrNegativeTTL
	}
	return &Memory{
		maxTTL: maxTTL,
		left:   sideMemory{ttl: maxTTL},
		right:  sideMemory{ttl: maxTTL},
	}, nil
}

// MaxTTL returns the configured forgiveness window.
func (m *Memory) MaxTTL() int {
	return m.maxTTL
}

// Update applies one frame's estimates. A nil estimate means the side was
// not detected in the frame.
func (m *Memory) Update(left, right *Line) Snapshot {
	m.left.update(left, m.maxTTL)
	m.right.update(right, m.maxTTL)
	return m.Snapshot()
}

// Reset returns both sides to the initial expired state.
func (m *Memory) Reset() {
	m.left = sideMemory{ttl: m.maxTTL}
	m.right = sideMemory{ttl: m.maxTTL}
}

// Snapshot returns a copy of the current state.
func (m *Memory) Snapshot() Snapshot {
	return Snapshot{
		Left:       copyLine(m.left.line),
		Right:      copyLine(m.right.line),
		LeftTTL:    m.left.ttl,
		RightTTL:   m.right.ttl,
		LeftState:  m.left.state,
		RightState: m.right.state,
	}
}

func copyLine(l *Line) *Line {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// Snapshot is a read-only copy of the lane state after a frame.
type Snapshot struct {
	Left       *Line     `json:"left,omitempty"`
	Right      *Line     `json:"right,omitempty"`
	LeftTTL    int       `json:"left_ttl"`
	RightTTL   int       `json:"right_ttl"`
	LeftState  SideState `json:"left_state"`
	RightState SideState `json:"right_state"`
}

// Count returns how many boundaries are known.
func (s Snapshot) Count() int {
	n := 0
	if s.Left != nil {
		n++
	}
	if s.Right != nil {
		n++
	}
	return n
}

// Line returns the line held for side, or nil.
func (s Snapshot) Line(side Side) *Line {
	if side == SideLeft {
		return s.Left
	}
	return s.Right
}

// State returns the hysteresis state of side.
func (s Snapshot) State(side Side) SideState {
	if side == SideLeft {
		return s.LeftState
	}
	return s.RightState
}
