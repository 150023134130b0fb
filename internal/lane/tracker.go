package lane

import "fmt"

// FrameEstimate is what one frame contributed before memory was applied.
type FrameEstimate struct {
	Segments   int   `json:"segments"`   // Raw segments seen
	Candidates int   `json:"candidates"` // Segments that passed the angle windows
	Left       *Line `json:"left,omitempty"`
	Right      *Line `json:"right,omitempty"`
}

// Tracker runs classification, estimation and memory for one stream.
type Tracker struct {
	params Params
	memory *Memory
}

// NewTracker validates params and creates a tracker with no known lanes.
func NewTracker(params Params) (*Tracker, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lane params: %w", err)
	}
	mem, err := NewMemory(params.MaxTTL)
	if err != nil {
		return nil, err
	}
	return &Tracker{params: params, memory: mem}, nil
}

// Params returns the tracker's parameters.
func (t *Tracker) Params() Params {
	return t.params
}

// Update processes one frame's segments and returns the per-frame estimate
// and the lane state after memory was applied. An empty segment list is
// the normal "no lane visible" case.
func (t *Tracker) Update(segments []Segment) (FrameEstimate, Snapshot) {
	cands := t.params.Windows.Classify(segments)

	est := FrameEstimate{
		Segments:   len(segments),
		Candidates: cands.Len(),
	}
	if l, ok := Estimate(cands.Left); ok {
		est.Left = &l
	}
	if r, ok := Estimate(cands.Right); ok {
		est.Right = &r
	}

	return est, t.memory.Update(est.Left, est.Right)
}

// Snapshot returns the current lane state without advancing it.
func (t *Tracker) Snapshot() Snapshot {
	return t.memory.Snapshot()
}

// Reset forgets both lanes.
func (t *Tracker) Reset() {
	t.memory.Reset()
}
