package vehicle

import (
	"lane-tracker/internal/lane"
)

// NoLane is the lane number reported when no lane boundary is known.
const NoLane = 0

// Assignment places one vehicle in a lane for one frame.
type Assignment struct {
	Ref Reference `json:"ref"`
	Box Box       `json:"box"`
	// Boundaries holds the x positions of the lane lines used, projected to
	// the reference height.
	Boundaries []int `json:"lane_x"`
	Lane       int   `json:"lane_num"`
}

// HasLane reports whether a lane number was assigned.
func (a Assignment) HasLane() bool {
	return a.Lane != NoLane
}

// LaneSet is the lane geometry available in a frame: NoLanes, OneLane or
// TwoLanes.
type LaneSet interface {
	Count() int
	laneSet()
}

// NoLanes means no boundary is known.
type NoLanes struct{}

// OneLane holds the single known boundary, whichever side it is.
type OneLane struct {
	Line lane.Line
}

// TwoLanes holds both boundaries.
type TwoLanes struct {
	Left  lane.Line
	Right lane.Line
}

func (NoLanes) Count() int  { return 0 }
func (OneLane) Count() int  { return 1 }
func (TwoLanes) Count() int { return 2 }

func (NoLanes) laneSet()  {}
func (OneLane) laneSet()  {}
func (TwoLanes) laneSet() {}

// LanesFrom builds the lane set for a snapshot.
func LanesFrom(s lane.Snapshot) LaneSet {
	switch {
	case s.Left != nil && s.Right != nil:
		return TwoLanes{Left: *s.Left, Right: *s.Right}
	case s.Left != nil:
		return OneLane{Line: *s.Left}
	case s.Right != nil:
		return OneLane{Line: *s.Right}
	default:
		return NoLanes{}
	}
}

// Assign computes the lane of every vehicle. It does not modify its inputs.
// Crossed boundaries (left projected right of right) are not corrected.
func Assign(boxes []Box, lanes LaneSet) []Assignment {
	out := make([]Assignment, 0, len(boxes))
	for _, b := range boxes {
		ref := b.Reference()
		a := Assignment{Ref: ref, Box: b, Boundaries: []int{}, Lane: NoLane}

		switch l := lanes.(type) {
		case OneLane:
			a.Boundaries, a.Lane = assignOne(ref, l)
		case TwoLanes:
			a.Boundaries, a.Lane = assignTwo(ref, l)
		}
		out = append(out, a)
	}
	return out
}

// AssignSnapshot is Assign with the lane set taken from a snapshot.
func AssignSnapshot(boxes []Box, s lane.Snapshot) []Assignment {
	return Assign(boxes, LanesFrom(s))
}

func assignOne(ref Reference, l OneLane) ([]int, int) {
	laneX := l.Line.ProjectX(ref.Y)
	if ref.X < laneX {
		return []int{laneX}, 1
	}
	return []int{laneX}, 2
}

func assignTwo(ref Reference, l TwoLanes) ([]int, int) {
	leftX := l.Left.ProjectX(ref.Y)
	rightX := l.Right.ProjectX(ref.Y)

	if ref.X < leftX {
		return []int{leftX}, 1
	}
	if ref.X < rightX {
		return []int{leftX, rightX}, 2
	}
	return []int{rightX}, 3
}
