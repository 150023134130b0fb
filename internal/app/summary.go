package app

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"lane-tracker/internal/lane"
	"lane-tracker/internal/vehicle"
)

// FrameStat is the per-frame record kept for summaries and charts.
type FrameStat struct {
	Frame      int      `json:"frame"`
	LeftAngle  *float64 `json:"left_angle,omitempty"`
	RightAngle *float64 `json:"right_angle,omitempty"`
	Vehicles   int      `json:"vehicles"`
}

// AngleStats summarizes the angle of one boundary over a stream.
type AngleStats struct {
	Frames int     `json:"frames"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summary describes a processed stream.
type Summary struct {
	StreamID         string     `json:"stream_id"`
	Frames           int        `json:"frames"`
	FramesBothLanes  int        `json:"frames_both_lanes"`
	FramesNoLanes    int        `json:"frames_no_lanes"`
	Left             AngleStats `json:"left"`
	Right            AngleStats `json:"right"`
	Vehicles         int        `json:"vehicles"`
	VehiclesPerFrame float64    `json:"vehicles_per_frame"`

	// LaneOccupancy counts vehicle assignments per lane number, including
	// vehicle.NoLane.
	LaneOccupancy map[int]int `json:"lane_occupancy"`
	History       []FrameStat `json:"history"`
}

// OccupiedLanes returns the lane numbers present in LaneOccupancy, sorted.
func (s Summary) OccupiedLanes() []int {
	lanes := make([]int, 0, len(s.LaneOccupancy))
	for n := range s.LaneOccupancy {
		lanes = append(lanes, n)
	}
	sort.Ints(lanes)
	return lanes
}

type collector struct {
	history   []FrameStat
	left      []float64
	right     []float64
	vehicles  []float64
	both      int
	none      int
	occupancy map[int]int
}

func newCollector() *collector {
	return &collector{occupancy: make(map[int]int)}
}

func (c *collector) add(frame int, snap lane.Snapshot, assignments []vehicle.Assignment) {
	fs := FrameStat{Frame: frame, Vehicles: len(assignments)}
	if snap.Left != nil {
		a := snap.Left.Angle
		fs.LeftAngle = &a
		c.left = append(c.left, a)
	}
	if snap.Right != nil {
		a := snap.Right.Angle
		fs.RightAngle = &a
		c.right = append(c.right, a)
	}
	switch snap.Count() {
	case 0:
		c.none++
	case 2:
		c.both++
	}
	for _, a := range assignments {
		c.occupancy[a.Lane]++
	}
	c.vehicles = append(c.vehicles, float64(len(assignments)))
	c.history = append(c.history, fs)
}

func (c *collector) summary() Summary {
	s := Summary{
		Frames:          len(c.history),
		FramesBothLanes: c.both,
		FramesNoLanes:   c.none,
		Left:            angleStats(c.left),
		Right:           angleStats(c.right),
		LaneOccupancy:   make(map[int]int, len(c.occupancy)),
		History:         append([]FrameStat(nil), c.history...),
	}
	for n, count := range c.occupancy {
		s.LaneOccupancy[n] = count
		s.Vehicles += count
	}
	if len(c.vehicles) > 0 {
		s.VehiclesPerFrame = stat.Mean(c.vehicles, nil)
	}
	return s
}

func angleStats(angles []float64) AngleStats {
	switch len(angles) {
	case 0:
		return AngleStats{}
	case 1:
		return AngleStats{Frames: 1, Mean: angles[0]}
	}
	mean, std := stat.MeanStdDev(angles, nil)
	return AngleStats{Frames: len(angles), Mean: mean, StdDev: std}
}
