package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lane-tracker/internal/lane"
	"lane-tracker/internal/vehicle"
)

var (
	rightSeg = lane.Segment{X1: 100, Y1: 100, X2: 200, Y2: 200} // 45°
	leftSeg  = lane.Segment{X1: 400, Y1: 386, X2: 300, Y2: 600} // about -65°
)

func boxAt(x int) vehicle.Box {
	return vehicle.Box{XMin: x - 20, YMin: 100, XMax: x + 20, YMax: 200, Class: "car", Confidence: 0.9}
}

func newSession(t *testing.T, ttl int) *Session {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := NewSession(lane.DefaultParams().WithMaxTTL(ttl), 400, log)
	require.NoError(t, err)
	return s
}

func TestNewSessionRejectsBadParams(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewSession(lane.DefaultParams().WithMaxTTL(-1), 400, log)
	assert.ErrorIs(t, err, lane.ErrNegativeTTL)
}

func TestSessionID(t *testing.T) {
	s := newSession(t, 2)
	_, err := uuid.Parse(s.ID())
	assert.NoError(t, err)
	assert.NotEqual(t, s.ID(), newSession(t, 2).ID())
}

func TestProcessAssignsVehicles(t *testing.T) {
	s := newSession(t, 2)

	res := s.Process(0, []lane.Segment{rightSeg, leftSeg}, []vehicle.Box{boxAt(50), boxAt(600)})

	assert.Equal(t, s.ID(), res.StreamID)
	assert.Equal(t, 2, res.Estimate.Segments)
	assert.Equal(t, 2, res.Estimate.Candidates)
	require.NotNil(t, res.Lanes.Left)
	require.NotNil(t, res.Lanes.Right)
	assert.InDelta(t, 45.0, res.Lanes.Right.Angle, 1e-9)

	require.Len(t, res.Vehicles, 2)
	assert.Equal(t, 1, res.Vehicles[0].Lane)
	assert.Equal(t, 3, res.Vehicles[1].Lane)

	require.Len(t, res.Overlay, 2)
	assert.Equal(t, "left", res.Overlay[0].Side)
	assert.Equal(t, "right", res.Overlay[1].Side)
	for _, o := range res.Overlay {
		assert.Equal(t, 400, o.Bottom.Y)
		assert.Equal(t, 200, o.Mid.Y)
		assert.Equal(t, lane.StateActive, o.State)
		assert.Equal(t, 2, o.TTL)
	}
}

func TestProcessWithoutLanes(t *testing.T) {
	s := newSession(t, 2)
	res := s.Process(0, nil, []vehicle.Box{boxAt(50)})

	assert.Empty(t, res.Overlay)
	require.Len(t, res.Vehicles, 1)
	assert.Equal(t, vehicle.NoLane, res.Vehicles[0].Lane)
}

func TestLaneEvents(t *testing.T) {
	s := newSession(t, 2)

	var acquired, expired []LaneEvent
	var processed int
	s.On(EventLaneAcquired, func(data interface{}) { acquired = append(acquired, data.(LaneEvent)) })
	s.On(EventLaneExpired, func(data interface{}) { expired = append(expired, data.(LaneEvent)) })
	s.On(EventFrameProcessed, func(data interface{}) { processed++ })

	s.Process(0, []lane.Segment{rightSeg}, nil)
	require.Len(t, acquired, 1)
	assert.Equal(t, lane.SideRight, acquired[0].Side)
	assert.Equal(t, 0, acquired[0].Frame)

	// Two misses decay the lane, the third clears it.
	s.Process(1, nil, nil)
	s.Process(2, nil, nil)
	assert.Empty(t, expired)
	s.Process(3, nil, nil)
	require.Len(t, expired, 1)
	assert.Equal(t, lane.SideRight, expired[0].Side)
	assert.Equal(t, 3, expired[0].Frame)
	assert.Nil(t, expired[0].Line)

	// A held lane seen again is not a new acquisition.
	s.Process(4, []lane.Segment{leftSeg}, nil)
	s.Process(5, []lane.Segment{leftSeg}, nil)
	assert.Len(t, acquired, 2)
	assert.Equal(t, 6, processed)
	assert.Equal(t, 6, s.Frames())
}

func TestSummary(t *testing.T) {
	s := newSession(t, 1)

	s.Process(0, []lane.Segment{rightSeg, leftSeg}, []vehicle.Box{boxAt(50), boxAt(600)})
	s.Process(1, []lane.Segment{{X1: 0, Y1: 0, X2: 100, Y2: 173}}, []vehicle.Box{boxAt(50)}) // about 60°
	s.Process(2, nil, nil)
	s.Process(3, nil, nil)

	sum := s.Summary()
	assert.Equal(t, s.ID(), sum.StreamID)
	assert.Equal(t, 4, sum.Frames)
	assert.Equal(t, 2, sum.FramesBothLanes)
	assert.Equal(t, 1, sum.FramesNoLanes)
	assert.Equal(t, 3, sum.Vehicles)
	assert.InDelta(t, 0.75, sum.VehiclesPerFrame, 1e-9)

	assert.Equal(t, 3, sum.Right.Frames)
	assert.Greater(t, sum.Right.StdDev, 0.0)
	assert.Equal(t, 2, sum.Left.Frames)
	assert.InDelta(t, -64.95, sum.Left.Mean, 0.01)
	assert.InDelta(t, 0, sum.Left.StdDev, 1e-9)

	assert.Equal(t, []int{1, 3}, sum.OccupiedLanes())
	assert.Equal(t, 2, sum.LaneOccupancy[1])
	require.Len(t, sum.History, 4)
	assert.Nil(t, sum.History[3].LeftAngle)
}

func TestReset(t *testing.T) {
	s := newSession(t, 5)
	var resets int
	s.On(EventReset, func(interface{}) { resets++ })

	s.Process(0, []lane.Segment{rightSeg}, nil)
	s.Reset()

	assert.Equal(t, 1, resets)
	assert.Equal(t, 0, s.Frames())
	assert.Equal(t, 0, s.Lanes().Count())
	assert.Equal(t, 0, s.Summary().Frames)
}
