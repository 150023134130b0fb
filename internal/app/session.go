// Package app ties the lane tracker and vehicle assignment together for one
// video stream and publishes per-frame results and lane events.
package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lane-tracker/internal/lane"
	"lane-tracker/internal/logging"
	"lane-tracker/internal/vehicle"
	"lane-tracker/pkg/geometry"
)

// EventType identifies different session events.
type EventType int

const (
	EventFrameProcessed EventType = iota
	EventLaneAcquired
	EventLaneExpired
	EventReset
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// LaneEvent is the payload of EventLaneAcquired and EventLaneExpired.
type LaneEvent struct {
	Frame int
	Side  lane.Side
	Line  *lane.Line // nil for EventLaneExpired
}

// LaneOverlay is a lane boundary ready to draw: from the bottom of the frame
// up to half its height.
type LaneOverlay struct {
	Side   string            `json:"side"`
	State  lane.SideState    `json:"state"`
	TTL    int               `json:"ttl"`
	Bottom geometry.PointInt `json:"bottom"`
	Mid    geometry.PointInt `json:"mid"`
}

// FrameResult is everything a frame produced.
type FrameResult struct {
	StreamID string               `json:"stream_id"`
	Frame    int                  `json:"frame"`
	Estimate lane.FrameEstimate   `json:"estimate"`
	Lanes    lane.Snapshot        `json:"lanes"`
	Overlay  []LaneOverlay        `json:"overlay"`
	Vehicles []vehicle.Assignment `json:"vehicles"`
}

// Session holds the state of one stream. Frames must be processed in order
// by a single goroutine; listeners and readers may run elsewhere.
type Session struct {
	mu sync.RWMutex

	id          string
	frameHeight int
	tracker     *lane.Tracker
	last        lane.Snapshot
	frames      int
	stats       *collector
	log         logrus.FieldLogger

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewSession creates a session for frames of the given height.
func NewSession(params lane.Params, frameHeight int, log logrus.FieldLogger) (*Session, error) {
	tracker, err := lane.NewTracker(params)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &Session{
		id:          id,
		frameHeight: frameHeight,
		tracker:     tracker,
		last:        tracker.Snapshot(),
		stats:       newCollector(),
		log:         logging.WithStream(log, id),
		listeners:   make(map[EventType][]EventListener),
	}, nil
}

// ID returns the stream id.
func (s *Session) ID() string {
	return s.id
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Process runs one frame: lane estimation from segments, then lane
// assignment of the detected vehicles against the updated lanes.
func (s *Session) Process(frame int, segments []lane.Segment, boxes []vehicle.Box) FrameResult {
	s.mu.Lock()
	est, snap := s.tracker.Update(segments)
	prev := s.last
	s.last = snap
	s.frames++
	assignments := vehicle.AssignSnapshot(boxes, snap)
	s.stats.add(frame, snap, assignments)
	s.mu.Unlock()

	result := FrameResult{
		StreamID: s.id,
		Frame:    frame,
		Estimate: est,
		Lanes:    snap,
		Overlay:  s.overlay(snap),
		Vehicles: assignments,
	}

	s.log.WithFields(logrus.Fields{
		"frame":      frame,
		"segments":   est.Segments,
		"candidates": est.Candidates,
		"lanes":      snap.Count(),
		"vehicles":   len(assignments),
	}).Debug("Processed frame")

	for _, side := range []lane.Side{lane.SideLeft, lane.SideRight} {
		before, after := prev.Line(side), snap.Line(side)
		switch {
		case before == nil && after != nil:
			s.log.WithFields(logrus.Fields{"frame": frame, "side": side, "line": after.String()}).Info("Lane acquired")
			s.Emit(EventLaneAcquired, LaneEvent{Frame: frame, Side: side, Line: after})
		case before != nil && after == nil:
			s.log.WithFields(logrus.Fields{"frame": frame, "side": side}).Info("Lane expired")
			s.Emit(EventLaneExpired, LaneEvent{Frame: frame, Side: side})
		}
	}

	s.Emit(EventFrameProcessed, result)
	return result
}

func (s *Session) overlay(snap lane.Snapshot) []LaneOverlay {
	out := []LaneOverlay{}
	for _, side := range []lane.Side{lane.SideLeft, lane.SideRight} {
		l := snap.Line(side)
		if l == nil {
			continue
		}
		bottom, mid := l.Endpoints(s.frameHeight)
		ttl := snap.LeftTTL
		if side == lane.SideRight {
			ttl = snap.RightTTL
		}
		out = append(out, LaneOverlay{
			Side:   side.String(),
			State:  snap.State(side),
			TTL:    ttl,
			Bottom: bottom,
			Mid:    mid,
		})
	}
	return out
}

// Lanes returns the lane state after the last processed frame.
func (s *Session) Lanes() lane.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Snapshot()
}

// Frames returns how many frames were processed.
func (s *Session) Frames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// Summary returns statistics over every processed frame.
func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := s.stats.summary()
	sum.StreamID = s.id
	return sum
}

// Reset forgets the lanes and statistics, as after a scene cut.
func (s *Session) Reset() {
	s.mu.Lock()
	s.tracker.Reset()
	s.last = s.tracker.Snapshot()
	s.frames = 0
	s.stats = newCollector()
	s.mu.Unlock()

	s.log.Info("Session reset")
	s.Emit(EventReset, nil)
}
