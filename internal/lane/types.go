// Package lane estimates left and right lane boundaries from line segments
// and keeps them alive across frames when detection briefly fails.
package lane

import (
	"fmt"

	"lane-tracker/pkg/geometry"
)

// Side identifies which lane boundary a line belongs to.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Segment is a raw line segment as returned by a segment detector, in
// full-frame pixel coordinates.
type Segment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Angle returns the signed segment angle in degrees, in (-90, 90].
func (s Segment) Angle() float64 {
	return geometry.SegmentAngle(s.X1, s.Y1, s.X2, s.Y2)
}

// Line describes a lane boundary by its angle and one anchor point on it.
// Angle is signed: negative leans left, positive leans right. It is never
// 0 or ±90 once it has passed the angle windows.
type Line struct {
	Angle   float64 `json:"angle"`
	AnchorX int     `json:"anchor_x"`
	AnchorY int     `json:"anchor_y"`
}

// Side reports which boundary the line's angle classifies it as.
func (l Line) Side() Side {
	if l.Angle < 0 {
		return SideLeft
	}
	return SideRight
}

// ProjectX returns the x coordinate of the line at height y.
func (l Line) ProjectX(y int) int {
	return geometry.ProjectX(l.Angle, l.AnchorX, l.AnchorY, y)
}

// Endpoints returns the points where the line crosses the bottom of a frame
// of the given height and half of that height. Renderers draw between them.
func (l Line) Endpoints(height int) (bottom, mid geometry.PointInt) {
	midY := int(float64(height) * 0.5)
	bottom = geometry.PointInt{X: l.ProjectX(height), Y: height}
	mid = geometry.PointInt{X: l.ProjectX(midY), Y: midY}
	return bottom, mid
}

func (l Line) String() string {
	return fmt.Sprintf("%.2f° @ (%d,%d)", l.Angle, l.AnchorX, l.AnchorY)
}

// less orders lines by (Angle, AnchorX, AnchorY).
func less(a, b Line) bool {
	if a.Angle != b.Angle {
		return a.Angle < b.Angle
	}
	if a.AnchorX != b.AnchorX {
		return a.AnchorX < b.AnchorX
	}
	return a.AnchorY < b.AnchorY
}
