// Package vehicle assigns detected vehicles to lanes using the current lane
// boundaries.
package vehicle

import (
	"lane-tracker/pkg/geometry"
)

// Box is a vehicle bounding box produced by a detector. Boxes reaching this
// package have already been filtered by class and confidence.
type Box struct {
	XMin       int     `json:"xmin"`
	YMin       int     `json:"ymin"`
	XMax       int     `json:"xmax"`
	YMax       int     `json:"ymax"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// refHeightFraction places the reference point 80% of the way down the box,
// near where the vehicle meets the road.
const refHeightFraction = 0.8

// Reference is the point used as a vehicle's position for lane assignment.
type Reference struct {
	X int `json:"x_ref"`
	Y int `json:"y_ref"`
}

// Reference returns the horizontal midpoint of the box at 80% of its height.
func (b Box) Reference() Reference {
	return Reference{
		X: b.XMin + (b.XMax-b.XMin)/2,
		Y: int(float64(b.YMin) + float64(b.YMax-b.YMin)*refHeightFraction),
	}
}

// Point returns the reference as a pixel point.
func (r Reference) Point() geometry.PointInt {
	return geometry.PointInt{X: r.X, Y: r.Y}
}
