// Package colorutil provides the colors used for lane overlays and charts.
package colorutil

import (
	"image/color"
)

// Overlay colors for lane boundaries and vehicles.
var (
	LeftLane  = color.RGBA{R: 220, G: 50, B: 47, A: 255}
	RightLane = color.RGBA{R: 38, G: 139, B: 210, A: 255}
	Vehicle   = color.RGBA{R: 133, G: 153, B: 0, A: 255}
	NoLane    = color.RGBA{R: 147, G: 161, B: 161, A: 255}
)

// ForSide returns the overlay color of a lane side name ("left" or "right").
func ForSide(side string) color.RGBA {
	if side == "left" {
		return LeftLane
	}
	return RightLane
}
