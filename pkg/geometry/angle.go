package geometry

import (
	"math"
	"sort"
)

// SegmentAngle returns the angle of the segment (x1,y1)-(x2,y2) in degrees,
// folded into (-90, 90]. Direction does not matter: a segment and its
// reverse have the same angle. Image coordinates are used as-is, so with y
// growing downward a positive angle leans right.
func SegmentAngle(x1, y1, x2, y2 int) float64 {
	theta := math.Atan2(float64(y2-y1), float64(x2-x1)) * 180 / math.Pi
	switch {
	case theta > 90:
		theta -= 180
	case theta <= -90:
		theta += 180
	}
	return theta
}

// NormalizeAngle maps a signed angle in (-90, 90] onto [0, 180).
func NormalizeAngle(deg float64) float64 {
	if deg < 0 {
		return deg + 180
	}
	return deg
}

// SignedAngle maps an angle in [0, 180) back onto (-90, 90].
func SignedAngle(deg float64) float64 {
	if deg > 90 {
		return deg - 180
	}
	return deg
}

// ProjectX extrapolates the x coordinate at targetY along the line through
// (anchorX, anchorY) with the given angle in degrees. The result is
// truncated toward zero. The caller guarantees the angle is not 0.
func ProjectX(angle float64, anchorX, anchorY, targetY int) int {
	opp := float64(targetY - anchorY)
	adj := opp / math.Tan(angle*math.Pi/180)
	return int(adj + float64(anchorX))
}

// MedianOdd returns the middle element of items ordered by less. When the
// count is even the greatest element is dropped first, so ties between the
// two central elements resolve toward the lower one. items is sorted in
// place. ok is false for an empty slice.
func MedianOdd[T any](items []T, less func(a, b T) bool) (median T, ok bool) {
	if len(items) == 0 {
		return median, false
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })

	n := len(items)
	if n%2 == 0 {
		n--
	}
	return items[n/2], true
}
