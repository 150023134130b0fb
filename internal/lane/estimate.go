package lane

import "lane-tracker/pkg/geometry"

// Estimate collapses the candidates of one side to a single line: the
// median after sorting by (Angle, AnchorX, AnchorY), with the last element
// dropped for even counts. ok is false when there are no candidates. The
// input is not modified.
func Estimate(candidates []Line) (line Line, ok bool) {
	if len(candidates) == 0 {
		return Line{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	sorted := make([]Line, len(candidates))
	copy(sorted, candidates)
	return geometry.MedianOdd(sorted, less)
}
