package vision

import (
	"gocv.io/x/gocv"

	"lane-tracker/internal/lane"
)

// HoughFinder extracts straight segments from an edge map.
type HoughFinder struct {
	params HoughParams
}

// NewHoughFinder validates the settings and creates a finder.
func NewHoughFinder(params HoughParams) (*HoughFinder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &HoughFinder{params: params}, nil
}

// FindSegments runs the probabilistic Hough transform over a binary edge
// map. An edge map without lines yields an empty slice.
func (h *HoughFinder) FindSegments(edges gocv.Mat) ([]lane.Segment, error) {
	segments := []lane.Segment{}
	if edges.Empty() {
		return segments, nil
	}

	lines := gocv.NewMat()
	defer lines.Close()

	gocv.HoughLinesPWithParams(edges, &lines,
		h.params.Rho, h.params.Theta, h.params.Threshold,
		h.params.MinLineLength, h.params.MaxLineGap)

	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		if len(v) < 4 {
			continue
		}
		segments = append(segments, lane.Segment{
			X1: int(v[0]),
			Y1: int(v[1]),
			X2: int(v[2]),
			Y2: int(v[3]),
		})
	}

	return segments, nil
}
