// Package vision turns video frames into line segments: grayscale, Canny
// edges masked to a road region, then a probabilistic Hough transform.
package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"lane-tracker/pkg/geometry"
)

// Preprocessor produces a masked edge map from a frame.
type Preprocessor struct {
	edges EdgeParams
	roi   []geometry.Fraction
	log   logrus.FieldLogger
}

// NewPreprocessor validates the settings and creates a preprocessor.
func NewPreprocessor(edges EdgeParams, roi []geometry.Fraction, log logrus.FieldLogger) (*Preprocessor, error) {
	if err := edges.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateROI(roi); err != nil {
		return nil, err
	}

	// gocv's Canny binding always uses a 3x3 Sobel kernel with the L1 norm.
	if edges.Aperture != 3 || edges.L2Gradient {
		log.WithFields(logrus.Fields{
			"aperture":    edges.Aperture,
			"l2_gradient": edges.L2Gradient,
		}).Warn("Canny aperture and L2 gradient are not supported by this OpenCV binding, using 3/L1")
	}

	return &Preprocessor{
		edges: edges,
		roi:   append([]geometry.Fraction(nil), roi...),
		log:   log,
	}, nil
}

// Scale returns the factor applied to frames before edge detection.
func (p *Preprocessor) Scale() float64 {
	return p.edges.Scale
}

// Preprocess returns the edge map of frame restricted to the region of
// interest. The result is single channel, at frame size times Scale, and
// must be closed by the caller. frame is not modified.
func (p *Preprocessor) Preprocess(frame gocv.Mat) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.NewMat(), ErrEmptyFrame
	}

	gray, err := toGray(frame)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	work := gray
	if p.edges.Scale < 1 {
		small := gocv.NewMat()
		defer small.Close()
		gocv.Resize(gray, &small, image.Point{}, p.edges.Scale, p.edges.Scale, gocv.InterpolationArea)
		work = small
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(work, &edges, p.edges.Lower, p.edges.Upper)

	mask := p.Mask(edges.Rows(), edges.Cols())
	defer mask.Close()

	masked := gocv.NewMat()
	gocv.BitwiseAnd(edges, mask, &masked)
	return masked, nil
}

// Mask returns the filled region of interest for a rows x cols image.
func (p *Preprocessor) Mask(rows, cols int) gocv.Mat {
	mask := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)

	corners := geometry.ScalePolygon(p.roi, cols, rows)
	poly := make([]image.Point, len(corners))
	for i, c := range corners {
		poly[i] = image.Pt(c.X, c.Y)
	}

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pv.Close()
	gocv.FillPoly(&mask, pv, color.RGBA{R: 255, G: 255, B: 255, A: 0})
	return mask
}

// InRegion reports whether pt lies inside the region of interest of a
// width x height frame.
func (p *Preprocessor) InRegion(pt geometry.PointInt, width, height int) bool {
	poly := make([]geometry.Point2D, len(p.roi))
	for i, f := range p.roi {
		poly[i] = f.Scale(width, height)
	}
	return geometry.PointInPolygon(geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}, poly)
}

func toGray(frame gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	switch frame.Channels() {
	case 1:
		frame.CopyTo(&gray)
	case 3:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported channel count %d", frame.Channels())
	}
	return gray, nil
}
