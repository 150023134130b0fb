package vision

import (
	"errors"
	"fmt"
	"math"

	"lane-tracker/pkg/geometry"
)

var (
	// ErrInvalidROI is returned when the region of interest is not a quadrilateral.
	ErrInvalidROI = errors.New("vision: region of interest must have 4 corners")
	// ErrROINotConvex is returned for a self-intersecting or concave region.
	ErrROINotConvex = errors.New("vision: region of interest is not convex")
	// ErrInvalidEdgeParams is returned for unusable Canny settings.
	ErrInvalidEdgeParams = errors.New("vision: invalid edge parameters")
	// ErrInvalidHoughParams is returned for unusable Hough settings.
	ErrInvalidHoughParams = errors.New("vision: invalid hough parameters")
	// ErrEmptyFrame is returned when an empty Mat is passed in.
	ErrEmptyFrame = errors.New("vision: empty frame")
)

// EdgeParams configures the Canny edge pass.
type EdgeParams struct {
	Lower float32 `json:"lower" validate:"gte=0"`
	Upper float32 `json:"upper" validate:"gtefield=Lower"`
	// Aperture is the Sobel kernel size, 3, 5 or 7.
	Aperture   int  `json:"aperture" validate:"oneof=3 5 7"`
	L2Gradient bool `json:"l2_gradient"`
	// Scale shrinks the frame before edge detection. 1 runs at full size.
	Scale float64 `json:"scale" validate:"gt=0,lte=1"`
}

// HoughParams configures the probabilistic Hough transform.
type HoughParams struct {
	Rho           float32 `json:"rho" validate:"gt=0"`
	Theta         float32 `json:"theta" validate:"gt=0"` // radians
	Threshold     int     `json:"threshold" validate:"gt=0"`
	MinLineLength float32 `json:"min_line_length" validate:"gte=0"`
	MaxLineGap    float32 `json:"max_line_gap" validate:"gte=0"`
}

// Params holds the full segment-finding configuration.
type Params struct {
	Edges EdgeParams          `json:"canny"`
	ROI   []geometry.Fraction `json:"region_of_interest"`
	Hough HoughParams         `json:"hough"`
}

// DefaultROI is a trapezoid covering the road ahead of the camera.
func DefaultROI() []geometry.Fraction {
	return []geometry.Fraction{
		{X: 0.1, Y: 0.8},
		{X: 0.4, Y: 0.5},
		{X: 0.6, Y: 0.5},
		{X: 0.9, Y: 0.8},
	}
}

// DefaultParams returns parameters tuned for 1280x720 dashcam footage.
func DefaultParams() Params {
	return Params{
		Edges: EdgeParams{
			Lower:    50,
			Upper:    150,
			Aperture: 3,
			Scale:    1,
		},
		ROI: DefaultROI(),
		Hough: HoughParams{
			Rho:           1,
			Theta:         math.Pi / 180,
			Threshold:     40,
			MinLineLength: 3,
			MaxLineGap:    10,
		},
	}
}

// WithROI returns a copy of params with a different region of interest.
func (p Params) WithROI(roi ...geometry.Fraction) Params {
	p.ROI = append([]geometry.Fraction(nil), roi...)
	return p
}

// WithScale returns a copy of params running the edge pass at the given scale.
func (p Params) WithScale(scale float64) Params {
	p.Edges.Scale = scale
	return p
}

// WithThresholds returns a copy of params with new Canny thresholds.
func (p Params) WithThresholds(lower, upper float32) Params {
	p.Edges.Lower = lower
	p.Edges.Upper = upper
	return p
}

// Validate checks the edge settings.
func (e EdgeParams) Validate() error {
	if e.Lower < 0 || e.Upper < e.Lower {
		return fmt.Errorf("%w: thresholds %.1f/%.1f", ErrInvalidEdgeParams, e.Lower, e.Upper)
	}
	switch e.Aperture {
	case 3, 5, 7:
	default:
		return fmt.Errorf("%w: aperture %d", ErrInvalidEdgeParams, e.Aperture)
	}
	if e.Scale <= 0 || e.Scale > 1 {
		return fmt.Errorf("%w: scale %.3f", ErrInvalidEdgeParams, e.Scale)
	}
	return nil
}

// Validate checks the Hough settings.
func (h HoughParams) Validate() error {
	if h.Rho <= 0 || h.Theta <= 0 || h.Threshold <= 0 {
		return fmt.Errorf("%w: rho=%.2f theta=%.4f threshold=%d", ErrInvalidHoughParams, h.Rho, h.Theta, h.Threshold)
	}
	if h.MinLineLength < 0 || h.MaxLineGap < 0 {
		return fmt.Errorf("%w: min length %.1f, max gap %.1f", ErrInvalidHoughParams, h.MinLineLength, h.MaxLineGap)
	}
	return nil
}

// ValidateROI checks that roi is a convex quadrilateral inside the frame.
func ValidateROI(roi []geometry.Fraction) error {
	if len(roi) != 4 {
		return fmt.Errorf("%w: got %d", ErrInvalidROI, len(roi))
	}
	pts := make([]geometry.Point2D, len(roi))
	for i, f := range roi {
		if f.X < 0 || f.X > 1 || f.Y < 0 || f.Y > 1 {
			return fmt.Errorf("%w: corner %d (%.2f,%.2f) outside frame", ErrInvalidROI, i, f.X, f.Y)
		}
		pts[i] = geometry.Point2D{X: f.X, Y: f.Y}
	}
	if !geometry.IsConvex(pts) {
		return ErrROINotConvex
	}
	return nil
}

// Validate checks all parameters.
func (p Params) Validate() error {
	if err := p.Edges.Validate(); err != nil {
		return err
	}
	if err := ValidateROI(p.ROI); err != nil {
		return err
	}
	return p.Hough.Validate()
}
